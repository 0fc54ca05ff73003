// file: models/team.go
package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubLeaders maps a slot key (e.g. "subLeader1") to a student id.
type SubLeaders map[string]string

type Team struct {
	ID         string     `gorm:"primarykey;size:36" json:"id"`
	Name       string     `gorm:"size:100;uniqueIndex;not null" json:"name"`
	LeaderID   string     `gorm:"size:36;not null;index" json:"leader"`
	SubLeaders SubLeaders `gorm:"type:text;serializer:json" json:"subLeaders"`
	Color      string     `gorm:"size:20;not null" json:"color"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (Team) TableName() string {
	return "auction_teams"
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// HoldsRole reports whether the student is this team's leader or one of its sub-leaders.
func (t *Team) HoldsRole(studentID string) bool {
	if t.LeaderID == studentID {
		return true
	}
	for _, id := range t.SubLeaders {
		if id == studentID {
			return true
		}
	}
	return false
}

// RoleHolderIDs returns the leader followed by the sub-leaders in slot order, without blanks or repeats.
func (t *Team) RoleHolderIDs() []string {
	ids := []string{}
	seen := map[string]bool{}
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	add(t.LeaderID)
	for _, slot := range t.SubLeaders.Slots() {
		add(t.SubLeaders[slot])
	}
	return ids
}

// Slots returns the slot keys in a stable order.
func (s SubLeaders) Slots() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compact drops slots without a student id.
func (s SubLeaders) Compact() SubLeaders {
	out := SubLeaders{}
	for k, v := range s {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// TeamView is a team with its leader and sub-leaders resolved to student records.
// A reference that no longer resolves is rendered as null.
type TeamView struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Leader     *Student            `json:"leader"`
	SubLeaders map[string]*Student `json:"subLeaders"`
	Color      string              `json:"color"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}
