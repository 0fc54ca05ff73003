// file: models/student.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Student struct {
	ID              string    `gorm:"primarykey;size:36" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	AdmissionNumber string    `gorm:"size:50;uniqueIndex;not null" json:"admissionNumber"`
	Class           string    `gorm:"size:50;not null" json:"class"`
	Section         string    `gorm:"size:100;not null;index:idx_section_pool" json:"section"`
	Pool            *string   `gorm:"size:50;index:idx_section_pool" json:"pool"`
	IsCalled        bool      `gorm:"not null;default:false" json:"isCalled"`
	TeamID          *string   `gorm:"size:36;index" json:"teamId"`
	Team            *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Student) TableName() string {
	return "auction_students"
}

// BeforeCreate assigns an opaque identifier when the caller did not supply one.
func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Consistent reports whether the called flag agrees with the team reference.
func (s *Student) Consistent() bool {
	return s.IsCalled == (s.TeamID != nil)
}
