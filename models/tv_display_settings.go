// file: models/tv_display_settings.go
package models

import "time"

const (
	ScreenUncalled = "tv1Display"
	ScreenCalled   = "tv2Display"
)

// DisplayMode selects what the called-roster screen shows.
type DisplayMode string

const (
	DisplayAllTeams     DisplayMode = "All Teams"
	DisplaySpecificTeam DisplayMode = "Specific Team"
	DisplayTopTeams     DisplayMode = "Top Teams"
)

func (m DisplayMode) Valid() bool {
	switch m {
	case DisplayAllTeams, DisplaySpecificTeam, DisplayTopTeams:
		return true
	}
	return false
}

// TvDisplaySettings holds both screens' fields; each screen only reads its own.
type TvDisplaySettings struct {
	ID       uint   `gorm:"primarykey" json:"-"`
	ScreenID string `gorm:"size:32;uniqueIndex;not null" json:"screenId"`

	// tv1Display: uncalled students
	Section                 string `gorm:"size:100" json:"section"`
	Pool                    string `gorm:"size:50" json:"pool"`
	AutoAdvancePool         bool   `gorm:"not null;default:false" json:"autoAdvancePool"`
	AutoAdvanceDelaySeconds int    `gorm:"not null" json:"autoAdvanceDelaySeconds"`
	TV1BannerMessage        string `gorm:"column:tv1_banner_message;size:500" json:"tv1BannerMessage"`

	// tv2Display: called students and teams
	DisplayMode      DisplayMode `gorm:"size:20" json:"displayMode"`
	SpecificTeamID   *string     `gorm:"size:36" json:"specificTeamId"`
	TopTeamsCount    int         `gorm:"not null" json:"topTeamsCount"`
	TV2BannerMessage string      `gorm:"column:tv2_banner_message;size:500" json:"tv2BannerMessage"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (TvDisplaySettings) TableName() string {
	return "auction_tv_display_settings"
}

// ValidScreen reports whether id names one of the two known screens.
func ValidScreen(id string) bool {
	return id == ScreenUncalled || id == ScreenCalled
}

// DefaultSettings returns the settings a screen starts with before anyone edits it.
func DefaultSettings(screenID string) TvDisplaySettings {
	if screenID == ScreenUncalled {
		return TvDisplaySettings{
			ScreenID:                ScreenUncalled,
			Section:                 "Bidayay",
			Pool:                    FirstPool(),
			AutoAdvancePool:         false,
			AutoAdvanceDelaySeconds: 10,
			DisplayMode:             DisplayAllTeams,
			TopTeamsCount:           3,
		}
	}
	return TvDisplaySettings{
		ScreenID:                screenID,
		DisplayMode:             DisplayAllTeams,
		SpecificTeamID:          nil,
		TopTeamsCount:           3,
		AutoAdvanceDelaySeconds: 10,
	}
}
