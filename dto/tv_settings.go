// file: dto/tv_settings.go
package dto

// SettingsPatch updates either screen; fields belonging to the other screen
// are stored but not displayed.
type SettingsPatch struct {
	Section                 *string `json:"section"`
	Pool                    *string `json:"pool"`
	AutoAdvancePool         *bool   `json:"autoAdvancePool"`
	AutoAdvanceDelaySeconds *int    `json:"autoAdvanceDelaySeconds"`
	TV1BannerMessage        *string `json:"tv1BannerMessage"`

	DisplayMode      *string          `json:"displayMode"`
	SpecificTeamID   Optional[string] `json:"specificTeamId"`
	TopTeamsCount    *int             `json:"topTeamsCount"`
	TV2BannerMessage *string          `json:"tv2BannerMessage"`
}

type SectionsAndPools struct {
	Sections []string `json:"sections"`
	Pools    []string `json:"pools"`
}
