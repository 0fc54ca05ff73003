// file: services/settings_service.go
package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/models"
	"github.com/assessment-hisan/auction-backend/realtime"
	"gorm.io/gorm"
)

// SettingsService reads and edits the two TV screens' settings.
type SettingsService struct {
	Deps
}

func NewSettingsService(d Deps) *SettingsService {
	return &SettingsService{Deps: d.withDefaults()}
}

// GetOrCreate returns the screen's settings, persisting the defaults the
// first time a screen is asked for.
func (s *SettingsService) GetOrCreate(ctx context.Context, screenID string) (*models.TvDisplaySettings, error) {
	if !models.ValidScreen(screenID) {
		return nil, invalid("unknown screen %q", screenID)
	}

	var settings models.TvDisplaySettings
	err := s.DB.WithContext(ctx).First(&settings, "screen_id = ?", screenID).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeError(err, "load screen settings")
	}

	settings = models.DefaultSettings(screenID)
	if err := s.DB.WithContext(ctx).Create(&settings).Error; err != nil {
		if !isDuplicate(err) {
			return nil, storeError(err, "create screen settings")
		}
		// Another request created the row first.
		if err := s.DB.WithContext(ctx).First(&settings, "screen_id = ?", screenID).Error; err != nil {
			return nil, storeError(err, "load screen settings")
		}
		return &settings, nil
	}
	s.Log.Info("screen settings created with defaults", "screen", screenID)
	return &settings, nil
}

// Update upserts the screen's settings and broadcasts them.
func (s *SettingsService) Update(ctx context.Context, screenID string, patch dto.SettingsPatch) (*models.TvDisplaySettings, error) {
	settings, err := s.GetOrCreate(ctx, screenID)
	if err != nil {
		return nil, err
	}

	fields, err := s.apply(ctx, settings, patch)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.DB.WithContext(ctx).Model(settings).Select(fields).Updates(settings).Error; err != nil {
			return nil, storeError(err, "update screen settings")
		}
	}

	if s.Advancer != nil {
		s.Advancer.SettingsChanged(screenID)
	}

	event := realtime.EventTV2SettingsUpdated
	if screenID == models.ScreenUncalled {
		event = realtime.EventTV1SettingsUpdated
	}
	s.Broadcaster.Emit(event, settings)
	s.Log.Info("screen settings updated", "screen", screenID, "fields", fields)
	if screenID == models.ScreenUncalled {
		// The new pool may already be exhausted.
		s.checkPools(ctx)
	}
	return settings, nil
}

// apply validates the patch and copies it onto settings, returning the
// changed struct fields.
func (s *SettingsService) apply(ctx context.Context, st *models.TvDisplaySettings, p dto.SettingsPatch) ([]string, error) {
	var fields []string
	setString := func(field string, dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
			fields = append(fields, field)
		}
	}

	setString("Section", &st.Section, p.Section)
	setString("Pool", &st.Pool, p.Pool)
	setString("TV1BannerMessage", &st.TV1BannerMessage, p.TV1BannerMessage)
	setString("TV2BannerMessage", &st.TV2BannerMessage, p.TV2BannerMessage)

	if p.AutoAdvancePool != nil {
		st.AutoAdvancePool = *p.AutoAdvancePool
		fields = append(fields, "AutoAdvancePool")
	}
	if p.AutoAdvanceDelaySeconds != nil {
		if *p.AutoAdvanceDelaySeconds < 0 {
			return nil, invalid("autoAdvanceDelaySeconds cannot be negative")
		}
		st.AutoAdvanceDelaySeconds = *p.AutoAdvanceDelaySeconds
		fields = append(fields, "AutoAdvanceDelaySeconds")
	}
	if p.DisplayMode != nil {
		mode := models.DisplayMode(strings.TrimSpace(*p.DisplayMode))
		if !mode.Valid() {
			return nil, invalid("displayMode must be one of %q, %q, %q", models.DisplayAllTeams, models.DisplaySpecificTeam, models.DisplayTopTeams)
		}
		st.DisplayMode = mode
		fields = append(fields, "DisplayMode")
	}
	if p.TopTeamsCount != nil {
		if *p.TopTeamsCount < 1 {
			return nil, invalid("topTeamsCount must be at least 1")
		}
		st.TopTeamsCount = *p.TopTeamsCount
		fields = append(fields, "TopTeamsCount")
	}
	if p.SpecificTeamID.Set {
		st.SpecificTeamID = nil
		if p.SpecificTeamID.Value != nil {
			if id := strings.TrimSpace(*p.SpecificTeamID.Value); id != "" {
				ok, err := teamExists(ctx, s.DB, id)
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, invalid("team %s does not exist", id)
				}
				st.SpecificTeamID = &id
			}
		}
		fields = append(fields, "SpecificTeamID")
	}
	return fields, nil
}

// SectionsAndPools lists the sections students belong to and every pool in
// use, always including Pool 1..8.
func (s *SettingsService) SectionsAndPools(ctx context.Context) (*dto.SectionsAndPools, error) {
	var cached dto.SectionsAndPools
	if s.Cache.Get(ctx, sectionsAndPoolsKey, &cached) {
		return &cached, nil
	}

	var sections, pools []string
	err := s.DB.WithContext(ctx).Model(&models.Student{}).
		Where("section IS NOT NULL AND section <> ''").
		Distinct().Pluck("section", &sections).Error
	if err != nil {
		return nil, storeError(err, "list sections")
	}
	err = s.DB.WithContext(ctx).Model(&models.Student{}).
		Where("pool IS NOT NULL AND pool <> ''").
		Distinct().Pluck("pool", &pools).Error
	if err != nil {
		return nil, storeError(err, "list pools")
	}

	seen := map[string]bool{}
	merged := []string{}
	for _, p := range append(models.Pools(), pools...) {
		if !seen[p] {
			seen[p] = true
			merged = append(merged, p)
		}
	}
	sort.Strings(sections)
	sort.Strings(merged)
	if sections == nil {
		sections = []string{}
	}

	result := &dto.SectionsAndPools{Sections: sections, Pools: merged}
	s.Cache.Set(ctx, sectionsAndPoolsKey, result)
	return result, nil
}
