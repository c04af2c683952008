package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"queueflow/internal/core/domain"
)

// PreferenceService manages per-admin display settings. Reads fall back to
// defaults when nothing was persisted yet.
type PreferenceService struct {
	prefRepo PreferenceRepository
	now      func() time.Time
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(prefRepo PreferenceRepository) *PreferenceService {
	return &PreferenceService{prefRepo: prefRepo, now: time.Now}
}

// Get returns the admin's preferences, defaulting to the light theme
func (s *PreferenceService) Get(ctx context.Context, adminID string) (*domain.Preference, error) {
	pref, err := s.prefRepo.Get(ctx, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.Preference{AdminID: adminID, Theme: domain.ThemeLight}, nil
		}
		return nil, err
	}
	return pref, nil
}

// SetTheme persists an explicit theme choice
func (s *PreferenceService) SetTheme(ctx context.Context, adminID, theme string) (*domain.Preference, error) {
	if theme != domain.ThemeLight && theme != domain.ThemeDark {
		return nil, fmt.Errorf("%w: unknown theme %q", domain.ErrValidation, theme)
	}

	pref := &domain.Preference{
		AdminID:   adminID,
		Theme:     theme,
		UpdatedAt: s.now(),
	}
	if err := s.prefRepo.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// ToggleTheme flips light↔dark and persists the result
func (s *PreferenceService) ToggleTheme(ctx context.Context, adminID string) (*domain.Preference, error) {
	pref, err := s.Get(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if pref.Theme == domain.ThemeDark {
		pref.Theme = domain.ThemeLight
	} else {
		pref.Theme = domain.ThemeDark
	}
	pref.UpdatedAt = s.now()

	if err := s.prefRepo.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
