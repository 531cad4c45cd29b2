package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
)

// Input is an unvalidated profile save.
type Input struct {
	ID          string
	Name        string
	Age         int
	Gender      string
	Location    string
	Bio         string
	Interests   []string
	Preferences PreferencesInput
}

// PreferencesInput is an unvalidated preference save. An empty Gender on a
// profile save means the wildcard.
type PreferencesInput struct {
	Gender   string
	AgeMin   *int
	AgeMax   *int
	Location string
}

// Service handles profile CRUD and preference updates.
type Service struct {
	repo  Repository
	newID func() string
}

// New creates a profile service.
func New(repo Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString}
}

// Upsert validates and stores a profile, replacing any previous version.
// A missing id is generated. Reports whether the profile was created.
func (s *Service) Upsert(ctx context.Context, in Input) (domprof.Profile, bool, error) {
	if in.ID == "" {
		in.ID = s.newID()
	}

	gender := in.Preferences.Gender
	if gender == "" {
		gender = domprof.WildcardGender
	}
	prefs, err := domprof.NewPreferences(gender, in.Preferences.AgeMin, in.Preferences.AgeMax, in.Preferences.Location)
	if err != nil {
		return domprof.Profile{}, false, fmt.Errorf("validate preferences: %w", err)
	}

	p, err := domprof.New(in.ID, in.Name, in.Age, in.Gender, in.Location, in.Bio, in.Interests, prefs)
	if err != nil {
		return domprof.Profile{}, false, fmt.Errorf("validate profile: %w", err)
	}

	created, err := s.repo.Upsert(ctx, &p)
	if err != nil {
		return domprof.Profile{}, false, fmt.Errorf("upsert profile: %w", err)
	}
	return p, created, nil
}

// Get retrieves a profile by id.
func (s *Service) Get(ctx context.Context, id string) (domprof.Profile, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domprof.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// List returns all profiles.
func (s *Service) List(ctx context.Context) ([]domprof.Profile, error) {
	ps, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return ps, nil
}

// Delete removes a profile.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// UpdatePreferences validates and saves matching preferences. An inverted
// age range is rejected here even though matching tolerates one in storage.
func (s *Service) UpdatePreferences(ctx context.Context, id string, in PreferencesInput) (domprof.Profile, error) {
	prefs, err := domprof.NewPreferences(in.Gender, in.AgeMin, in.AgeMax, in.Location)
	if err != nil {
		return domprof.Profile{}, fmt.Errorf("validate preferences: %w", err)
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domprof.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if err := s.repo.SavePreferences(ctx, id, prefs); err != nil {
		return domprof.Profile{}, fmt.Errorf("save preferences: %w", err)
	}
	return p.WithPreferences(prefs), nil
}
