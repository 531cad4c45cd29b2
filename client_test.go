package matchmaker

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	batchuc "github.com/kailas-cloud/matchmaker/internal/usecase/batch"
	profileuc "github.com/kailas-cloud/matchmaker/internal/usecase/profile"
)

type fakeProfiles struct {
	upsertFn func(ctx context.Context, in profileuc.Input) (domprof.Profile, bool, error)
	getFn    func(ctx context.Context, id string) (domprof.Profile, error)
	listFn   func(ctx context.Context) ([]domprof.Profile, error)
	deleteFn func(ctx context.Context, id string) error
	prefsFn  func(ctx context.Context, id string, in profileuc.PreferencesInput) (domprof.Profile, error)
}

func (f *fakeProfiles) Upsert(ctx context.Context, in profileuc.Input) (domprof.Profile, bool, error) {
	return f.upsertFn(ctx, in)
}

func (f *fakeProfiles) Get(ctx context.Context, id string) (domprof.Profile, error) {
	return f.getFn(ctx, id)
}

func (f *fakeProfiles) List(ctx context.Context) ([]domprof.Profile, error) {
	return f.listFn(ctx)
}

func (f *fakeProfiles) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeProfiles) UpdatePreferences(
	ctx context.Context, id string, in profileuc.PreferencesInput,
) (domprof.Profile, error) {
	return f.prefsFn(ctx, id, in)
}

type fakeBatch struct {
	fn func(ctx context.Context, items []profileuc.Input) []batchuc.Result
}

func (f *fakeBatch) Upsert(ctx context.Context, items []profileuc.Input) []batchuc.Result {
	return f.fn(ctx, items)
}

type fakeMatching struct {
	fn func(ctx context.Context, id string) (match.Ranking, error)
}

func (f *fakeMatching) ComputeMatches(ctx context.Context, id string) (match.Ranking, error) {
	return f.fn(ctx, id)
}

func stored(id string, age int) domprof.Profile {
	prefs := domprof.ReconstructPreferences("여자", domprof.IntPtr(25), nil, "서울")
	return domprof.Reconstruct(id, "민수", age, "남자", "서울", "", []string{"여행"}, prefs)
}

func TestNew_NoAddress(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	if _, err := createStore(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithValkey("localhost:6379", "secret")(cfg)
	if cfg.driver != "valkey" || cfg.password != "secret" || len(cfg.addrs) != 1 {
		t.Errorf("valkey option not applied: %+v", cfg)
	}

	WithRedis("redis:6379", "")(cfg)
	if cfg.driver != "redis" || cfg.addrs[0] != "redis:6379" {
		t.Errorf("redis option not applied: %+v", cfg)
	}

	WithDimensions(8)(cfg)
	if cfg.dimensions != 8 {
		t.Errorf("dimensions = %d, want 8", cfg.dimensions)
	}

	WithWeights(Weights{Age: 10})(cfg)
	if cfg.weights == nil || cfg.weights.Age != 10 {
		t.Errorf("weights not applied: %+v", cfg.weights)
	}
}

func TestExtractorAdapter(t *testing.T) {
	var seen Profile
	ex := extractorFunc(func(_ context.Context, p Profile) ([]float64, error) {
		seen = p
		return []float64{1, 0}, nil
	})

	p := stored("minsu", 30)
	v, err := (&extractorAdapter{inner: ex}).Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Dim() != 2 {
		t.Errorf("dim = %d, want 2", v.Dim())
	}
	if seen.ID != "minsu" || seen.Interests[0] != "여행" {
		t.Errorf("profile not converted: %+v", seen)
	}
}

func TestExtractorAdapter_Error(t *testing.T) {
	ex := extractorFunc(func(context.Context, Profile) ([]float64, error) {
		return nil, errors.New("model down")
	})
	if _, err := (&extractorAdapter{inner: ex}).Extract(context.Background(), stored("a", 30)); err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestUpsertUser_ConvertsBothWays(t *testing.T) {
	var got profileuc.Input
	c := &Client{profiles: &fakeProfiles{
		upsertFn: func(_ context.Context, in profileuc.Input) (domprof.Profile, bool, error) {
			got = in
			return stored(in.ID, in.Age), true, nil
		},
	}}

	minAge := 25
	p, created, err := c.UpsertUser(context.Background(), Profile{
		ID: "minsu", Age: 30, Gender: "남자",
		Preferences: Preferences{Gender: "여자", AgeMin: &minAge},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created")
	}
	if got.Preferences.Gender != "여자" || *got.Preferences.AgeMin != 25 {
		t.Errorf("input preferences = %+v", got.Preferences)
	}
	if p.Preferences.AgeMin == nil || *p.Preferences.AgeMin != 25 || p.Preferences.AgeMax != nil {
		t.Errorf("returned preferences = %+v", p.Preferences)
	}
}

func TestUpsertUsers(t *testing.T) {
	c := &Client{batch: &fakeBatch{
		fn: func(_ context.Context, items []profileuc.Input) []batchuc.Result {
			return []batchuc.Result{
				{ID: items[0].ID, Created: true},
				{ID: items[1].ID, Err: domain.ErrInvalidProfile},
			}
		},
	}}

	res := c.UpsertUsers(context.Background(), []Profile{{ID: "a"}, {ID: "b"}})
	if len(res) != 2 {
		t.Fatalf("len = %d, want 2", len(res))
	}
	if res[0].ID != "a" || !res[0].Created || res[0].Err != nil {
		t.Errorf("res[0] = %+v", res[0])
	}
	if !errors.Is(res[1].Err, ErrInvalidProfile) {
		t.Errorf("res[1].Err = %v", res[1].Err)
	}
}

func TestGetUser_WrapsNotFound(t *testing.T) {
	c := &Client{profiles: &fakeProfiles{
		getFn: func(context.Context, string) (domprof.Profile, error) {
			return domprof.Profile{}, domain.ErrUserNotFound
		},
	}}
	_, err := c.GetUser(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestListUsers(t *testing.T) {
	c := &Client{profiles: &fakeProfiles{
		listFn: func(context.Context) ([]domprof.Profile, error) {
			return []domprof.Profile{stored("a", 30), stored("b", 31)}, nil
		},
	}}
	users, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[1].ID != "b" || users[1].Age != 31 {
		t.Errorf("users = %+v", users)
	}
}

func TestSetPreferences_PropagatesValidation(t *testing.T) {
	c := &Client{profiles: &fakeProfiles{
		prefsFn: func(context.Context, string, profileuc.PreferencesInput) (domprof.Profile, error) {
			return domprof.Profile{}, domain.ErrInvalidPreferences
		},
	}}
	_, err := c.SetPreferences(context.Background(), "a", Preferences{Gender: AnyGender})
	if !errors.Is(err, ErrInvalidPreferences) {
		t.Fatalf("err = %v, want ErrInvalidPreferences", err)
	}
}

func TestDeleteUser(t *testing.T) {
	var deleted string
	c := &Client{profiles: &fakeProfiles{
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}}
	if err := c.DeleteUser(context.Background(), "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "a" {
		t.Errorf("deleted = %q", deleted)
	}
}

func TestMatches_ConvertsRanking(t *testing.T) {
	c := &Client{matching: &fakeMatching{
		fn: func(context.Context, string) (match.Ranking, error) {
			return match.Ranking{
				Items: []match.Candidate{
					match.ScoredCandidate(stored("a", 28), match.Breakdown{Age: 98, Location: 50, Gender: 30}, true),
					match.Unscored(stored("b", 40)),
				},
				CompatibleCount: 1,
			}, nil
		},
	}}

	r, err := c.Matches(context.Background(), "me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	compat := r.Compatible()
	if len(compat) != 1 || compat[0].Score != 178 || !compat[0].TasteFallback {
		t.Errorf("compatible = %+v", compat)
	}
	if compat[0].Breakdown.Age != 98 {
		t.Errorf("breakdown = %+v", compat[0].Breakdown)
	}
	others := r.Others()
	if len(others) != 1 || others[0].Scored || others[0].Profile.ID != "b" {
		t.Errorf("others = %+v", others)
	}
}

func TestMatches_Error(t *testing.T) {
	c := &Client{matching: &fakeMatching{
		fn: func(context.Context, string) (match.Ranking, error) {
			return match.Ranking{}, domain.ErrStoreUnavailable
		},
	}}
	if _, err := c.Matches(context.Background(), "me"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}

type extractorFunc func(ctx context.Context, p Profile) ([]float64, error)

func (f extractorFunc) Extract(ctx context.Context, p Profile) ([]float64, error) { return f(ctx, p) }
