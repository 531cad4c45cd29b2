package chi

import (
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	healthuc "github.com/kailas-cloud/matchmaker/internal/usecase/health"
	profileuc "github.com/kailas-cloud/matchmaker/internal/usecase/profile"
	usageuc "github.com/kailas-cloud/matchmaker/internal/usecase/usage"
)

// ErrorCode is the machine-readable error kind of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeInvalidPreferences ErrorCode = "invalid_preferences"
	ErrorCodeUserNotFound       ErrorCode = "user_not_found"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed   ErrorCode = "method_not_allowed"
	ErrorCodeStoreUnavailable   ErrorCode = "store_unavailable"
	ErrorCodeQuotaExceeded      ErrorCode = "embedding_quota_exceeded"
	ErrorCodeEmbeddingProvider  ErrorCode = "embedding_provider_error"
	ErrorCodeTimeout            ErrorCode = "timeout"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// UpsertUserRequest is the body of PUT /api/v1/users/{id}.
// Interests may be given as a list or as comma separated text.
type UpsertUserRequest struct {
	Name          string             `json:"name" validate:"max=64"`
	Age           int                `json:"age" validate:"required,gte=1,lte=150"`
	Gender        string             `json:"gender" validate:"required,max=32"`
	Location      string             `json:"location" validate:"max=64"`
	Bio           string             `json:"bio" validate:"max=2000"`
	Interests     []string           `json:"interests" validate:"max=32,dive,max=64"`
	InterestsText string             `json:"interests_text" validate:"max=2048"`
	Preferences   *UpsertPreferences `json:"preferences"`
}

// UpsertPreferences are the optional preferences of a profile save.
// A missing preferred gender means any.
type UpsertPreferences struct {
	Gender   string `json:"preferred_gender" validate:"max=32"`
	AgeMin   *int   `json:"preferred_age_min" validate:"omitempty,gte=0,lte=150"`
	AgeMax   *int   `json:"preferred_age_max" validate:"omitempty,gte=0,lte=150"`
	Location string `json:"preferred_location" validate:"max=64"`
}

// PreferencesRequest is the body of PUT /api/v1/users/{id}/preferences.
type PreferencesRequest struct {
	Gender   string `json:"preferred_gender" validate:"required,max=32"`
	AgeMin   *int   `json:"preferred_age_min" validate:"omitempty,gte=0,lte=150"`
	AgeMax   *int   `json:"preferred_age_max" validate:"omitempty,gte=0,lte=150"`
	Location string `json:"preferred_location" validate:"max=64"`
}

// UserResponse is the public view of a profile.
type UserResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Age         int                 `json:"age"`
	Gender      string              `json:"gender"`
	Location    string              `json:"location"`
	Bio         string              `json:"bio,omitempty"`
	Interests   []string            `json:"interests"`
	Preferences PreferencesResponse `json:"preferences"`
}

// PreferencesResponse is the public view of matching preferences.
type PreferencesResponse struct {
	Gender   string `json:"preferred_gender"`
	AgeMin   *int   `json:"preferred_age_min,omitempty"`
	AgeMax   *int   `json:"preferred_age_max,omitempty"`
	Location string `json:"preferred_location"`
}

// UserListResponse is the body of GET /api/v1/users.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Count int            `json:"count"`
}

// MatchesResponse is the body of GET /api/v1/users/{id}/matches.
type MatchesResponse struct {
	RequesterID     string      `json:"requester_id"`
	CompatibleCount int         `json:"compatible_count"`
	Items           []MatchItem `json:"items"`
}

// MatchItem is one ranked entry. Score and Breakdown are absent when unscored.
type MatchItem struct {
	User          UserResponse       `json:"user"`
	Score         *float64           `json:"score,omitempty"`
	Scored        bool               `json:"scored"`
	Breakdown     *BreakdownResponse `json:"breakdown,omitempty"`
	TasteFallback bool               `json:"taste_fallback"`
}

// BreakdownResponse exposes the individual score terms.
type BreakdownResponse struct {
	Age      float64 `json:"age"`
	Location float64 `json:"location"`
	Gender   float64 `json:"gender"`
	Taste    float64 `json:"taste"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// BatchUpsertRequest is the body of POST /api/v1/users/batch.
type BatchUpsertRequest struct {
	Items []BatchUserItem `json:"items" validate:"required,min=1,dive"`
}

// BatchUserItem is one profile of a batch save. An empty id is generated.
type BatchUserItem struct {
	ID string `json:"id" validate:"max=128"`
	UpsertUserRequest
}

// BatchDeleteRequest is the body of POST /api/v1/users/batch/delete.
type BatchDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// BatchResponse reports every item of a batch in request order.
type BatchResponse struct {
	Items     []BatchItemResult `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// BatchItemResult is the outcome of one batch item.
// Status is created, upserted, deleted or error.
type BatchItemResult struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// UsageResponse is the body of GET /api/v1/usage. Times are Unix milliseconds;
// a remaining of -1 means unlimited.
type UsageResponse struct {
	Period          string `json:"period"`
	PeriodStartMs   int64  `json:"period_start_ms"`
	PeriodEndMs     int64  `json:"period_end_ms"`
	TokensLimit     int64  `json:"tokens_limit"`
	TokensUsed      int64  `json:"tokens_used"`
	TokensRemaining int64  `json:"tokens_remaining"`
	Exhausted       bool   `json:"exhausted"`
}

func (req *UpsertUserRequest) toInput(id string) profileuc.Input {
	interests := req.Interests
	if len(interests) == 0 && req.InterestsText != "" {
		interests = domprof.ParseInterests(req.InterestsText)
	}
	in := profileuc.Input{
		ID:        id,
		Name:      req.Name,
		Age:       req.Age,
		Gender:    req.Gender,
		Location:  req.Location,
		Bio:       req.Bio,
		Interests: interests,
	}
	if p := req.Preferences; p != nil {
		in.Preferences = profileuc.PreferencesInput{
			Gender: p.Gender, AgeMin: p.AgeMin, AgeMax: p.AgeMax, Location: p.Location,
		}
	}
	return in
}

func (req *PreferencesRequest) toInput() profileuc.PreferencesInput {
	return profileuc.PreferencesInput{
		Gender: req.Gender, AgeMin: req.AgeMin, AgeMax: req.AgeMax, Location: req.Location,
	}
}

func userToResponse(p *domprof.Profile) UserResponse {
	interests := p.Interests()
	if interests == nil {
		interests = []string{}
	}
	prefs := p.Preferences()
	resp := UserResponse{
		ID:        p.ID(),
		Name:      p.Name(),
		Age:       p.Age(),
		Gender:    p.Gender(),
		Location:  p.Location(),
		Bio:       p.Bio(),
		Interests: interests,
		Preferences: PreferencesResponse{
			Gender:   prefs.Gender(),
			Location: prefs.Location(),
		},
	}
	if v, ok := prefs.AgeMin(); ok {
		resp.Preferences.AgeMin = &v
	}
	if v, ok := prefs.AgeMax(); ok {
		resp.Preferences.AgeMax = &v
	}
	return resp
}

func rankingToResponse(requesterID string, r match.Ranking) MatchesResponse {
	items := make([]MatchItem, len(r.Items))
	for i := range r.Items {
		c := &r.Items[i]
		item := MatchItem{
			User:          userToResponse(&c.Profile),
			Scored:        c.Scored,
			TasteFallback: c.TasteFallback,
		}
		if c.Scored {
			score := c.Score
			item.Score = &score
			item.Breakdown = &BreakdownResponse{
				Age:      c.Breakdown.Age,
				Location: c.Breakdown.Location,
				Gender:   c.Breakdown.Gender,
				Taste:    c.Breakdown.Taste,
			}
		}
		items[i] = item
	}
	return MatchesResponse{
		RequesterID:     requesterID,
		CompatibleCount: r.CompatibleCount,
		Items:           items,
	}
}

func healthToResponse(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks}
}

func usageToResponse(r usageuc.Report) UsageResponse {
	return UsageResponse{
		Period:          string(r.Period),
		PeriodStartMs:   r.Start.UnixMilli(),
		PeriodEndMs:     r.End.UnixMilli(),
		TokensLimit:     r.Limit,
		TokensUsed:      r.Used,
		TokensRemaining: r.Remaining,
		Exhausted:       r.Exhausted,
	}
}
