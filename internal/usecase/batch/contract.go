package batch

import (
	"context"

	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
	profileuc "github.com/kailas-cloud/matchmaker/internal/usecase/profile"
)

// ProfileUpserter validates and stores a single profile.
type ProfileUpserter interface {
	Upsert(ctx context.Context, in profileuc.Input) (domprof.Profile, bool, error)
}

// ProfileDeleter deletes a single profile.
type ProfileDeleter interface {
	Delete(ctx context.Context, id string) error
}
