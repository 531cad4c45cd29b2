package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (domprof.Profile, error) {
	var (
		id, name, gender, location, bio string
		age                             int
		interests                       []string
		prefGender, prefLocation        string
		prefMin, prefMax                sql.NullInt64
	)
	err := row.Scan(
		&id, &name, &age, &gender, &location, &bio, pq.Array(&interests),
		&prefGender, &prefMin, &prefMax, &prefLocation,
	)
	if err != nil {
		return domprof.Profile{}, err //nolint:wrapcheck // callers wrap with the query name
	}
	prefs := domprof.ReconstructPreferences(prefGender, nullInt(prefMin), nullInt(prefMax), prefLocation)
	return domprof.Reconstruct(id, name, age, gender, location, bio, interests, prefs), nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// boundArg turns an optional bound accessor into a query argument (NULL when absent).
func boundArg(get func() (int, bool)) sql.NullInt64 {
	v, ok := get()
	return sql.NullInt64{Int64: int64(v), Valid: ok}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// wrapErr maps connection-level failures to ErrStoreUnavailable.
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
