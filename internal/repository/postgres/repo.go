// Package postgres stores profiles in a PostgreSQL table via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	age           INTEGER NOT NULL,
	gender        TEXT NOT NULL,
	location      TEXT NOT NULL DEFAULT '',
	bio           TEXT NOT NULL DEFAULT '',
	interests     TEXT[] NOT NULL DEFAULT '{}',
	pref_gender   TEXT NOT NULL DEFAULT '',
	pref_age_min  INTEGER,
	pref_age_max  INTEGER,
	pref_location TEXT NOT NULL DEFAULT '',
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const selectColumns = `id, name, age, gender, location, bio, interests,
	pref_gender, pref_age_min, pref_age_max, pref_location`

// Repo implements the profile store on PostgreSQL.
type Repo struct {
	db *sql.DB
}

// Open connects to PostgreSQL with the given DSN. The connection is verified lazily.
func Open(dsn string) (*Repo, error) {
	if dsn == "" {
		return nil, errors.New("dsn is required")
	}
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	conn.SetMaxOpenConns(20)
	conn.SetConnMaxIdleTime(5 * time.Minute)
	return New(conn), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// EnsureSchema creates the profiles table if missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create profiles table: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (r *Repo) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := r.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close releases the pool.
func (r *Repo) Close() {
	_ = r.db.Close()
}

// Upsert inserts or replaces a profile. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *domprof.Profile) (bool, error) {
	prefs := p.Preferences()
	var created bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, name, age, gender, location, bio, interests,
			pref_gender, pref_age_min, pref_age_max, pref_location, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			location = EXCLUDED.location,
			bio = EXCLUDED.bio,
			interests = EXCLUDED.interests,
			pref_gender = EXCLUDED.pref_gender,
			pref_age_min = EXCLUDED.pref_age_min,
			pref_age_max = EXCLUDED.pref_age_max,
			pref_location = EXCLUDED.pref_location,
			updated_at = now()
		RETURNING (xmax = 0)`,
		p.ID(), p.Name(), p.Age(), p.Gender(), p.Location(), p.Bio(),
		pq.Array(nonNil(p.Interests())),
		prefs.Gender(), boundArg(prefs.AgeMin), boundArg(prefs.AgeMax), prefs.Location(),
	).Scan(&created)
	if err != nil {
		return false, wrapErr("upsert profile "+p.ID(), err)
	}
	return created, nil
}

// Get returns a profile by id.
func (r *Repo) Get(ctx context.Context, id string) (domprof.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domprof.Profile{}, domain.ErrUserNotFound
		}
		return domprof.Profile{}, wrapErr("get profile "+id, err)
	}
	return p, nil
}

// List returns every profile ordered by id.
func (r *Repo) List(ctx context.Context) ([]domprof.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM profiles ORDER BY id`)
	if err != nil {
		return nil, wrapErr("list profiles", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domprof.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, wrapErr("scan profile", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate profiles", err)
	}
	return out, nil
}

// Delete removes a profile.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete profile "+id, err)
	}
	return requireAffected(res)
}

// SavePreferences overwrites the preference columns of a stored profile.
func (r *Repo) SavePreferences(ctx context.Context, id string, prefs domprof.Preferences) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET pref_gender = $2, pref_age_min = $3, pref_age_max = $4,
			pref_location = $5, updated_at = now()
		WHERE id = $1`,
		id, prefs.Gender(), boundArg(prefs.AgeMin), boundArg(prefs.AgeMax), prefs.Location(),
	)
	if err != nil {
		return wrapErr("save preferences "+id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
