package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// openDatabase opens the Postgres pool and waits for it to answer pings.
// Postgres is often still starting when this service comes up, so failed
// pings are retried with doubling backoff until connectTimeout elapses.
func openDatabase(ctx context.Context, dsn string, log zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	const (
		pingTimeout    = 3 * time.Second
		connectTimeout = 30 * time.Second
	)

	var lastErr error
	backoff := 250 * time.Millisecond
	for start := time.Now(); time.Since(start) < connectTimeout && ctx.Err() == nil; {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}

		log.Warn().Err(lastErr).Dur("backoff", backoff).Msg("database not ready, retrying")
		time.Sleep(backoff)
		if backoff < 4*time.Second {
			backoff *= 2
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}
