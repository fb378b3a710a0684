package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/apperror"
	"github.com/stemsi/attendance-backend/internal/repository"
)

// NewPgStores binds the PostgreSQL repositories to q.
func NewPgStores(q repository.Querier) Stores {
	return Stores{
		Students:   repository.NewStudentRepository(q),
		Attendance: repository.NewAttendanceRepository(q),
	}
}

// PgTransactor runs atomic units as PostgreSQL transactions.
type PgTransactor struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
	log  zerolog.Logger
}

// NewPgTransactor creates a PgTransactor using the given isolation level.
func NewPgTransactor(pool *pgxpool.Pool, iso pgx.TxIsoLevel, log zerolog.Logger) *PgTransactor {
	return &PgTransactor{
		pool: pool,
		opts: pgx.TxOptions{IsoLevel: iso, AccessMode: pgx.ReadWrite},
		log:  log.With().Str("component", "transactor").Logger(),
	}
}

// WithTx implements Transactor.
func (t *PgTransactor) WithTx(ctx context.Context, fn func(Stores) error) error {
	tx, err := t.pool.BeginTx(ctx, t.opts)
	if err != nil {
		return apperror.Unavailable("begin", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(NewPgStores(tx)); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			t.log.Error().Err(rbErr).AnErr("cause", err).Msg("Rollback failed")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Unavailable("commit", err)
	}
	return nil
}
