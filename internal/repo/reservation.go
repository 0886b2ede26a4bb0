// Package repo contains all backing-store access for reservations.
// ReservationRepo is the document-store contract the service depends on;
// each driver (Postgres, MongoDB, Firestore, Redis, in-memory) lives in its
// own file. No business logic lives here, only storage calls and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// ReservationRepo defines the persistence operations for reservations.
// Every implementation enforces at most one reservation per time label
// atomically, so a lost check-then-create race surfaces as
// domain.ErrSlotTaken instead of a double booking.
type ReservationRepo interface {
	// List returns every reservation ordered by time label ascending.
	List(ctx context.Context) ([]domain.Reservation, error)

	// FindByTime returns the reservation holding the given slot label.
	// Returns domain.ErrNotFound if the slot is free.
	FindByTime(ctx context.Context, label string) (domain.Reservation, error)

	// Create persists r and returns it with the store-assigned ID.
	// Returns domain.ErrSlotTaken if the slot is already reserved.
	Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error)

	// DeleteAll removes every reservation and reports which could not be removed.
	DeleteAll(ctx context.Context) (domain.ClearResult, error)

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a Postgres-backed ReservationRepo.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

// List returns all reservations ordered by time label. Zero-padded labels
// sort lexicographically in chronological order, so COLLATE "C" suffices.
func (r *pgReservationRepo) List(ctx context.Context) ([]domain.Reservation, error) {
	const q = `
		SELECT id, name, time, created_at
		FROM reservations
		ORDER BY time COLLATE "C"`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.List: %w", unavailable(err))
	}
	defer rows.Close()

	out := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.List: scan: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.List: rows: %w", unavailable(err))
	}
	return out, nil
}

// FindByTime retrieves the reservation for a slot label.
func (r *pgReservationRepo) FindByTime(ctx context.Context, label string) (domain.Reservation, error) {
	const q = `
		SELECT id, name, time, created_at
		FROM reservations
		WHERE time = @time`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"time": label})
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.FindByTime: %w", err)
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.FindByTime: %w", unavailable(err))
	}
	return res, nil
}

// Create inserts a reservation. The UNIQUE (time) constraint makes the
// insert a no-op when the slot is taken; RETURNING then yields no row.
func (r *pgReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	const q = `
		INSERT INTO reservations (name, time, created_at)
		VALUES (@name, @time, @created_at)
		ON CONFLICT (time) DO NOTHING
		RETURNING id, name, time, created_at`

	args := pgx.NamedArgs{
		"name":       res.Name,
		"time":       res.Time,
		"created_at": res.CreatedAt,
	}

	row := r.db.QueryRow(ctx, q, args)
	created, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", domain.ErrSlotTaken)
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", unavailable(err))
	}
	return created, nil
}

// DeleteAll removes every row in one statement. Postgres either deletes all
// rows visible to the statement or none, so Failed is always empty.
// Rows committed by concurrent inserts after the statement's snapshot survive.
func (r *pgReservationRepo) DeleteAll(ctx context.Context) (domain.ClearResult, error) {
	const q = `DELETE FROM reservations`

	tag, err := r.db.Exec(ctx, q)
	if err != nil {
		return domain.ClearResult{}, fmt.Errorf("repo.ReservationRepo.DeleteAll: %w", unavailable(err))
	}
	return domain.ClearResult{Removed: int(tag.RowsAffected())}, nil
}

// Ping runs a trivial query through the same connection the repo uses.
func (r *pgReservationRepo) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("repo.ReservationRepo.Ping: %w", unavailable(err))
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanReservation maps a single database row into a domain.Reservation.
func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		res domain.Reservation
		id  pgtype.UUID
	)
	err := s.Scan(&id, &res.Name, &res.Time, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}
	res.ID = uuid.UUID(id.Bytes).String()
	return res, nil
}

// unavailable marks a driver error as a store failure so callers can tell
// it apart from domain outcomes. Errors that already carry a domain
// sentinel pass through unchanged.
func unavailable(err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, domain.ErrSlotTaken) ||
		errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

// clearOutcome builds the DeleteAll result from per-document deletes. When
// there were documents to delete and none of them went, the store is treated
// as unavailable rather than partially cleared.
func clearOutcome(op string, result domain.ClearResult, errs []error) (domain.ClearResult, error) {
	if len(errs) == 0 {
		return result, nil
	}
	cause := errors.Join(errs...)
	if result.Removed == 0 {
		return domain.ClearResult{}, fmt.Errorf("%s: %w", op, unavailable(cause))
	}
	result.Cause = cause
	return result, nil
}
