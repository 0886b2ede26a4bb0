package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// redisReservationRepo stores every reservation as one field of a single
// hash, keyed by slot label. HSETNX only writes a field that does not exist,
// which makes the insert the uniqueness check.
type redisReservationRepo struct {
	rdb redis.Cmdable
	key string
}

// NewRedisReservationRepo stores reservations in the hash "<collection>:slots".
func NewRedisReservationRepo(rdb redis.Cmdable, collection string) ReservationRepo {
	return &redisReservationRepo{rdb: rdb, key: collection + ":slots"}
}

func (r *redisReservationRepo) List(ctx context.Context) ([]domain.Reservation, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("repo.redisReservationRepo.List: %w", unavailable(err))
	}

	out := make([]domain.Reservation, 0, len(fields))
	for label, raw := range fields {
		var res domain.Reservation
		if err := json.Unmarshal([]byte(raw), &res); err != nil {
			return nil, fmt.Errorf("repo.redisReservationRepo.List: decode %q: %w", label, err)
		}
		out = append(out, res)
	}
	sortByTime(out)
	return out, nil
}

func (r *redisReservationRepo) FindByTime(ctx context.Context, label string) (domain.Reservation, error) {
	raw, err := r.rdb.HGet(ctx, r.key, label).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Reservation{}, fmt.Errorf("repo.redisReservationRepo.FindByTime: %w", domain.ErrNotFound)
		}
		return domain.Reservation{}, fmt.Errorf("repo.redisReservationRepo.FindByTime: %w", unavailable(err))
	}

	var res domain.Reservation
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.redisReservationRepo.FindByTime: decode: %w", err)
	}
	return res, nil
}

func (r *redisReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	res.ID = uuid.NewString()
	res.CreatedAt = res.CreatedAt.UTC()

	raw, err := json.Marshal(res)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.redisReservationRepo.Create: encode: %w", err)
	}

	ok, err := r.rdb.HSetNX(ctx, r.key, res.Time, raw).Result()
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.redisReservationRepo.Create: %w", unavailable(err))
	}
	if !ok {
		return domain.Reservation{}, fmt.Errorf("repo.redisReservationRepo.Create: %w", domain.ErrSlotTaken)
	}
	return res, nil
}

// DeleteAll removes each field present when the call starts. Fields added
// concurrently after the snapshot are left in place.
func (r *redisReservationRepo) DeleteAll(ctx context.Context) (domain.ClearResult, error) {
	current, err := r.List(ctx)
	if err != nil {
		return domain.ClearResult{}, fmt.Errorf("repo.redisReservationRepo.DeleteAll: %w", err)
	}

	var (
		result domain.ClearResult
		errs   []error
	)
	for _, res := range current {
		if err := r.rdb.HDel(ctx, r.key, res.Time).Err(); err != nil {
			result.Failed = append(result.Failed, res.ID)
			errs = append(errs, fmt.Errorf("%s: %w", res.ID, err))
			continue
		}
		result.Removed++
	}
	return clearOutcome("repo.redisReservationRepo.DeleteAll", result, errs)
}

func (r *redisReservationRepo) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("repo.redisReservationRepo.Ping: %w", unavailable(err))
	}
	return nil
}
