package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ICMVRD/sb1-hdboxt/internal/config"
	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/internal/repo"
	"github.com/ICMVRD/sb1-hdboxt/testutil"
)

// newRedisRepo opens a repo on a per-test collection whose key is deleted
// afterwards. Skips unless TEST_REDIS_ADDR is set.
func newRedisRepo(t *testing.T) repo.ReservationRepo {
	t.Helper()
	addr := testutil.RedisAddr(t)
	collection := "slots_test_" + uuid.NewString()[:8]

	conn, err := repo.Open(context.Background(), config.StoreConfig{
		Driver:     config.DriverRedis,
		Collection: collection,
		Redis:      config.RedisConfig{Addr: addr},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Repo.DeleteAll(context.Background())
		conn.Close()
	})
	return conn.Repo
}

func TestReservationRepo_Redis(t *testing.T) {
	runReservationRepoContract(t, newRedisRepo)
}

func TestReservationRepo_Redis_ConcurrentCreate(t *testing.T) {
	runConcurrentCreate(t, newRedisRepo(t))
}

// flakyRedis serves HGetAll from rows and fails HDel for the labels in
// failing. Every other command panics through the nil embedded interface.
type flakyRedis struct {
	redis.Cmdable
	rows    map[string]string
	failing map[string]bool
}

func (f *flakyRedis) HGetAll(ctx context.Context, _ string) *redis.MapStringStringCmd {
	cmd := redis.NewMapStringStringCmd(ctx)
	cmd.SetVal(f.rows)
	return cmd
}

func (f *flakyRedis) HDel(ctx context.Context, _ string, fields ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.failing[fields[0]] {
		cmd.SetErr(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"))
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

func storedRows(t *testing.T, rs ...domain.Reservation) map[string]string {
	t.Helper()
	rows := make(map[string]string, len(rs))
	for _, r := range rs {
		raw, err := json.Marshal(r)
		require.NoError(t, err)
		rows[r.Time] = string(raw)
	}
	return rows
}

func TestRedisReservationRepo_DeleteAll_SomeDeletesFail(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rdb := &flakyRedis{
		rows: storedRows(t,
			domain.Reservation{ID: "a", Name: "Ana", Time: "08:00 - 08:15", CreatedAt: at},
			domain.Reservation{ID: "b", Name: "Beto", Time: "08:15 - 08:30", CreatedAt: at},
		),
		failing: map[string]bool{"08:15 - 08:30": true},
	}
	r := repo.NewRedisReservationRepo(rdb, "slots")

	res, err := r.DeleteAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, []string{"b"}, res.Failed)
	require.Error(t, res.Cause)
	assert.Contains(t, res.Cause.Error(), "connection refused")
}

func TestRedisReservationRepo_DeleteAll_EveryDeleteFails(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rdb := &flakyRedis{
		rows: storedRows(t,
			domain.Reservation{ID: "a", Name: "Ana", Time: "08:00 - 08:15", CreatedAt: at},
			domain.Reservation{ID: "b", Name: "Beto", Time: "08:15 - 08:30", CreatedAt: at},
		),
		failing: map[string]bool{"08:00 - 08:15": true, "08:15 - 08:30": true},
	}
	r := repo.NewRedisReservationRepo(rdb, "slots")

	_, err := r.DeleteAll(context.Background())

	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrPartialClear)
	assert.Contains(t, err.Error(), "connection refused")
}
