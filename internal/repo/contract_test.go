package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/internal/repo"
)

// reservationFixture returns a Reservation ready for Create.
func reservationFixture(name, label string) domain.Reservation {
	return domain.Reservation{
		Name:      name,
		Time:      label,
		CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

// runReservationRepoContract exercises the behaviour every backend must share.
// newRepo must return an empty store scoped to the calling test.
func runReservationRepoContract(t *testing.T, newRepo func(t *testing.T) repo.ReservationRepo) {
	t.Run("Create", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		input := reservationFixture("Ana", "08:00 - 08:15")
		got, err := r.Create(ctx, input)

		require.NoError(t, err)
		assert.NotEmpty(t, got.ID, "ID should be assigned by the store")
		assert.Equal(t, "Ana", got.Name)
		assert.Equal(t, "08:00 - 08:15", got.Time)
		assert.True(t, got.CreatedAt.Equal(input.CreatedAt), "CreatedAt mismatch: %v", got.CreatedAt)
	})

	t.Run("Create_SlotTaken", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		_, err := r.Create(ctx, reservationFixture("Ana", "08:00 - 08:15"))
		require.NoError(t, err)

		_, err = r.Create(ctx, reservationFixture("Beto", "08:00 - 08:15"))
		assert.ErrorIs(t, err, domain.ErrSlotTaken)

		all, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Ana", all[0].Name)
	})

	t.Run("Create_SameNameManySlots", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		_, err := r.Create(ctx, reservationFixture("Ana", "08:00 - 08:15"))
		require.NoError(t, err)
		_, err = r.Create(ctx, reservationFixture("Ana", "08:15 - 08:30"))
		require.NoError(t, err)

		all, err := r.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("FindByTime", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		created, err := r.Create(ctx, reservationFixture("Carla", "23:45 - 00:00"))
		require.NoError(t, err)

		got, err := r.FindByTime(ctx, "23:45 - 00:00")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Carla", got.Name)
	})

	t.Run("FindByTime_NotFound", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.FindByTime(context.Background(), "08:00 - 08:15")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("List_OrderedByTime", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		for _, label := range []string{"09:00 - 09:15", "08:00 - 08:15", "23:45 - 00:00", "00:00 - 00:15"} {
			_, err := r.Create(ctx, reservationFixture("P", label))
			require.NoError(t, err)
		}

		all, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "00:00 - 00:15", all[0].Time)
		assert.Equal(t, "08:00 - 08:15", all[1].Time)
		assert.Equal(t, "09:00 - 09:15", all[2].Time)
		assert.Equal(t, "23:45 - 00:00", all[3].Time)
	})

	t.Run("List_Empty", func(t *testing.T) {
		r := newRepo(t)

		all, err := r.List(context.Background())

		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		for _, label := range []string{"01:00 - 01:15", "02:00 - 02:15", "03:00 - 03:15"} {
			_, err := r.Create(ctx, reservationFixture("P", label))
			require.NoError(t, err)
		}

		res, err := r.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Removed)
		assert.Empty(t, res.Failed)

		all, err := r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		// The slot is bookable again after a clear.
		_, err = r.Create(ctx, reservationFixture("Ana", "01:00 - 01:15"))
		assert.NoError(t, err)
	})

	t.Run("DeleteAll_Empty", func(t *testing.T) {
		r := newRepo(t)

		res, err := r.DeleteAll(context.Background())

		require.NoError(t, err)
		assert.Zero(t, res.Removed)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(context.Background()))
	})
}

// runConcurrentCreate fires many Creates for one slot at once and checks that
// exactly one wins. newRepo must return a store safe for concurrent use.
func runConcurrentCreate(t *testing.T, r repo.ReservationRepo) {
	const callers = 16
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		lost    int
		unknown []error
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := r.Create(ctx, reservationFixture("racer", "12:00 - 12:15"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, domain.ErrSlotTaken):
				lost++
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Empty(t, unknown)
	assert.Equal(t, 1, won, "exactly one caller should get the slot")
	assert.Equal(t, callers-1, lost)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
