package postgresrepo_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/postgres"
	"github.com/sportspass/ticketing/internal/repository"
	postgresrepo "github.com/sportspass/ticketing/internal/repository/postgres"
	"github.com/sportspass/ticketing/internal/service/reservation"
)

// dsnEnv names a disposable database; the tests create their own rows and
// never truncate.
const dsnEnv = "TICKETING_TEST_POSTGRES_DSN"

func openStore(t *testing.T) *postgresrepo.Store {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	ctx := context.Background()
	pool, err := postgres.New(ctx, postgres.Config{DSN: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))

	return postgresrepo.NewStore(pool)
}

func seedSession(t *testing.T, store *postgresrepo.Store, capacity int) domain.Session {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()

	ev := domain.Event{
		ID:          uuid.New(),
		Name:        "Race Night",
		Slug:        "race-night-" + uuid.NewString()[:8],
		CategoryID:  uuid.New(),
		SponsorID:   uuid.New(),
		Date:        now.Add(72 * time.Hour),
		ReleaseDate: now.Add(-time.Hour),
		Status:      domain.EventActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.Catalog().CreateEvent(ctx, &ev))

	s := domain.Session{
		ID:         uuid.New(),
		EventID:    ev.ID,
		Name:       "Day 1",
		Place:      "Arena",
		StartsAt:   now.Add(72 * time.Hour),
		SalesOpen:  now.Add(-time.Hour),
		SalesClose: now.Add(time.Hour),
		Areas:      []domain.Area{{Name: "A", PriceCents: 800, Capacity: capacity, Remaining: capacity}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.Catalog().CreateSession(ctx, &s))

	return s
}

func remaining(t *testing.T, store *postgresrepo.Store, sessionID uuid.UUID) int {
	t.Helper()

	s, err := store.Inventory().GetSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, s.Areas, 1)
	return s.Areas[0].Remaining
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSingleSeatRaceNeverOversells(t *testing.T) {
	const (
		capacity = 5
		buyers   = 50
	)

	ctx := context.Background()
	store := openStore(t)
	sess := seedSession(t, store, capacity)
	ledger := reservation.New(store, nil, discard(), reservation.Config{TTL: time.Hour})

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		won   []domain.ReservationResult
		short atomic.Int32
		other atomic.Int32
	)

	start := make(chan struct{})
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			res, err := ledger.TryReserve(ctx, uuid.New(), sess.ID, []domain.AreaQuantity{{Area: "A", Quantity: 1}})
			var sold *reservation.InsufficientInventoryError
			switch {
			case err == nil:
				mu.Lock()
				won = append(won, *res)
				mu.Unlock()
			case errors.As(err, &sold):
				short.Add(1)
			default:
				t.Logf("unexpected reserve error: %v", err)
				other.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	t.Cleanup(func() {
		for _, r := range won {
			_ = ledger.ReleaseReservation(context.Background(), r.Reservation.ID)
		}
	})

	require.Zero(t, other.Load())
	assert.Len(t, won, capacity)
	assert.EqualValues(t, buyers-capacity, short.Load())
	assert.Equal(t, 0, remaining(t, store, sess.ID))

	seats := make(map[int]struct{}, len(won))
	for _, r := range won {
		require.Len(t, r.Allocations, 1)
		seats[r.Allocations[0].FirstSeat] = struct{}{}
	}
	assert.Len(t, seats, capacity, "every winner holds a distinct seat")
}

func TestCommitRacesExpirySweep(t *testing.T) {
	const rounds = 20

	ctx := context.Background()
	store := openStore(t)

	base := time.Now().UTC()
	ledger := reservation.New(store, nil, discard(), reservation.Config{
		TTL: time.Minute,
		Now: func() time.Time { return base },
	})
	sweeper := reservation.New(store, nil, discard(), reservation.Config{
		TTL:        time.Minute,
		SweepBatch: 1000,
		Now:        func() time.Time { return base.Add(2 * time.Minute) },
	})
	readCommitted := &repository.TxOptions{IsoLevel: repository.ReadCommitted}

	var committed, released int
	for range rounds {
		sess := seedSession(t, store, 1)

		held, err := ledger.TryReserve(ctx, uuid.New(), sess.ID, []domain.AreaQuantity{{Area: "A", Quantity: 1}})
		require.NoError(t, err)
		require.Equal(t, 0, remaining(t, store, sess.ID))

		var (
			wg        sync.WaitGroup
			commitErr error
			sweepErr  error
		)
		orderID := uuid.New()
		start := make(chan struct{})

		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			commitErr = store.RunTx(ctx, readCommitted, func(ctx context.Context, tx repository.Repos) error {
				return tx.Inventory().MarkReservation(ctx, held.Reservation.ID,
					domain.ReservationPending, domain.ReservationCommitted, &orderID)
			})
		}()
		go func() {
			defer wg.Done()
			<-start
			_, sweepErr = sweeper.Expire(ctx)
		}()
		close(start)
		wg.Wait()

		require.NoError(t, sweepErr)

		got, err := store.Inventory().GetReservation(ctx, held.Reservation.ID)
		require.NoError(t, err)

		switch got.Status {
		case domain.ReservationCommitted:
			committed++
			require.NoError(t, commitErr)
			require.NotNil(t, got.OrderID)
			assert.Equal(t, orderID, *got.OrderID)
			assert.Equal(t, 0, remaining(t, store, sess.ID), "committed seat must stay sold")
		case domain.ReservationReleased:
			released++
			require.ErrorIs(t, commitErr, repository.ErrConflict)
			assert.Equal(t, 1, remaining(t, store, sess.ID), "released seat goes back exactly once")
		default:
			t.Fatalf("reservation left in %q", got.Status)
		}
	}

	t.Logf("committed=%d released=%d", committed, released)
	assert.Equal(t, rounds, committed+released)
}
