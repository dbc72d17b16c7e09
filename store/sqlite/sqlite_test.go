package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/temporal-engine/engine"
	"github.com/warp/temporal-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEventsInRange_FractionalSecondTimestamps(t *testing.T) {
	// GIVEN: a check-in carrying fractional seconds
	// WHEN: querying a range whose lower bound falls in the same second
	// THEN: the event is returned; the stored encoding must sort
	//       chronologically, not just lexicographically

	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, time.March, 2, 9, 0, 0, 500_000_000, time.UTC)
	require.NoError(t, store.AppendEvent(ctx, engine.AttendanceEvent{
		ID:         "e1",
		EmployeeID: "emp-1",
		Timestamp:  at,
		Kind:       engine.KindCheckIn,
	}))

	events, err := store.EventsInRange(ctx, "emp-1",
		time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Timestamp.Equal(at))
}

func TestEventsInRange_MixedPrecisionStaysChronological(t *testing.T) {
	// GIVEN: whole-second and fractional-second events in the same second
	// THEN: reads come back in chronological order

	store := newTestStore(t)
	ctx := context.Background()

	whole := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	frac := time.Date(2026, time.March, 2, 9, 0, 0, 500_000_000, time.UTC)

	require.NoError(t, store.AppendEvent(ctx, engine.AttendanceEvent{
		ID: "e-frac", EmployeeID: "emp-1", Timestamp: frac, Kind: engine.KindBreakIn,
	}))
	require.NoError(t, store.AppendEvent(ctx, engine.AttendanceEvent{
		ID: "e-whole", EmployeeID: "emp-1", Timestamp: whole, Kind: engine.KindCheckIn,
	}))

	events, err := store.EventsInRange(ctx, "emp-1", whole, frac.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, engine.EventID("e-whole"), events[0].ID)
	assert.Equal(t, engine.EventID("e-frac"), events[1].ID)
}

func TestLastEventBefore_FractionalSecondSameSecond(t *testing.T) {
	// GIVEN: a check-in at 09:00:00.5
	// WHEN: looking for the most recent check-in strictly before 09:00:00.75
	// THEN: the fractional check-in is found

	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, time.March, 2, 9, 0, 0, 500_000_000, time.UTC)
	require.NoError(t, store.AppendEvent(ctx, engine.AttendanceEvent{
		ID:         "e1",
		EmployeeID: "emp-1",
		Timestamp:  at,
		Kind:       engine.KindCheckIn,
	}))

	found, err := store.LastEventBefore(ctx, "emp-1", engine.KindCheckIn,
		time.Date(2026, time.March, 2, 9, 0, 0, 750_000_000, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, engine.EventID("e1"), found.ID)

	// Strictly before: the instant itself is excluded.
	found, err = store.LastEventBefore(ctx, "emp-1", engine.KindCheckIn, at)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAppendEvent_NonUTCTimestampNormalized(t *testing.T) {
	// GIVEN: an event ingested with a zoned timestamp
	// THEN: it round-trips to the same instant and matches UTC range queries

	store := newTestStore(t)
	ctx := context.Background()

	ist := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2026, time.March, 2, 14, 30, 0, 0, ist) // 09:00 UTC
	require.NoError(t, store.AppendEvent(ctx, engine.AttendanceEvent{
		ID:         "e1",
		EmployeeID: "emp-1",
		Timestamp:  at,
		Kind:       engine.KindCheckIn,
	}))

	events, err := store.EventsInRange(ctx, "emp-1",
		time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Timestamp.Equal(at))
}
