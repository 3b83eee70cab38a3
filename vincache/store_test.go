package vincache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auto-strada/site/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	name   string
	entry  *Entry
	getErr error
	putErr error

	gets int
	puts []Entry
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Get(ctx context.Context, vin string, minMileage, maxMileage int) (*Entry, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	e := f.entry
	if e == nil || e.VIN != vin || e.Mileage < minMileage || e.Mileage > maxMileage {
		return nil, nil
	}
	return e, nil
}

func (f *fakeBackend) Put(ctx context.Context, e Entry) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts = append(f.puts, e)
	return nil
}

const testVIN = "WBAJC310X0G806970"

func testEntry(age time.Duration) *Entry {
	return &Entry{
		VIN:       testVIN,
		Mileage:   50000,
		Data:      valuation.ValuationData{Make: "BMW", BasePrice: 22000, ReservePrice: 13860},
		CreatedAt: time.Now().Add(-age),
	}
}

func newTestStore(t *testing.T, backends ...Backend) *Store {
	t.Helper()
	s, err := New(backends...)
	require.NoError(t, err)
	return s
}

func TestGetWithinToleranceBand(t *testing.T) {
	backend := &fakeBackend{name: "primary", entry: testEntry(time.Hour)}
	s := newTestStore(t, backend)

	// 50000 stored, 52000 queried: band is [49400, 54600], hit.
	data, found := s.Get(context.Background(), testVIN, 52000)
	require.True(t, found)
	assert.Equal(t, 22000, data.BasePrice)
}

func TestGetOutsideToleranceBand(t *testing.T) {
	backend := &fakeBackend{name: "primary", entry: testEntry(time.Hour)}
	s := newTestStore(t, backend)

	// 50000 stored, 53500 queried: band is [50825, 56175], miss.
	_, found := s.Get(context.Background(), testVIN, 53500)
	assert.False(t, found)
}

func TestGetExpiry(t *testing.T) {
	fresh := &fakeBackend{name: "primary", entry: testEntry(29 * 24 * time.Hour)}
	s := newTestStore(t, fresh)

	_, found := s.Get(context.Background(), testVIN, 50000)
	assert.True(t, found, "29-day-old entry is still usable")

	stale := &fakeBackend{name: "primary", entry: testEntry(31 * 24 * time.Hour)}
	s = newTestStore(t, stale)

	_, found = s.Get(context.Background(), testVIN, 50000)
	assert.False(t, found, "31-day-old entry is a miss")
	assert.Equal(t, 1, stale.gets, "expiry is computed at read time, not by deletion")
}

func TestGetFallsBackOnBackendError(t *testing.T) {
	primary := &fakeBackend{name: "primary", getErr: errors.New("db down")}
	secondary := &fakeBackend{name: "secondary", entry: testEntry(time.Hour)}
	s := newTestStore(t, primary, secondary)

	data, found := s.Get(context.Background(), testVIN, 50000)
	require.True(t, found)
	assert.Equal(t, "BMW", data.Make)
	assert.Equal(t, 1, primary.gets)
	assert.Equal(t, 1, secondary.gets)
}

func TestGetFallsBackOnCleanMiss(t *testing.T) {
	primary := &fakeBackend{name: "primary"}
	secondary := &fakeBackend{name: "secondary", entry: testEntry(time.Hour)}
	s := newTestStore(t, primary, secondary)

	_, found := s.Get(context.Background(), testVIN, 50000)
	assert.True(t, found)
}

func TestGetAllBackendsFailingIsAMiss(t *testing.T) {
	primary := &fakeBackend{name: "primary", getErr: errors.New("db down")}
	secondary := &fakeBackend{name: "secondary", getErr: errors.New("redis down")}
	s := newTestStore(t, primary, secondary)

	_, found := s.Get(context.Background(), testVIN, 50000)
	assert.False(t, found)
}

func TestPutAsyncWritesFirstHealthyBackend(t *testing.T) {
	primary := &fakeBackend{name: "primary"}
	secondary := &fakeBackend{name: "secondary"}
	s := newTestStore(t, primary, secondary)

	s.PutAsync(testVIN, 50000, valuation.ValuationData{BasePrice: 22000})
	s.Wait()

	require.Len(t, primary.puts, 1)
	assert.Equal(t, testVIN, primary.puts[0].VIN)
	assert.Empty(t, secondary.puts, "write stops at the first backend that accepts")
}

func TestPutAsyncFallsBackOnWriteFailure(t *testing.T) {
	primary := &fakeBackend{name: "primary", putErr: errors.New("db down")}
	secondary := &fakeBackend{name: "secondary"}
	s := newTestStore(t, primary, secondary)

	s.PutAsync(testVIN, 50000, valuation.ValuationData{BasePrice: 22000})
	s.Wait()

	require.Len(t, secondary.puts, 1)
	assert.Equal(t, 50000, secondary.puts[0].Mileage)
}

func TestPutAsyncSwallowsTotalFailure(t *testing.T) {
	primary := &fakeBackend{name: "primary", putErr: errors.New("db down")}
	secondary := &fakeBackend{name: "secondary", putErr: errors.New("redis down")}
	s := newTestStore(t, primary, secondary)

	// Must not panic or surface anything; the cache is an optimization.
	s.PutAsync(testVIN, 50000, valuation.ValuationData{BasePrice: 22000})
	s.Wait()
}

func TestBand(t *testing.T) {
	s := newTestStore(t)

	lo, hi := s.band(50000)
	assert.Equal(t, 47500, lo)
	assert.Equal(t, 52500, hi)

	lo, hi = s.band(0)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
}
