package vincache

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/auto-strada/site/cache"
	"github.com/auto-strada/site/config"
	"github.com/auto-strada/site/valuation"
)

// Entry is one cached valuation. Entries are never deleted; expiry is
// computed at read time from CreatedAt.
type Entry struct {
	VIN       string                  `json:"vin"`
	Mileage   int                     `json:"mileage"`
	Data      valuation.ValuationData `json:"valuation_data"`
	CreatedAt time.Time               `json:"created_at"`
}

// Backend is one durable store for valuation entries. Get returns the
// freshest entry whose stored mileage falls in [minMileage, maxMileage], or
// nil without error on a clean miss.
type Backend interface {
	Name() string
	Get(ctx context.Context, vin string, minMileage, maxMileage int) (*Entry, error)
	Put(ctx context.Context, e Entry) error
}

// putTimeout bounds a detached background write.
const putTimeout = 5 * time.Second

// Store is the valuation cache: a small in-process L1 in front of an ordered
// list of backends. Reads try each backend in order and treat any backend
// failure as a miss; writes are fire-and-forget and stop at the first backend
// that accepts the entry. The cache is purely an optimization, so nothing
// here is allowed to fail a resolution.
type Store struct {
	backends []Backend
	l1       *cache.Cache[Entry]

	ttl       time.Duration
	tolerance float64

	now func() time.Time
	wg  sync.WaitGroup
}

// New builds a store over the given backends, tried in order.
func New(backends ...Backend) (*Store, error) {
	l1, err := cache.New[Entry](func(Entry) int64 {
		return 256 // rough per-entry footprint
	}, "VIN Valuation Cache")
	if err != nil {
		return nil, err
	}

	return &Store{
		backends:  backends,
		l1:        l1,
		ttl:       config.ValuationCacheTTL,
		tolerance: config.ValuationMileageTolerance,
		now:       time.Now,
	}, nil
}

// Get returns a cached valuation for the VIN if one exists with a stored
// mileage within the tolerance band and younger than the TTL. Backend errors
// are logged and downgraded to a miss.
func (s *Store) Get(ctx context.Context, vin string, mileage int) (valuation.ValuationData, bool) {
	lo, hi := s.band(mileage)

	if e, found := s.l1.Get(vin); found && s.usable(e, lo, hi) {
		return e.Data, true
	}

	for _, b := range s.backends {
		e, err := b.Get(ctx, vin, lo, hi)
		if err != nil {
			log.Printf("[vin-cache] %s read failed for %s: %v", b.Name(), vin, err)
			continue
		}
		if e == nil {
			continue
		}
		if s.expired(*e) {
			log.Printf("[vin-cache] %s entry for %s expired, treating as miss", b.Name(), vin)
			continue
		}

		s.l1.SetWithTTL(vin, *e, 256, s.ttl)
		return e.Data, true
	}

	return valuation.ValuationData{}, false
}

// PutAsync stores a valuation without blocking the caller. The write runs on
// a fresh background context so an abandoned request doesn't cancel it; it
// tries each backend in order and gives up silently if all of them fail.
func (s *Store) PutAsync(vin string, mileage int, data valuation.ValuationData) {
	e := Entry{VIN: vin, Mileage: mileage, Data: data, CreatedAt: s.now()}
	s.l1.SetWithTTL(vin, e, 256, s.ttl)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
		defer cancel()

		for _, b := range s.backends {
			if err := b.Put(ctx, e); err != nil {
				log.Printf("[vin-cache] %s write failed for %s: %v", b.Name(), vin, err)
				continue
			}
			return
		}
		log.Printf("[vin-cache] All backends failed, dropping entry for %s", vin)
	}()
}

// Wait blocks until in-flight background writes finish. For shutdown and
// tests.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Stats exposes L1 statistics for admin monitoring.
func (s *Store) Stats() map[string]interface{} {
	return s.l1.Stats()
}

func (s *Store) band(mileage int) (int, int) {
	lo := int(math.Ceil(float64(mileage) * (1 - s.tolerance)))
	hi := int(math.Floor(float64(mileage) * (1 + s.tolerance)))
	return lo, hi
}

func (s *Store) usable(e Entry, lo, hi int) bool {
	return e.Mileage >= lo && e.Mileage <= hi && !s.expired(e)
}

func (s *Store) expired(e Entry) bool {
	return s.now().Sub(e.CreatedAt) > s.ttl
}
