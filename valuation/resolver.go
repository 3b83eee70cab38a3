package valuation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/auto-strada/site/config"
)

// FetchResult is what the external pricing client hands back: the raw payload
// plus the envelope flags the provider reports outside of it.
type FetchResult struct {
	Payload       []byte
	IsExisting    bool
	ReservationID string
}

// Fetcher invokes the external pricing provider. Implementations perform no
// retries; retry policy belongs to the resolver.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (FetchResult, error)
}

// Cache is the valuation cache consumed by the resolver. Get returns false on
// miss, expiry, and backend failure alike; PutAsync must detach from the
// caller and never report failure.
type Cache interface {
	Get(ctx context.Context, vin string, mileage int) (ValuationData, bool)
	PutAsync(vin string, mileage int, data ValuationData)
}

// ReservationSink persists the reservation side effect of a seller-context
// valuation and returns the reservation id.
type ReservationSink interface {
	CreateReservation(ctx context.Context, vin string, userID int, data ValuationData) (string, error)
}

// Resolver turns a Query into a Result: cache lookup, external fetch,
// normalization, reserve pricing, fire-and-forget cache write. It holds no
// per-call state and is safe for concurrent use.
type Resolver struct {
	fetcher      Fetcher
	cache        Cache
	reservations ReservationSink

	retries int
	backoff time.Duration
	sleep   func(time.Duration)
}

// NewResolver wires a resolver. reservations may be nil when no reservation
// persistence is wanted (e.g. the anonymous-only surface).
func NewResolver(fetcher Fetcher, cache Cache, reservations ReservationSink) *Resolver {
	return &Resolver{
		fetcher:      fetcher,
		cache:        cache,
		reservations: reservations,
		retries:      config.ValuationFetchRetries,
		backoff:      config.ValuationRetryBackoff,
		sleep:        time.Sleep,
	}
}

// Resolve produces a valuation for the query. It never returns a Go error:
// failures come back as Result{Success: false} with Data.Error set, and
// provider "no data" comes back as a successful Result with Data.NoData set.
func (r *Resolver) Resolve(ctx context.Context, q Query) Result {
	if data, ok := r.cache.Get(ctx, q.VIN, q.Mileage); ok {
		log.Printf("[valuation] Cache hit for %s", q.VIN)
		return Result{Success: true, Data: data}
	}

	res, err := r.fetchWithRetry(ctx, q)
	if err != nil {
		return r.fetchFailure(q, err)
	}

	// The vehicle is already listed; nothing to price.
	if res.IsExisting {
		return Result{Success: true, Data: ValuationData{IsExisting: true}}
	}

	data := Normalize(res.Payload)
	if !data.HasPrice() {
		log.Printf("[valuation] Provider had no pricing data for %s", q.VIN)
		data.NoData = true
		return Result{Success: true, Data: data}
	}

	if !q.Anonymous() {
		r.recordReservation(ctx, q, res, &data)
	}

	// The write is a pure optimization; it runs detached and its outcome
	// never reaches the caller.
	r.cache.PutAsync(q.VIN, q.Mileage, data)

	return Result{Success: true, Data: data}
}

// fetchWithRetry calls the provider with bounded exponential backoff. Only
// rate-limit and timeout failures are retried; everything else is final on
// the first attempt.
func (r *Resolver) fetchWithRetry(ctx context.Context, q Query) (FetchResult, error) {
	var res FetchResult
	var err error

	delay := r.backoff
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			log.Printf("[valuation] Retrying fetch for %s (attempt %d): %v", q.VIN, attempt+1, err)
			r.sleep(delay)
			delay *= 2
		}

		res, err = r.fetcher.Fetch(ctx, q)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrTimeout) {
			return FetchResult{}, err
		}
		if ctx.Err() != nil {
			return FetchResult{}, err
		}
	}
	return FetchResult{}, err
}

func (r *Resolver) fetchFailure(q Query, err error) Result {
	log.Printf("[valuation] Fetch failed for %s: %v", q.VIN, err)

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return failure("authentication required")
	case errors.Is(err, ErrTimeout):
		return failure("the valuation service timed out, please try again")
	case errors.Is(err, ErrRateLimited):
		return failure("the valuation service is busy, please try again")
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		return failure(perr.Message)
	}
	return failure(err.Error())
}

// recordReservation attaches the provider's reservation record to the result
// and persists it through the sink. Persistence failure is logged, never
// surfaced; the seller still gets their quote.
func (r *Resolver) recordReservation(ctx context.Context, q Query, res FetchResult, data *ValuationData) {
	if res.ReservationID != "" {
		data.ReservationID = res.ReservationID
	}
	if r.reservations == nil {
		return
	}

	id, err := r.reservations.CreateReservation(ctx, q.VIN, q.UserID, *data)
	if err != nil {
		log.Printf("[valuation] Failed to persist reservation for %s: %v", q.VIN, err)
		return
	}
	if data.ReservationID == "" {
		data.ReservationID = id
	}
}
