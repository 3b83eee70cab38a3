package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// ValuationCacheTTL is how long a cached valuation stays usable.
	// Expiry is computed at read time; entries are never physically deleted.
	ValuationCacheTTL = 30 * 24 * time.Hour

	// ValuationMileageTolerance is the fraction of the queried mileage within
	// which a cached entry is considered a match (±5%).
	ValuationMileageTolerance = 0.05

	// ValuationFetchTimeout bounds a single request to the pricing provider.
	ValuationFetchTimeout = 15 * time.Second

	// ValuationFetchRetries is the number of extra fetch attempts after a
	// rate-limit or timeout from the provider.
	ValuationFetchRetries = 2

	// ValuationRetryBackoff is the base delay before the first retry; it
	// doubles on each subsequent attempt.
	ValuationRetryBackoff = 500 * time.Millisecond
)

const (
	ServerRateLimitMax = 120
	ServerRateLimitExp = 1 * time.Minute
)

var (
	// DatabaseURL points at the SQLite database holding the valuation cache
	// and reservation tables.
	DatabaseURL = getenv("DATABASE_URL", "file:autostrada.db")

	RedisAddress  = getenv("REDIS_ADDRESS", "localhost:6379")
	RedisPassword = os.Getenv("REDIS_PASSWORD")

	// Pricing provider credentials. The checksum sent with each request is
	// derived from the API ID, the shared secret, and the VIN.
	ValuationAPIURL    = getenv("VALUATION_API_URL", "https://bp.autoiso.pl/api/v3/getVinValuation")
	ValuationAPIID     = os.Getenv("VALUATION_API_ID")
	ValuationAPISecret = os.Getenv("VALUATION_API_SECRET")

	// ValuationAPIRate is the client-side request rate cap (requests/second)
	// against the paid provider.
	ValuationAPIRate = getenvFloat("VALUATION_API_RATE", 5)

	ServerPort = getenv("PORT", "8080")
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
