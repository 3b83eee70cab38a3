package cardata

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/auto-strada/site/config"
	"github.com/auto-strada/site/valuation"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Client calls the external VIN pricing provider. The provider is paid and
// rate limited, so requests go through a client-side limiter and a circuit
// breaker; classification of failures is the client's job, retrying is not.
type Client struct {
	apiURL    string
	apiID     string
	apiSecret string

	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// request is the provider's expected body. Context and UserID are only sent
// for seller valuations; the provider creates a reservation in that case.
type request struct {
	VIN      string `json:"vin"`
	Mileage  int    `json:"mileage"`
	Gearbox  string `json:"gearbox"`
	Checksum string `json:"checksum"`
	Context  string `json:"context,omitempty"`
	UserID   int    `json:"userId,omitempty"`
}

// envelope is the only part of the provider response with a fixed shape.
// Data is deliberately left raw: its layout changes between provider
// releases and the normalizer deals with it.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	ErrorCode string          `json:"errorCode"`
}

// dataFlags are the envelope-level flags some provider versions put inside
// the data payload instead of beside it.
type dataFlags struct {
	IsExisting    bool   `json:"isExisting"`
	ReservationID string `json:"reservationId"`
}

// New builds a client from the service configuration.
func New() *Client {
	return NewWithCredentials(config.ValuationAPIURL, config.ValuationAPIID, config.ValuationAPISecret)
}

// NewWithCredentials builds a client against a specific endpoint, mainly for
// tests pointed at an httptest server.
func NewWithCredentials(apiURL, apiID, apiSecret string) *Client {
	return &Client{
		apiURL:     apiURL,
		apiID:      apiID,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: config.ValuationFetchTimeout},
		limiter:    rate.NewLimiter(rate.Limit(config.ValuationAPIRate), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "cardata",
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("[cardata] Circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// Fetch performs one valuation request. The returned error is one of the
// valuation failure classes (ErrRateLimited, ErrTimeout, ErrUnauthenticated,
// *ProviderError); the payload is returned untyped for the normalizer.
func (c *Client) Fetch(ctx context.Context, q valuation.Query) (valuation.FetchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return valuation.FetchResult{}, fmt.Errorf("%w: %v", valuation.ErrTimeout, err)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doFetch(ctx, q)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return valuation.FetchResult{}, &valuation.ProviderError{Message: "valuation service temporarily unavailable"}
		}
		return valuation.FetchResult{}, err
	}
	return out.(valuation.FetchResult), nil
}

func (c *Client) doFetch(ctx context.Context, q valuation.Query) (valuation.FetchResult, error) {
	body := request{
		VIN:      q.VIN,
		Mileage:  q.Mileage,
		Gearbox:  string(q.Transmission),
		Checksum: c.checksum(q.VIN),
	}
	if !q.Anonymous() {
		body.Context = "seller"
		body.UserID = q.UserID
	}

	data, err := json.Marshal(body)
	if err != nil {
		return valuation.FetchResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(data))
	if err != nil {
		return valuation.FetchResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return valuation.FetchResult{}, fmt.Errorf("%w: %v", valuation.ErrTimeout, err)
		}
		return valuation.FetchResult{}, fmt.Errorf("failed to call pricing provider: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return valuation.FetchResult{}, valuation.ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return valuation.FetchResult{}, valuation.ErrUnauthenticated
	default:
		raw, _ := io.ReadAll(resp.Body)
		return valuation.FetchResult{}, &valuation.ProviderError{
			Message: fmt.Sprintf("status %d: %s", resp.StatusCode, string(raw)),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return valuation.FetchResult{}, fmt.Errorf("failed to decode provider response: %w", err)
	}

	if !env.Success {
		return valuation.FetchResult{}, classify(env)
	}

	// Some provider versions put the reservation flags inside data rather
	// than beside it; probe for both and ignore what isn't there.
	var flags dataFlags
	_ = json.Unmarshal(env.Data, &flags)

	return valuation.FetchResult{
		Payload:       env.Data,
		IsExisting:    flags.IsExisting,
		ReservationID: flags.ReservationID,
	}, nil
}

// classify maps the provider's error codes onto the valuation failure
// classes the resolver keys off.
func classify(env envelope) error {
	switch env.ErrorCode {
	case "RATE_LIMIT", "RATE_LIMITED":
		return valuation.ErrRateLimited
	case "TIMEOUT":
		return valuation.ErrTimeout
	case "UNAUTHENTICATED", "AUTH_REQUIRED":
		return valuation.ErrUnauthenticated
	}
	msg := env.Error
	if msg == "" {
		msg = "provider reported failure without a reason"
	}
	return &valuation.ProviderError{Message: msg}
}

// checksum is the provider's request credential: the hex MD5 of the api id,
// the shared secret and the VIN, concatenated in that order.
func (c *Client) checksum(vin string) string {
	sum := md5.Sum([]byte(c.apiID + c.apiSecret + vin))
	return hex.EncodeToString(sum[:])
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var terr interface{ Timeout() bool }
	if errors.As(err, &terr) && terr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
