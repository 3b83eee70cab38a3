package valuation

import (
	"errors"
	"fmt"
)

// Provider failure classes. The external client classifies transport and
// envelope errors into these; the resolver decides what each one means for
// the caller. Nothing below the resolver surfaces errors past it.
var (
	ErrRateLimited     = errors.New("pricing provider rate limited")
	ErrTimeout         = errors.New("pricing provider timed out")
	ErrUnauthenticated = errors.New("pricing provider rejected credentials")
)

// ProviderError is any other failure reported by the pricing provider.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("pricing provider error: %s", e.Message)
}
