package externalmatch

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAmountSet is returned when none of an order's amount fields is set
	ErrNoAmountSet = errors.New("one of base_amount, quote_amount, exact_base_output, or exact_quote_output must be set")

	// ErrMultipleAmountsSet is returned when more than one amount field is set
	ErrMultipleAmountsSet = errors.New("only one of base_amount, quote_amount, exact_base_output, or exact_quote_output can be set")

	// ErrInvalidMint is returned when a mint is not a valid hex address
	ErrInvalidMint = errors.New("invalid mint address")

	// ErrInvalidAPISecret is returned when the API secret is not valid base64
	ErrInvalidAPISecret = errors.New("api secret must be base64 encoded")

	// ErrMissingCredentials is returned when the API key or secret is empty
	ErrMissingCredentials = errors.New("api key and api secret are required")
)

// APIError is returned when the relayer responds with a status other than
// 200 or 204. The response body is preserved verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relayer returned status %d: %s", e.StatusCode, e.Body)
}
