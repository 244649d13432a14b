package travel

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrAuth is returned when the flight provider rejects the credential exchange.
	ErrAuth = errors.New("authentication failed with flight provider")

	// ErrLookup is returned when a place name cannot be resolved to an IATA code.
	ErrLookup = errors.New("failed to find location code")

	// ErrValidation is returned when a flight search lacks an origin or destination.
	ErrValidation = errors.New("origin and destination are required (either as IATA codes or city names)")

	// ErrNoResults is returned when the hotel provider finds nothing.
	ErrNoResults = errors.New("no hotels found")
)

// FlightFetchError is the single error a flight search returns.
// Detail is the provider's first structured error detail when one was sent,
// otherwise the message of the underlying error.
type FlightFetchError struct {
	Detail string
	Err    error
}

func (e *FlightFetchError) Error() string { return "failed to fetch flights: " + e.Detail }

func (e *FlightFetchError) Unwrap() error { return e.Err }

func newFlightFetchError(err error) *FlightFetchError {
	detail := err.Error()
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Detail != "" {
		detail = pe.Detail
	}
	return &FlightFetchError{Detail: detail, Err: err}
}

// HotelFetchError is the single error a hotel search returns.
type HotelFetchError struct {
	Err error
}

func (e *HotelFetchError) Error() string { return "failed to fetch hotels: " + e.Err.Error() }

func (e *HotelFetchError) Unwrap() error { return e.Err }

// ProviderError is a non-2xx answer from an upstream API.
type ProviderError struct {
	StatusCode int
	Body       []byte
	Detail     string
}

func (e *ProviderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}

// newProviderError extracts the first structured detail from bodies shaped
// like {"errors":[{"detail":...}]} or {"message":...}.
func newProviderError(status int, body []byte) *ProviderError {
	var payload struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
		Message string `json:"message"`
	}

	pe := &ProviderError{StatusCode: status, Body: body}
	if err := json.Unmarshal(body, &payload); err != nil {
		return pe
	}

	switch {
	case len(payload.Errors) > 0 && payload.Errors[0].Detail != "":
		pe.Detail = payload.Errors[0].Detail
	case len(payload.Errors) > 0:
		pe.Detail = payload.Errors[0].Title
	default:
		pe.Detail = payload.Message
	}
	return pe
}
