package travel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const locationsPath = "/v1/reference-data/locations"

// tokenSource is the interface satisfied by TokenProvider.
type tokenSource interface {
	Token(ctx context.Context) (string, error)
}

// LocationResolver turns a free-text place name into an IATA code using the
// flight provider's reference-data lookup.
type LocationResolver struct {
	baseURL string
	tokens  tokenSource
	client  *http.Client
	log     *slog.Logger
}

// NewLocationResolver constructs a LocationResolver against baseURL.
func NewLocationResolver(baseURL string, tokens tokenSource, log *slog.Logger) *LocationResolver {
	return &LocationResolver{
		baseURL: baseURL,
		tokens:  tokens,
		client:  newHTTPClient(),
		log:     loggerOrDefault(log),
	}
}

// Resolve returns the uppercased IATA code for place. An AIRPORT candidate
// wins over the first candidate overall. Any failure is reported as ErrLookup.
func (r *LocationResolver) Resolve(ctx context.Context, place string) (string, error) {
	fail := func(cause error) (string, error) {
		r.log.Error("location lookup failed", "place", place, "err", cause, "body", providerBody(cause))
		return "", fmt.Errorf("%w for %s", ErrLookup, place)
	}

	token, err := r.tokens.Token(ctx)
	if err != nil {
		return fail(err)
	}

	q := url.Values{}
	q.Set("keyword", place)
	q.Set("subType", "CITY,AIRPORT")

	var raw locationsResponse
	if err := doGet(ctx, r.client, r.baseURL+locationsPath+"?"+q.Encode(), bearer(token), &raw); err != nil {
		return fail(err)
	}

	if len(raw.Data) == 0 {
		return fail(fmt.Errorf("no location found for %s", place))
	}

	chosen := pickLocation(raw.Data)
	if len(chosen.IATACode) != 3 {
		return fail(fmt.Errorf("invalid IATA code for %s: %q", place, chosen.IATACode))
	}

	code := strings.ToUpper(chosen.IATACode)
	r.log.Info("resolved location code", "place", place, "code", code, "sub_type", chosen.SubType)
	return code, nil
}

// pickLocation returns the first AIRPORT candidate, else the first candidate.
func pickLocation(candidates []locationCandidate) locationCandidate {
	for _, c := range candidates {
		if c.SubType == "AIRPORT" {
			return c
		}
	}
	return candidates[0]
}
