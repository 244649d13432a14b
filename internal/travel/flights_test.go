package travel_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/travel-gateway/internal/travel"
)

type mockResolver struct {
	resolveFn func(ctx context.Context, place string) (string, error)
	calls     []string
}

func (m *mockResolver) Resolve(ctx context.Context, place string) (string, error) {
	m.calls = append(m.calls, place)
	return m.resolveFn(ctx, place)
}

func unusedResolver(t *testing.T) *mockResolver {
	t.Helper()
	return &mockResolver{resolveFn: func(_ context.Context, place string) (string, error) {
		t.Fatalf("resolver should not be called, got %q", place)
		return "", nil
	}}
}

func segment(carrier, number, from, to string) map[string]any {
	return map[string]any{
		"carrierCode": carrier,
		"number":      number,
		"departure":   map[string]any{"iataCode": from, "at": "2026-02-15T07:00:00"},
		"arrival":     map[string]any{"iataCode": to, "at": "2026-02-15T08:10:00"},
		"duration":    "PT1H10M",
	}
}

func offer(id, total string, segments ...map[string]any) map[string]any {
	return map[string]any{
		"id":                    id,
		"itineraries":           []map[string]any{{"duration": "PT1H10M", "segments": segments}},
		"price":                 map[string]any{"total": total, "currency": "THB"},
		"numberOfBookableSeats": 7,
	}
}

// offersServer serves the given offers and records the query it was called with.
func offersServer(t *testing.T, query *url.Values, offers ...map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/shopping/flight-offers" || r.Header.Get("Authorization") != "Bearer test-token" {
			http.NotFound(w, r)
			return
		}
		if query != nil {
			*query = r.URL.Query()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": offers})
	}))
}

func TestFlightSearch_WithCodes(t *testing.T) {
	var query url.Values
	srv := offersServer(t, &query, offer("1", "1234.4", segment("FD", "3431", "BKK", "CNX")))
	defer srv.Close()

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), unusedResolver(t), discardLogger())
	flights, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCode:      "BKK",
		DestinationCode: "CNX",
		DepartureDate:   "2026-02-15",
	})
	require.NoError(t, err)
	require.Len(t, flights, 1)

	f := flights[0]
	assert.Equal(t, int64(1234), f.CostTHB)
	assert.Equal(t, "FD", f.Airline)
	assert.Equal(t, "FD3431", f.FlightNumber)
	assert.Equal(t, "https://content.airhex.com/content/logos/airlines_FD_200_200_s.png", f.AirlineLogo)
	assert.Equal(t, "BKK", f.DepartureAirport)
	assert.Equal(t, "CNX", f.ArrivalAirport)
	assert.Equal(t, "2026-02-15T07:00:00", f.DepartureTime)
	assert.Equal(t, "PT1H10M", f.Duration)
	require.NotNil(t, f.AvailableSeats)
	assert.Equal(t, 7, *f.AvailableSeats)

	assert.Equal(t, "BKK", query.Get("originLocationCode"))
	assert.Equal(t, "CNX", query.Get("destinationLocationCode"))
	assert.Equal(t, "2026-02-15", query.Get("departureDate"))
	assert.Equal(t, "1", query.Get("adults"))
	assert.Equal(t, "true", query.Get("nonStop"))
	assert.Equal(t, "THB", query.Get("currencyCode"))
	assert.Equal(t, "10", query.Get("max"))
}

func TestFlightSearch_ExplicitParameters(t *testing.T) {
	var query url.Values
	srv := offersServer(t, &query)
	defer srv.Close()

	nonStop := false
	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), unusedResolver(t), discardLogger())
	flights, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCode:      "CNX",
		DestinationCode: "DMK",
		DepartureDate:   "2026-03-01",
		Adults:          3,
		NonStop:         &nonStop,
		Currency:        "USD",
		Max:             4,
	})
	require.NoError(t, err)
	assert.Empty(t, flights)

	assert.Equal(t, "3", query.Get("adults"))
	assert.Equal(t, "false", query.Get("nonStop"))
	assert.Equal(t, "USD", query.Get("currencyCode"))
	assert.Equal(t, "4", query.Get("max"))
}

func TestFlightSearch_RoundsHalfUp(t *testing.T) {
	srv := offersServer(t, nil,
		offer("1", "1234.5", segment("TG", "100", "BKK", "CNX")),
		offer("2", "999.49", segment("TG", "102", "BKK", "CNX")),
	)
	defer srv.Close()

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), unusedResolver(t), discardLogger())
	flights, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCode: "BKK", DestinationCode: "CNX", DepartureDate: "2026-02-15",
	})
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, int64(1235), flights[0].CostTHB)
	assert.Equal(t, int64(999), flights[1].CostTHB)
}

func TestFlightSearch_FlattensToFirstSegment(t *testing.T) {
	srv := offersServer(t, nil, offer("1", "3000.00",
		segment("PG", "215", "CNX", "BKK"),
		segment("PG", "271", "BKK", "HKT"),
	))
	defer srv.Close()

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), unusedResolver(t), discardLogger())
	flights, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCode: "CNX", DestinationCode: "HKT", DepartureDate: "2026-02-15",
	})
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "PG215", flights[0].FlightNumber)
	assert.Equal(t, "BKK", flights[0].ArrivalAirport)
}

func TestFlightSearch_ResolvesCityNames(t *testing.T) {
	var query url.Values
	srv := offersServer(t, &query)
	defer srv.Close()

	resolver := &mockResolver{resolveFn: func(_ context.Context, place string) (string, error) {
		return map[string]string{"Bangkok": "DMK", "Chiang Mai": "CNX"}[place], nil
	}}

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), resolver, discardLogger())
	_, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCity:      "Bangkok",
		DestinationCity: "Chiang Mai",
		DepartureDate:   "2026-02-15",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bangkok", "Chiang Mai"}, resolver.calls)
	assert.Equal(t, "DMK", query.Get("originLocationCode"))
	assert.Equal(t, "CNX", query.Get("destinationLocationCode"))
}

func TestFlightSearch_CodeWinsOverCity(t *testing.T) {
	srv := offersServer(t, nil)
	defer srv.Close()

	resolver := &mockResolver{resolveFn: func(_ context.Context, _ string) (string, error) { return "CNX", nil }}

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), resolver, discardLogger())
	_, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCode:      "BKK",
		OriginCity:      "Phuket",
		DestinationCity: "Chiang Mai",
		DepartureDate:   "2026-02-15",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Chiang Mai"}, resolver.calls)
}

func TestFlightSearch_MissingOriginAndDestination(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), unusedResolver(t), discardLogger())

	for _, req := range []travel.FlightSearchRequest{
		{DepartureDate: "2026-02-15"},
		{OriginCode: "BKK", DepartureDate: "2026-02-15"},
		{DestinationCode: "CNX", DepartureDate: "2026-02-15"},
	} {
		_, err := s.Search(context.Background(), req)
		require.ErrorIs(t, err, travel.ErrValidation)

		var fe *travel.FlightFetchError
		require.ErrorAs(t, err, &fe)
		assert.Contains(t, fe.Error(), "failed to fetch flights: origin and destination are required")
	}
	assert.False(t, called, "no search without both codes")
}

func TestFlightSearch_LookupFailure(t *testing.T) {
	srv := offersServer(t, nil)
	defer srv.Close()

	resolver := &mockResolver{resolveFn: func(_ context.Context, place string) (string, error) {
		return "", fmt.Errorf("%w for %s", travel.ErrLookup, place)
	}}

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), resolver, discardLogger())
	_, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCity: "Atlantis", DestinationCode: "CNX", DepartureDate: "2026-02-15",
	})
	require.ErrorIs(t, err, travel.ErrLookup)
	assert.Equal(t, "failed to fetch flights: failed to find location code for Atlantis", err.Error())
}

func TestFlightSearch_AuthFailure(t *testing.T) {
	srv := offersServer(t, nil)
	defer srv.Close()

	s := travel.NewFlightSearcherWithDeps(srv.URL, failingToken{}, unusedResolver(t), discardLogger())
	_, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCode: "BKK", DestinationCode: "CNX", DepartureDate: "2026-02-15",
	})
	require.ErrorIs(t, err, travel.ErrAuth)
}

func TestFlightSearch_ProviderErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{
				{"status": 400, "code": 425, "title": "INVALID DATE", "detail": "Date/Time is in the past"},
				{"status": 400, "code": 477, "title": "INVALID FORMAT", "detail": "second"},
			},
		})
	}))
	defer srv.Close()

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), unusedResolver(t), discardLogger())
	_, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCode: "BKK", DestinationCode: "CNX", DepartureDate: "2020-01-01",
	})
	require.Error(t, err)
	assert.Equal(t, "failed to fetch flights: Date/Time is in the past", err.Error())

	var pe *travel.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
}

func TestFlightSearch_ProviderErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), unusedResolver(t), discardLogger())
	_, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCode: "BKK", DestinationCode: "CNX", DepartureDate: "2026-02-15",
	})
	require.Error(t, err)
	assert.Equal(t, "failed to fetch flights: provider returned status 502", err.Error())
}

func TestFlightSearch_OfferWithoutSegments(t *testing.T) {
	srv := offersServer(t, nil,
		offer("1", "1000", segment("FD", "1", "BKK", "CNX")),
		map[string]any{"id": "2", "itineraries": []map[string]any{}, "price": map[string]any{"total": "1"}},
	)
	defer srv.Close()

	s := travel.NewFlightSearcherWithDeps(srv.URL, staticToken("test-token"), unusedResolver(t), discardLogger())
	flights, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCode: "BKK", DestinationCode: "CNX", DepartureDate: "2026-02-15",
	})
	require.Error(t, err)
	assert.Nil(t, flights, "no partial results")
	assert.Contains(t, err.Error(), "offer 2 has no segments")
}

func TestFlightSearch_EndToEndWithRealCollaborators(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", tokenEndpoint(t, &tokenCalls))
	mux.HandleFunc("/v1/reference-data/locations", func(w http.ResponseWriter, r *http.Request) {
		code := map[string]string{"Bangkok": "BKK", "Chiang Mai": "CNX"}[r.URL.Query().Get("keyword")]
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"subType": "AIRPORT", "iataCode": code}},
		})
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer live-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			offer("1", "1500.75", segment("WE", "8", q.Get("originLocationCode"), q.Get("destinationLocationCode"))),
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := travel.NewTokenProvider(srv.URL, "client-id", "client-secret", discardLogger())
	s := travel.NewFlightSearcher(srv.URL, tokens, discardLogger())

	flights, err := s.Search(context.Background(), travel.FlightSearchRequest{
		OriginCity: "Bangkok", DestinationCity: "Chiang Mai", DepartureDate: "2026-02-15",
	})
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "BKK", flights[0].DepartureAirport)
	assert.Equal(t, "CNX", flights[0].ArrivalAirport)
	assert.Equal(t, int64(1501), flights[0].CostTHB)
	assert.EqualValues(t, 1, atomic.LoadInt32(&tokenCalls), "pipeline and resolver share one cached token")
}
