package travel

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
)

const (
	flightOffersPath = "/v2/shopping/flight-offers"

	defaultAdults     = 1
	defaultCurrency   = "THB"
	defaultMaxOffers  = 10
	airlineLogoFormat = "https://content.airhex.com/content/logos/airlines_%s_200_200_s.png"
)

// locationResolver is the interface satisfied by LocationResolver.
type locationResolver interface {
	Resolve(ctx context.Context, place string) (string, error)
}

// FlightSearcher runs a flight offer search end to end: token, location
// resolution, offer search and normalization.
type FlightSearcher struct {
	baseURL   string
	tokens    tokenSource
	locations locationResolver
	client    *http.Client
	log       *slog.Logger
}

// NewFlightSearcher constructs a FlightSearcher whose city names are
// resolved through the same provider.
func NewFlightSearcher(baseURL string, tokens *TokenProvider, log *slog.Logger) *FlightSearcher {
	return NewFlightSearcherWithDeps(baseURL, tokens, NewLocationResolver(baseURL, tokens, log), log)
}

// NewFlightSearcherWithDeps constructs a FlightSearcher with injectable collaborators (used in tests).
func NewFlightSearcherWithDeps(baseURL string, tokens tokenSource, locations locationResolver, log *slog.Logger) *FlightSearcher {
	return &FlightSearcher{
		baseURL:   baseURL,
		tokens:    tokens,
		locations: locations,
		client:    newHTTPClient(),
		log:       loggerOrDefault(log),
	}
}

// Search returns one SimplifiedFlight per offer. Only the first segment of
// the first itinerary is kept; connecting legs are dropped. Every failure
// is returned as a *FlightFetchError and no partial result is returned.
func (s *FlightSearcher) Search(ctx context.Context, req FlightSearchRequest) ([]SimplifiedFlight, error) {
	flights, err := s.search(ctx, req)
	if err != nil {
		s.log.Error("flight fetch failed", "err", err, "body", providerBody(err))
		return nil, newFlightFetchError(err)
	}
	return flights, nil
}

func (s *FlightSearcher) search(ctx context.Context, req FlightSearchRequest) ([]SimplifiedFlight, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	origin := req.OriginCode
	if origin == "" && req.OriginCity != "" {
		if origin, err = s.locations.Resolve(ctx, req.OriginCity); err != nil {
			return nil, err
		}
	}

	dest := req.DestinationCode
	if dest == "" && req.DestinationCity != "" {
		if dest, err = s.locations.Resolve(ctx, req.DestinationCity); err != nil {
			return nil, err
		}
	}

	if origin == "" || dest == "" {
		return nil, ErrValidation
	}

	s.log.Info("searching flights", "origin", origin, "destination", dest, "date", req.DepartureDate)

	var raw flightOffersResponse
	endpoint := s.baseURL + flightOffersPath + "?" + offerQuery(origin, dest, req).Encode()
	if err := doGet(ctx, s.client, endpoint, bearer(token), &raw); err != nil {
		return nil, err
	}

	flights := make([]SimplifiedFlight, 0, len(raw.Data))
	for _, offer := range raw.Data {
		f, err := simplifyOffer(offer)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}

	s.log.Info("flights found", "count", len(flights))
	return flights, nil
}

func offerQuery(origin, dest string, req FlightSearchRequest) url.Values {
	adults := req.Adults
	if adults <= 0 {
		adults = defaultAdults
	}
	nonStop := true
	if req.NonStop != nil {
		nonStop = *req.NonStop
	}
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	limit := req.Max
	if limit <= 0 {
		limit = defaultMaxOffers
	}

	q := url.Values{}
	q.Set("originLocationCode", origin)
	q.Set("destinationLocationCode", dest)
	q.Set("departureDate", req.DepartureDate)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("nonStop", strconv.FormatBool(nonStop))
	q.Set("currencyCode", currency)
	q.Set("max", strconv.Itoa(limit))
	return q
}

func simplifyOffer(offer flightOffer) (SimplifiedFlight, error) {
	if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
		return SimplifiedFlight{}, fmt.Errorf("offer %s has no segments", offer.ID)
	}
	seg := offer.Itineraries[0].Segments[0]

	total, err := strconv.ParseFloat(offer.Price.Total, 64)
	if err != nil {
		return SimplifiedFlight{}, fmt.Errorf("parsing price of offer %s: %w", offer.ID, err)
	}

	return SimplifiedFlight{
		Airline:          seg.CarrierCode,
		AirlineLogo:      fmt.Sprintf(airlineLogoFormat, seg.CarrierCode),
		FlightNumber:     seg.CarrierCode + seg.Number,
		DepartureAirport: seg.Departure.IATACode,
		ArrivalAirport:   seg.Arrival.IATACode,
		DepartureTime:    seg.Departure.At,
		ArrivalTime:      seg.Arrival.At,
		Duration:         seg.Duration,
		CostTHB:          roundHalfUp(total),
		AvailableSeats:   offer.NumberOfBookableSeats,
	}, nil
}

// roundHalfUp rounds to the nearest integer, ties toward +Inf.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
