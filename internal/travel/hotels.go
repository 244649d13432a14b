package travel

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	hotelSearchPath = "/api/v1/hotels/searchHotels"

	dateLayout           = "2006-01-02"
	defaultPageSize      = 5
	defaultPricePerNight = 1500.0
	defaultStarRating    = 3.0
	maxAmenities         = 4
	maxPhotos            = 2
	highlyRatedThreshold = 8.0
)

var fallbackPhotos = []string{
	"https://images.unsplash.com/photo-1566073771259-6a8506099945",
	"https://images.unsplash.com/photo-1582719478250-c89cae4dc85b",
}

// HotelSearcher maps a destination to the hotel provider's id, runs the
// search and prices each stay.
type HotelSearcher struct {
	baseURL   string
	host      string
	key       string
	directory DestinationDirectory
	client    *http.Client
	log       *slog.Logger
}

// NewHotelSearcher constructs a HotelSearcher. host and key are sent as the
// x-rapidapi-host and x-rapidapi-key headers.
func NewHotelSearcher(baseURL, host, key string, directory DestinationDirectory, log *slog.Logger) *HotelSearcher {
	if directory == nil {
		directory = DefaultDestinations
	}
	return &HotelSearcher{
		baseURL:   baseURL,
		host:      host,
		key:       key,
		directory: directory,
		client:    newHTTPClient(),
		log:       loggerOrDefault(log),
	}
}

// Destinations lists the destinations the searcher knows by name.
func (s *HotelSearcher) Destinations(ctx context.Context) ([]DestinationEntry, error) {
	return s.directory.Destinations(ctx)
}

// Search returns up to req.PageSize priced hotels. Every failure, including
// an empty result, is returned as a *HotelFetchError.
func (s *HotelSearcher) Search(ctx context.Context, req HotelSearchRequest) ([]SimplifiedHotel, error) {
	hotels, err := s.search(ctx, req)
	if err != nil {
		s.log.Error("hotel fetch failed", "destination", req.Destination, "err", err, "body", providerBody(err))
		return nil, &HotelFetchError{Err: err}
	}
	return hotels, nil
}

func (s *HotelSearcher) search(ctx context.Context, req HotelSearchRequest) ([]SimplifiedHotel, error) {
	nights, err := nightsBetween(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	destID, err := s.destinationID(ctx, req.Destination)
	if err != nil {
		return nil, err
	}

	s.log.Info("searching hotels", "destination", req.Destination, "dest_id", destID)

	header := http.Header{}
	header.Set("x-rapidapi-host", s.host)
	header.Set("x-rapidapi-key", s.key)

	var raw hotelSearchResponse
	endpoint := s.baseURL + hotelSearchPath + "?" + hotelQuery(destID, req).Encode()
	if err := doGet(ctx, s.client, endpoint, header, &raw); err != nil {
		return nil, err
	}

	found := raw.Data.Hotels
	s.log.Info("hotels found", "count", len(found))
	if len(found) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoResults, req.Destination)
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if len(found) > pageSize {
		found = found[:pageSize]
	}

	hotels := make([]SimplifiedHotel, 0, len(found))
	for _, h := range found {
		hotels = append(hotels, simplifyHotel(h.Property, req, nights))
	}
	return hotels, nil
}

// destinationID looks name up in the directory, falling back to
// DefaultDestinationID for unknown names.
func (s *HotelSearcher) destinationID(ctx context.Context, name string) (string, error) {
	id, ok, err := s.directory.DestinationID(ctx, name)
	if err != nil {
		return "", fmt.Errorf("looking up destination %s: %w", name, err)
	}
	if !ok {
		s.log.Info("unknown destination, using default", "destination", name, "dest_id", DefaultDestinationID)
		return DefaultDestinationID, nil
	}
	return id, nil
}

func hotelQuery(destID string, req HotelSearchRequest) url.Values {
	adults := req.Adults
	if adults <= 0 {
		adults = defaultAdults
	}
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	q := url.Values{}
	q.Set("dest_id", destID)
	q.Set("search_type", "CITY")
	q.Set("arrival_date", req.CheckInDate)
	q.Set("departure_date", req.CheckOutDate)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("children_age", "0,17")
	q.Set("room_qty", "1")
	q.Set("page_number", "1")
	q.Set("units", "metric")
	q.Set("temperature_unit", "c")
	q.Set("languagecode", "en-us")
	q.Set("currency_code", currency)
	return q
}

// nightsBetween is the ceiling of the whole days from checkIn to checkOut.
func nightsBetween(checkIn, checkOut string) (int, error) {
	in, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return 0, fmt.Errorf("invalid check-in date %q: %w", checkIn, err)
	}
	out, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return 0, fmt.Errorf("invalid check-out date %q: %w", checkOut, err)
	}
	return int(math.Ceil(out.Sub(in).Hours() / 24)), nil
}

func simplifyHotel(p hotelProperty, req HotelSearchRequest, nights int) SimplifiedHotel {
	pricePerNight := p.PriceBreakdown.GrossPrice.Value
	if pricePerNight == 0 {
		pricePerNight = defaultPricePerNight
	}

	name := p.Name
	if name == "" {
		name = "Hotel"
	}
	address := strings.TrimSpace(p.Address)
	if address == "" {
		address = strings.TrimSpace(req.Destination)
	}
	stars := p.StarRating
	if stars == 0 {
		stars = defaultStarRating
	}

	var rating *float64
	if p.ReviewScore != 0 {
		score := p.ReviewScore
		rating = &score
	}

	return SimplifiedHotel{
		HotelName:     name,
		Address:       address,
		StarRating:    stars,
		TotalCostTHB:  roundHalfUp(pricePerNight * float64(nights)),
		CheckIn:       req.CheckInDate,
		CheckOut:      req.CheckOutDate,
		Amenities:     amenities(p),
		HotelPhotos:   photos(p.PhotoURLs),
		PricePerNight: roundHalfUp(pricePerNight),
		Rating:        rating,
		ReviewCount:   p.ReviewCount,
	}
}

func amenities(p hotelProperty) []string {
	out := make([]string, 0, maxAmenities)
	if p.CheckinCheckoutTimes.Checkout != "" {
		out = append(out, "Flexible Check-out")
	}
	if p.ReviewScore > highlyRatedThreshold {
		out = append(out, "Highly Rated")
	}
	out = append(out, "Free Cancellation", "Free Wi-Fi")
	if len(out) > maxAmenities {
		out = out[:maxAmenities]
	}
	return out
}

func photos(urls []string) []string {
	if len(urls) == 0 {
		return append([]string(nil), fallbackPhotos...)
	}
	if len(urls) > maxPhotos {
		urls = urls[:maxPhotos]
	}
	return append([]string(nil), urls...)
}
