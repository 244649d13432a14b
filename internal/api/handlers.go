package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/neexbeast/travel-gateway/internal/cache"
	"github.com/neexbeast/travel-gateway/internal/travel"
)

// Version is reported by the index endpoint.
const Version = "1.0.0"

const (
	flightsExample = "/api/flights?origin=Bangkok&destination=Chiang Mai&date=2026-02-15"
	hotelsExample  = "/api/hotels?destination=Bangkok&checkIn=2026-02-15&checkOut=2026-02-17"

	defaultCurrency  = "THB"
	defaultSortOrder = "PRICE"
)

var (
	iataPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	flights FlightSearcher
	hotels  HotelSearcher
	cache   SearchCache
	log     *slog.Logger
}

// NewHandlers constructs Handlers. A nil cache disables response caching.
func NewHandlers(flights FlightSearcher, hotels HotelSearcher, cache SearchCache, log *slog.Logger) *Handlers {
	if cache == nil {
		cache = nopCache{}
	}
	return &Handlers{
		flights: flights,
		hotels:  hotels,
		cache:   cache,
		log:     log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type flightsResponse struct {
	Success bool                      `json:"success"`
	Count   int                       `json:"count"`
	Route   string                    `json:"route"`
	Date    string                    `json:"date"`
	Flights []travel.SimplifiedFlight `json:"flights"`
}

type hotelsResponse struct {
	Success     bool                     `json:"success"`
	Count       int                      `json:"count"`
	Destination string                   `json:"destination"`
	CheckIn     string                   `json:"checkIn"`
	CheckOut    string                   `json:"checkOut"`
	SortOrder   string                   `json:"sortOrder"`
	Data        []travel.SimplifiedHotel `json:"data"`
}

type destinationsResponse struct {
	Success bool                      `json:"success"`
	Count   int                       `json:"count"`
	Data    []travel.DestinationEntry `json:"data"`
}

// Index handles GET /.
func (h *Handlers) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "Travel gateway is running",
		"version": Version,
		"endpoints": map[string]string{
			"index":        "GET /",
			"health":       "GET /api/health",
			"flights":      "GET /api/flights",
			"hotels":       "GET /api/hotels",
			"destinations": "GET /api/hotels/destinations",
		},
	})
}

// SearchFlights handles GET /api/flights.
// origin and destination are IATA codes when they are exactly three
// letters, city names otherwise.
func (h *Handlers) SearchFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin, destination, date := q.Get("origin"), q.Get("destination"), q.Get("date")

	if origin == "" || destination == "" || date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "Missing required parameters",
			"required": []string{"origin", "destination", "date"},
			"example":  flightsExample,
		})
		return
	}
	if !datePattern.MatchString(date) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":    "Invalid date format",
			"expected": "YYYY-MM-DD",
			"example":  "2026-02-15",
		})
		return
	}

	req := travel.FlightSearchRequest{DepartureDate: date}
	if iataPattern.MatchString(origin) {
		req.OriginCode = strings.ToUpper(origin)
	} else {
		req.OriginCity = origin
	}
	if iataPattern.MatchString(destination) {
		req.DestinationCode = strings.ToUpper(destination)
	} else {
		req.DestinationCity = destination
	}

	var ok bool
	if req.Adults, ok = positiveInt(w, q, "adults", 1); !ok {
		return
	}
	if req.Max, ok = positiveInt(w, q, "max", 10); !ok {
		return
	}

	_, present := q["nonStop"]
	nonStop := !present || q.Get("nonStop") == "true"
	req.NonStop = &nonStop

	req.Currency = strings.ToUpper(q.Get("currency"))
	if req.Currency == "" {
		req.Currency = defaultCurrency
	}

	key := cache.FlightKey(req)
	var flights []travel.SimplifiedFlight
	if !h.cached(r.Context(), key, &flights) {
		var err error
		flights, err = h.flights.Search(r.Context(), req)
		if err != nil {
			h.log.Error("flight search failed", "origin", origin, "destination", destination, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Flight search failed",
				"message": err.Error(),
			})
			return
		}
		h.store(r.Context(), key, flights)
	}
	if flights == nil {
		flights = []travel.SimplifiedFlight{}
	}

	writeJSON(w, http.StatusOK, flightsResponse{
		Success: true,
		Count:   len(flights),
		Route:   origin + " → " + destination,
		Date:    req.DepartureDate,
		Flights: flights,
	})
}

// SearchHotels handles GET /api/hotels.
func (h *Handlers) SearchHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	destination := q.Get("destination")
	checkIn, checkOut := q.Get("checkIn"), q.Get("checkOut")

	if destination == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Missing required parameter: destination",
			"example": hotelsExample,
		})
		return
	}
	if checkIn == "" || checkOut == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Missing required parameters: checkIn and checkOut",
			"example": hotelsExample,
		})
		return
	}

	req := travel.HotelSearchRequest{
		Destination:  destination,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Currency:     q.Get("currency"),
		SortOrder:    q.Get("sortOrder"),
	}
	if req.Currency == "" {
		req.Currency = defaultCurrency
	}
	if req.SortOrder == "" {
		req.SortOrder = defaultSortOrder
	}

	var ok bool
	if req.Adults, ok = positiveInt(w, q, "adults", 1); !ok {
		return
	}
	if req.PageSize, ok = positiveInt(w, q, "pageSize", 5); !ok {
		return
	}

	key := cache.HotelKey(req)
	var hotels []travel.SimplifiedHotel
	if !h.cached(r.Context(), key, &hotels) {
		var err error
		hotels, err = h.hotels.Search(r.Context(), req)
		if err != nil {
			h.log.Error("hotel search failed", "destination", destination, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Hotel search failed",
				"message": err.Error(),
			})
			return
		}
		h.store(r.Context(), key, hotels)
	}
	if hotels == nil {
		hotels = []travel.SimplifiedHotel{}
	}

	writeJSON(w, http.StatusOK, hotelsResponse{
		Success:     true,
		Count:       len(hotels),
		Destination: destination,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		SortOrder:   req.SortOrder,
		Data:        hotels,
	})
}

// ListDestinations handles GET /api/hotels/destinations.
func (h *Handlers) ListDestinations(w http.ResponseWriter, r *http.Request) {
	entries, err := h.hotels.Destinations(r.Context())
	if err != nil {
		h.log.Error("listing destinations failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Destination lookup failed",
			"message": err.Error(),
		})
		return
	}
	if entries == nil {
		entries = []travel.DestinationEntry{}
	}
	writeJSON(w, http.StatusOK, destinationsResponse{Success: true, Count: len(entries), Data: entries})
}

// cached reports whether key was found in the cache and decoded into dst.
// Cache failures count as misses.
func (h *Handlers) cached(ctx context.Context, key string, dst any) bool {
	hit, err := h.cache.Get(ctx, key, dst)
	if err != nil {
		h.log.Warn("cache get failed", "key", key, "err", err)
		return false
	}
	if hit {
		h.log.Debug("cache hit", "key", key)
	}
	return hit
}

func (h *Handlers) store(ctx context.Context, key string, v any) {
	if err := h.cache.Set(ctx, key, v); err != nil {
		h.log.Warn("cache set failed", "key", key, "err", err)
	}
}

// positiveInt reads an optional positive integer query parameter. On a bad
// value it writes a 400 and returns false.
func positiveInt(w http.ResponseWriter, q map[string][]string, name string, fallback int) (int, bool) {
	vals := q[name]
	if len(vals) == 0 || vals[0] == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil || n < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":    "Invalid parameter: " + name,
			"expected": "positive integer",
		})
		return 0, false
	}
	return n, true
}

// Pinger is implemented by backing services checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandlerFunc returns an http.HandlerFunc that pings every configured
// backing service. It responds 200 when all succeed and 503 otherwise.
func HealthHandlerFunc(checks map[string]Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}

		for name, p := range checks {
			body[name] = "ok"
			if err := p.Ping(ctx); err != nil {
				log.Error("health check: ping failed", "service", name, "err", err)
				body[name] = "error"
				status = http.StatusServiceUnavailable
			}
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}

		writeJSON(w, status, body)
	}
}
