package travel

import "time"

// Credential is a bearer token for the flight provider and the instant it
// stops being served from cache.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// validAt reports whether the credential can be used at now.
func (c Credential) validAt(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}

// FlightSearchRequest describes a one-way flight offer search.
// Origin and destination are given either as IATA codes or as city names;
// a code takes precedence over a city name when both are set.
type FlightSearchRequest struct {
	OriginCode      string
	OriginCity      string
	DestinationCode string
	DestinationCity string
	DepartureDate   string // YYYY-MM-DD
	Adults          int    // defaults to 1
	NonStop         *bool  // defaults to true
	Currency        string // defaults to THB
	Max             int    // defaults to 10
}

// SimplifiedFlight is one flight offer reduced to its first segment.
type SimplifiedFlight struct {
	Airline          string `json:"airline"`
	AirlineLogo      string `json:"airline_logo"`
	FlightNumber     string `json:"flight_number"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	DepartureTime    string `json:"departure_time"`
	ArrivalTime      string `json:"arrival_time"`
	Duration         string `json:"duration"`
	CostTHB          int64  `json:"cost_thb"`
	AvailableSeats   *int   `json:"available_seats,omitempty"`
}

// HotelSearchRequest describes a hotel availability search.
type HotelSearchRequest struct {
	Destination  string
	CheckInDate  string // YYYY-MM-DD
	CheckOutDate string // YYYY-MM-DD
	Adults       int    // defaults to 1
	Currency     string // defaults to THB
	SortOrder    string
	PageSize     int // defaults to 5
}

// SimplifiedHotel is one hotel result with its stay cost precomputed.
type SimplifiedHotel struct {
	HotelName     string   `json:"hotel_name"`
	Address       string   `json:"address"`
	StarRating    float64  `json:"star_rating"`
	TotalCostTHB  int64    `json:"total_cost_thb"`
	CheckIn       string   `json:"check_in"`
	CheckOut      string   `json:"check_out"`
	Amenities     []string `json:"amenities"`
	HotelPhotos   []string `json:"hotel_photos"`
	PricePerNight int64    `json:"price_per_night"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   int      `json:"review_count"`
}

// DestinationEntry is one row of a hotel destination directory.
type DestinationEntry struct {
	Name string `json:"name"`
	ID   string `json:"dest_id"`
}

// ---- flight provider payloads ----

type locationCandidate struct {
	SubType  string `json:"subType"`
	IATACode string `json:"iataCode"`
	Name     string `json:"name"`
}

type locationsResponse struct {
	Data []locationCandidate `json:"data"`
}

type flightEndpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

type flightSegment struct {
	CarrierCode string         `json:"carrierCode"`
	Number      string         `json:"number"`
	Departure   flightEndpoint `json:"departure"`
	Arrival     flightEndpoint `json:"arrival"`
	Duration    string         `json:"duration"`
}

type flightItinerary struct {
	Duration string          `json:"duration"`
	Segments []flightSegment `json:"segments"`
}

type flightOffer struct {
	ID          string            `json:"id"`
	Itineraries []flightItinerary `json:"itineraries"`
	Price       struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	NumberOfBookableSeats *int `json:"numberOfBookableSeats"`
}

type flightOffersResponse struct {
	Data []flightOffer `json:"data"`
}

// ---- hotel provider payloads ----

type hotelProperty struct {
	Name                 string   `json:"name"`
	Address              string   `json:"address"`
	StarRating           float64  `json:"starRating"`
	ReviewScore          float64  `json:"reviewScore"`
	ReviewCount          int      `json:"reviewCount"`
	PhotoURLs            []string `json:"photoUrls"`
	CheckinCheckoutTimes struct {
		Checkin  string `json:"checkin"`
		Checkout string `json:"checkout"`
	} `json:"checkinCheckoutTimes"`
	PriceBreakdown struct {
		GrossPrice struct {
			Value    float64 `json:"value"`
			Currency string  `json:"currency"`
		} `json:"grossPrice"`
	} `json:"priceBreakdown"`
}

type hotelSearchResponse struct {
	Data struct {
		Hotels []struct {
			HotelID  int           `json:"hotel_id"`
			Property hotelProperty `json:"property"`
		} `json:"hotels"`
	} `json:"data"`
}
