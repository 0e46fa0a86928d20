package dto

import (
	"fmt"
	"net/http"

	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/exception"
)

const (
	CabinClassEconomy = "economy"
	FilterBest        = "best"
	CurrencyEUR       = "EUR"
)

// Route is one ordered origin/destination city pair, identified by its
// position in the route list.
type Route struct {
	DepartureCity string `json:"departure_city"`
	ArrivalCity   string `json:"arrival_city"`
}

// AirportEntry is one row of the airport reference table.
type AirportEntry struct {
	SearchTerm string `json:"search_term"`
	IataCode   string `json:"iata_code"`
}

type Airport struct {
	Name        string `json:"name"`
	DisplayCode string `json:"display_code"`
}

// Itinerary is a provider offer parsed into a provider neutral shape.
type Itinerary struct {
	PriceAmount   float64 `json:"price_amount"`
	Origin        Airport `json:"origin"`
	Destination   Airport `json:"destination"`
	Departure     string  `json:"departure"`
	Arrival       string  `json:"arrival"`
	Carrier       string  `json:"carrier"`
	TotalDuration float64 `json:"total_duration"`
}

// FlightOffer is the persisted record of one itinerary. Field order is the
// artifact key order.
type FlightOffer struct {
	PriceEUR                  float64 `json:"price_eur"`
	OriginAirportName         string  `json:"origin_airport_name"`
	OriginAirportDisplayCode  string  `json:"origin_airport_display_code"`
	ArrivalAirportName        string  `json:"arrival_airport_name"`
	ArrivalAirportDisplayCode string  `json:"arrival_airport_display_code"`
	FlightDepartureTime       string  `json:"flight_departure_time"`
	FlightArrivalTime         string  `json:"flight_arrival_time"`
	Competitor                string  `json:"competitor"`
	FlightDuration            float64 `json:"flight_duration"`
	OriginCitySearchTerm      string  `json:"origin_city_search_term"`
	ArrivalCitySearchTerm     string  `json:"arrival_city_search_term"`
	OriginCityID              string  `json:"origin_city_id"`
	ArrivalCityID             string  `json:"arrival_city_id"`
	CrawlingDate              string  `json:"crawling_date"`
}

// RouteRecord is the shape of both no-data and failed route records.
type RouteRecord struct {
	DepartureCity string `json:"departure_city"`
	ArrivalCity   string `json:"arrival_city"`
	OriginCityID  string `json:"origin_city_id"`
	ArrivalCityID string `json:"arrival_city_id"`
	CrawlingDate  string `json:"crawling_date"`
}

// ResolvedRoute is a route with its provider airport codes.
type ResolvedRoute struct {
	Route
	OriginCode  string
	ArrivalCode string
}

func NewFlightOffer(route ResolvedRoute, crawlingDate string, it Itinerary) FlightOffer {
	return FlightOffer{
		PriceEUR:                  it.PriceAmount,
		OriginAirportName:         it.Origin.Name,
		OriginAirportDisplayCode:  it.Origin.DisplayCode,
		ArrivalAirportName:        it.Destination.Name,
		ArrivalAirportDisplayCode: it.Destination.DisplayCode,
		FlightDepartureTime:       it.Departure,
		FlightArrivalTime:         it.Arrival,
		Competitor:                it.Carrier,
		FlightDuration:            it.TotalDuration,
		OriginCitySearchTerm:      route.DepartureCity,
		ArrivalCitySearchTerm:     route.ArrivalCity,
		OriginCityID:              route.OriginCode,
		ArrivalCityID:             route.ArrivalCode,
		CrawlingDate:              crawlingDate,
	}
}

func NewRouteRecord(route ResolvedRoute, crawlingDate string) RouteRecord {
	return RouteRecord{
		DepartureCity: route.DepartureCity,
		ArrivalCity:   route.ArrivalCity,
		OriginCityID:  route.OriginCode,
		ArrivalCityID: route.ArrivalCode,
		CrawlingDate:  crawlingDate,
	}
}

// SearchCriteria is a single fare query sent to a flight provider.
type SearchCriteria struct {
	Origin        string `json:"origin" validate:"required"`
	Destination   string `json:"destination" validate:"required"`
	DepartureDate string `json:"departure_date" validate:"required,datetime=2006-01-02"`
	Adults        int    `json:"adults" validate:"required,min=1,max=10"`
	CabinClass    string `json:"cabin_class" validate:"required,oneof=economy premium_economy business first"`
	Filter        string `json:"filter" validate:"required"`
	Currency      string `json:"currency" validate:"required,len=3"`
}

// NewSearchCriteria returns the one adult, economy, best, EUR query used by the crawler.
func NewSearchCriteria(origin, destination, departureDate string) SearchCriteria {
	return SearchCriteria{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: departureDate,
		Adults:        1,
		CabinClass:    CabinClassEconomy,
		Filter:        FilterBest,
		Currency:      CurrencyEUR,
	}
}

func (s SearchCriteria) Validate() error {
	if err := ValidateSingleError(s); err != nil {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("invalid search criteria: %s", err.Error()),
		}
	}

	return nil
}
