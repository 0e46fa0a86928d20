//go:build unit

package dto

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCrawlRequest_Validate(t *testing.T) {
	// Initialize validator for tests
	_ = InitValidator()

	validateRequest := func(req CrawlRequest, wantErr bool, wantMsg string) func(t *testing.T) {
		return func(t *testing.T) {
			err := req.Validate()
			if (err != nil) != wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, wantErr)
			}

			if wantErr && err != nil {
				if diff := cmp.Diff(wantMsg, err.Error()); diff != "" {
					t.Fatalf("Validate() error message mismatch (-want +got):\n%s", diff)
				}
			}
		}
	}

	ptrInt := func(i int) *int { return &i }

	t.Run("empty_request_uses_defaults", validateRequest(CrawlRequest{}, false, ""))

	t.Run("full_request", validateRequest(CrawlRequest{
		CrawlingDate: "2025-06-01",
		From:         0,
		To:           ptrInt(10),
		Tag:          "t_plus_6",
	}, false, ""))

	t.Run("invalid_date", validateRequest(CrawlRequest{
		CrawlingDate: "01/06/2025",
	}, true, "crawling_date does not match the 2006-01-02 format"))

	t.Run("negative_from", validateRequest(CrawlRequest{
		From: -1,
	}, true, "from must be 0 or greater"))

	t.Run("tag_with_path_separator", validateRequest(CrawlRequest{
		Tag: "../etc",
	}, true, "tag may only contain letters, digits, '-' and '_'"))

	t.Run("empty_range", validateRequest(CrawlRequest{
		From: 5,
		To:   ptrInt(5),
	}, true, "to must be greater than from"))
}

func TestSearchCriteria_Validate(t *testing.T) {
	_ = InitValidator()

	if err := NewSearchCriteria("CDG", "FCO", "2025-06-01").Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	err := NewSearchCriteria("", "FCO", "2025-06-01").Validate()
	if err == nil {
		t.Fatal("expected error for missing origin")
	}

	if diff := cmp.Diff("invalid search criteria: origin is a required field", err.Error()); diff != "" {
		t.Fatalf("Validate() error message mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFlightOffer(t *testing.T) {
	route := ResolvedRoute{
		Route:       Route{DepartureCity: "Paris", ArrivalCity: "Rome"},
		OriginCode:  "PARI",
		ArrivalCode: "ROME",
	}

	got := NewFlightOffer(route, "2025-06-01", Itinerary{
		PriceAmount:   120,
		Origin:        Airport{Name: "Paris Charles de Gaulle", DisplayCode: "CDG"},
		Destination:   Airport{Name: "Rome Fiumicino", DisplayCode: "FCO"},
		Departure:     "2025-06-01T07:10:00",
		Arrival:       "2025-06-01T09:15:00",
		Carrier:       "ITA Airways",
		TotalDuration: 125,
	})

	want := FlightOffer{
		PriceEUR:                  120,
		OriginAirportName:         "Paris Charles de Gaulle",
		OriginAirportDisplayCode:  "CDG",
		ArrivalAirportName:        "Rome Fiumicino",
		ArrivalAirportDisplayCode: "FCO",
		FlightDepartureTime:       "2025-06-01T07:10:00",
		FlightArrivalTime:         "2025-06-01T09:15:00",
		Competitor:                "ITA Airways",
		FlightDuration:            125,
		OriginCitySearchTerm:      "Paris",
		ArrivalCitySearchTerm:     "Rome",
		OriginCityID:              "PARI",
		ArrivalCityID:             "ROME",
		CrawlingDate:              "2025-06-01",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("NewFlightOffer() mismatch (-want +got):\n%s", diff)
	}
}
