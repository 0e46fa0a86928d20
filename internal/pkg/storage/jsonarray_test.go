//go:build unit

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayFile_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed_routes.json")
	f := NewArrayFile(path)
	defer f.Close()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file must not exist before the first append")

	first := dto.RouteRecord{
		DepartureCity: "Düsseldorf",
		ArrivalCity:   "Tel Aviv",
		OriginCityID:  "DUS",
		ArrivalCityID: "TLV",
		CrawlingDate:  "2025-06-01",
	}
	require.NoError(t, f.Append(first))

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
    {
        "departure_city": "Düsseldorf",
        "arrival_city": "Tel Aviv",
        "origin_city_id": "DUS",
        "arrival_city_id": "TLV",
        "crawling_date": "2025-06-01"
    }
]`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("file after first append mismatch (-want +got):\n%s", diff)
	}

	second := dto.RouteRecord{
		DepartureCity: "Paris & <Orly>",
		ArrivalCity:   "Münster",
		OriginCityID:  "ORY",
		ArrivalCityID: "FMO",
		CrawlingDate:  "2025-06-01",
	}
	require.NoError(t, f.Append(second))

	got, err = os.ReadFile(path)
	require.NoError(t, err)

	want = `[
    {
        "departure_city": "Düsseldorf",
        "arrival_city": "Tel Aviv",
        "origin_city_id": "DUS",
        "arrival_city_id": "TLV",
        "crawling_date": "2025-06-01"
    },
    {
        "departure_city": "Paris & <Orly>",
        "arrival_city": "Münster",
        "origin_city_id": "ORY",
        "arrival_city_id": "FMO",
        "crawling_date": "2025-06-01"
    }
]`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("file after second append mismatch (-want +got):\n%s", diff)
	}

	var decoded []dto.RouteRecord
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, []dto.RouteRecord{first, second}, decoded)
	assert.Equal(t, 2, f.Len())
}

func TestArrayFile_AppendNestedGroup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight_data.json")
	f := NewArrayFile(path)
	defer f.Close()

	require.NoError(t, f.Append([]dto.Airport{{Name: "Rome Fiumicino", DisplayCode: "FCO"}}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
    [
        {
            "name": "Rome Fiumicino",
            "display_code": "FCO"
        }
    ]
]`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("nested group mismatch (-want +got):\n%s", diff)
	}
}

func TestArrayFile_CloseWithoutAppend(t *testing.T) {
	f := NewArrayFile(filepath.Join(t.TempDir(), "no_data_routes.json"))
	assert.NoError(t, f.Close())
}
