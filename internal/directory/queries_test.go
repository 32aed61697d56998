package directory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"radio-browser-mcp/internal/station"
)

func TestStats(t *testing.T) {
	server, client := setupTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/stats" {
			t.Errorf("Expected path /json/stats, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","stations":45123,"stations_broken":812,"tags":9200}`))
	})
	defer server.Close()

	stats, err := client.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.Status != "OK" {
		t.Errorf("Stats().Status = %q, want %q", stats.Status, "OK")
	}
	if stats.Stations != 45123 {
		t.Errorf("Stats().Stations = %d, want %d", stats.Stations, 45123)
	}
	if stats.StationsBroken != 812 {
		t.Errorf("Stats().StationsBroken = %d, want %d", stats.StationsBroken, 812)
	}
}

func TestStationsByCountryCodeUppercases(t *testing.T) {
	server, client := setupTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/stations/bycountrycodeexact/US" {
			t.Errorf("Expected path /json/stations/bycountrycodeexact/US, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]station.Station{{Name: "Test FM", CountryCode: "US"}})
	})
	defer server.Close()

	stations, err := client.StationsByCountryCode("us")
	if err != nil {
		t.Fatalf("StationsByCountryCode() error = %v", err)
	}

	if len(stations) != 1 {
		t.Fatalf("StationsByCountryCode() returned %d stations, want 1", len(stations))
	}
	if stations[0].Name != "Test FM" {
		t.Errorf("stations[0].Name = %q, want %q", stations[0].Name, "Test FM")
	}
}

func TestSearchByName(t *testing.T) {
	server, client := setupTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/stations/search" {
			t.Errorf("Expected path /json/stations/search, got %s", r.URL.Path)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["name"] != "BBC" {
			t.Errorf("body[name] = %v, want %q", body["name"], "BBC")
		}
		if _, ok := body["tag"]; ok {
			t.Errorf("body should not contain tag, got %v", body["tag"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]station.Station{{Name: "BBC Radio 1"}})
	})
	defer server.Close()

	stations, err := client.SearchByName("BBC")
	if err != nil {
		t.Fatalf("SearchByName() error = %v", err)
	}
	if len(stations) != 1 || stations[0].Name != "BBC Radio 1" {
		t.Errorf("SearchByName() = %v, want one station named BBC Radio 1", stations)
	}
}

func TestSearchByTag(t *testing.T) {
	server, client := setupTestClient(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["tag"] != "jazz" {
			t.Errorf("body[tag] = %v, want %q", body["tag"], "jazz")
		}
		if _, ok := body["name"]; ok {
			t.Errorf("body should not contain name, got %v", body["name"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]station.Station{})
	})
	defer server.Close()

	if _, err := client.SearchByTag("jazz"); err != nil {
		t.Fatalf("SearchByTag() error = %v", err)
	}
}

func TestSearchMultiField(t *testing.T) {
	server, client := setupTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/stations/search" {
			t.Errorf("Expected path /json/stations/search, got %s", r.URL.Path)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["name"] != "jazz cafe" {
			t.Errorf("body[name] = %v, want %q", body["name"], "jazz cafe")
		}
		if body["tag"] != "jazz" {
			t.Errorf("body[tag] = %v, want %q", body["tag"], "jazz")
		}
		if body["countrycode"] != "FR" {
			t.Errorf("body[countrycode] = %v, want %q", body["countrycode"], "FR")
		}
		if body["limit"] != float64(1000) {
			t.Errorf("body[limit] = %v, want 1000 after clamping", body["limit"])
		}
		if body["hidebroken"] != true {
			t.Errorf("body[hidebroken] = %v, want true", body["hidebroken"])
		}
		// Unset fields stay out of the request entirely.
		for _, key := range []string{"order", "reverse"} {
			if _, ok := body[key]; ok {
				t.Errorf("body should not contain %s, got %v", key, body[key])
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]station.Station{{Name: "Jazz Cafe FM"}})
	})
	defer server.Close()

	stations, err := client.Search(SearchQuery{
		Name:        "jazz cafe",
		Tag:         "jazz",
		CountryCode: "FR",
		Limit:       5000,
		HideBroken:  true,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(stations) != 1 || stations[0].Name != "Jazz Cafe FM" {
		t.Errorf("Search() = %v, want one station named Jazz Cafe FM", stations)
	}
}

func TestTopByVotesClampsLimit(t *testing.T) {
	tests := []struct {
		name         string
		limit        int
		expectedPath string
	}{
		{"within range", 10, "/json/stations/topvote/10"},
		{"below minimum", 0, "/json/stations/topvote/1"},
		{"negative", -5, "/json/stations/topvote/1"},
		{"above maximum", 5000, "/json/stations/topvote/1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, client := setupTestClient(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.expectedPath {
					t.Errorf("Expected path %s, got %s", tt.expectedPath, r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			})
			defer server.Close()

			if _, err := client.TopByVotes(tt.limit); err != nil {
				t.Fatalf("TopByVotes() error = %v", err)
			}
		})
	}
}

func TestTopByClicks(t *testing.T) {
	server, client := setupTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/stations/topclick/25" {
			t.Errorf("Expected path /json/stations/topclick/25, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]station.Station{{Name: "Clicky FM", ClickCount: 9000}})
	})
	defer server.Close()

	stations, err := client.TopByClicks(25)
	if err != nil {
		t.Fatalf("TopByClicks() error = %v", err)
	}
	if len(stations) != 1 || stations[0].ClickCount != 9000 {
		t.Errorf("TopByClicks() = %v, want one station with 9000 clicks", stations)
	}
}

func TestTags(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		order         string
		expectedLimit float64
		expectedOrder string
	}{
		{"defaults preserved", 100, "stationcount", 100, "stationcount"},
		{"order by name", 50, "name", 50, "name"},
		{"unknown order falls back", 10, "votes", 10, "stationcount"},
		{"order is normalized", 10, "  Name ", 10, "name"},
		{"limit clamped high", 99999, "stationcount", 1000, "stationcount"},
		{"limit clamped low", 0, "stationcount", 1, "stationcount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, client := setupTestClient(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/json/tags" {
					t.Errorf("Expected path /json/tags, got %s", r.URL.Path)
				}

				var body map[string]interface{}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("Failed to decode request body: %v", err)
				}
				if body["limit"] != tt.expectedLimit {
					t.Errorf("body[limit] = %v, want %v", body["limit"], tt.expectedLimit)
				}
				if body["order"] != tt.expectedOrder {
					t.Errorf("body[order] = %v, want %q", body["order"], tt.expectedOrder)
				}
				if body["reverse"] != true {
					t.Errorf("body[reverse] = %v, want true", body["reverse"])
				}
				if body["hidebroken"] != true {
					t.Errorf("body[hidebroken] = %v, want true", body["hidebroken"])
				}

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode([]station.TagCount{{Name: "rock", StationCount: 12000}})
			})
			defer server.Close()

			tags, err := client.Tags(tt.limit, tt.order)
			if err != nil {
				t.Fatalf("Tags() error = %v", err)
			}
			if len(tags) != 1 {
				t.Fatalf("Tags() returned %d tags, want 1", len(tags))
			}
			if tags[0].Name != "rock" || tags[0].StationCount != 12000 {
				t.Errorf("Tags()[0] = %+v, want rock with 12000 stations", tags[0])
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{1, 1},
		{500, 500},
		{1000, 1000},
		{0, 1},
		{-1, 1},
		{1001, 1000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit %d", tt.input), func(t *testing.T) {
			if result := clampLimit(tt.input); result != tt.expected {
				t.Errorf("clampLimit(%d) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}
