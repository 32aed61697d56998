package station

import (
	"encoding/json"
	"testing"
)

func TestStreamURL(t *testing.T) {
	tests := []struct {
		name     string
		station  Station
		expected string
	}{
		{
			name: "Prefers resolved URL",
			station: Station{
				URL:         "http://example.com/listen.pls",
				URLResolved: "http://example.com/stream.mp3",
			},
			expected: "http://example.com/stream.mp3",
		},
		{
			name: "Falls back to registered URL",
			station: Station{
				URL: "http://example.com/listen.pls",
			},
			expected: "http://example.com/listen.pls",
		},
		{
			name:     "Empty station",
			station:  Station{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.station.StreamURL()
			if result != tt.expected {
				t.Errorf("StreamURL() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "Simple list",
			raw:      "rock,pop,jazz",
			expected: []string{"rock", "pop", "jazz"},
		},
		{
			name:     "Trims whitespace and lowercases",
			raw:      " Rock , POP ,jazz ",
			expected: []string{"rock", "pop", "jazz"},
		},
		{
			name:     "Deduplicates preserving first-seen order",
			raw:      "rock,Rock,pop,rock",
			expected: []string{"rock", "pop"},
		},
		{
			name:     "Skips empty entries",
			raw:      "rock,,pop,",
			expected: []string{"rock", "pop"},
		},
		{
			name:     "Empty string",
			raw:      "",
			expected: []string{},
		},
		{
			name:     "Only separators",
			raw:      ", , ,",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseTags(tt.raw)

			if len(result) != len(tt.expected) {
				t.Fatalf("ParseTags(%q) returned %d tags, want %d: got %v", tt.raw, len(result), len(tt.expected), result)
			}

			for i, tag := range result {
				if tag != tt.expected[i] {
					t.Errorf("ParseTags(%q)[%d] = %q, want %q", tt.raw, i, tag, tt.expected[i])
				}
			}
		})
	}
}

func TestTagList(t *testing.T) {
	s := Station{Tags: "Ambient, chillout,ambient"}

	result := s.TagList()
	expected := []string{"ambient", "chillout"}

	if len(result) != len(expected) {
		t.Fatalf("TagList() returned %d tags, want %d: got %v", len(result), len(expected), result)
	}
	for i, tag := range result {
		if tag != expected[i] {
			t.Errorf("TagList()[%d] = %q, want %q", i, tag, expected[i])
		}
	}
}

func TestStationDecode(t *testing.T) {
	payload := []byte(`{
		"stationuuid": "9617a958-0601-11e8-ae97-52543be04c81",
		"name": "Groove Salad",
		"url": "http://somafm.com/groovesalad.pls",
		"url_resolved": "http://ice2.somafm.com/groovesalad-128-mp3",
		"homepage": "http://somafm.com/groovesalad/",
		"tags": "ambient,chillout,downtempo",
		"country": "The United States Of America",
		"countrycode": "US",
		"votes": 2667,
		"clickcount": 187,
		"bitrate": 128,
		"codec": "MP3",
		"lastcheckok": 1
	}`)

	var s Station
	if err := json.Unmarshal(payload, &s); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if s.StationUUID != "9617a958-0601-11e8-ae97-52543be04c81" {
		t.Errorf("Station.StationUUID = %q, want %q", s.StationUUID, "9617a958-0601-11e8-ae97-52543be04c81")
	}
	if s.Name != "Groove Salad" {
		t.Errorf("Station.Name = %q, want %q", s.Name, "Groove Salad")
	}
	if s.URLResolved != "http://ice2.somafm.com/groovesalad-128-mp3" {
		t.Errorf("Station.URLResolved = %q, want %q", s.URLResolved, "http://ice2.somafm.com/groovesalad-128-mp3")
	}
	if s.CountryCode != "US" {
		t.Errorf("Station.CountryCode = %q, want %q", s.CountryCode, "US")
	}
	if s.Votes != 2667 {
		t.Errorf("Station.Votes = %d, want %d", s.Votes, 2667)
	}
	if s.LastCheckOK != 1 {
		t.Errorf("Station.LastCheckOK = %d, want %d", s.LastCheckOK, 1)
	}
}
