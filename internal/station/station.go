// Package station defines the data structures for Radio-Browser directory entries.
package station

import "strings"

// Station represents a single Radio-Browser station with its metadata.
type Station struct {
	StationUUID string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	URLResolved string `json:"url_resolved"`
	Homepage    string `json:"homepage"`
	Favicon     string `json:"favicon"`
	Tags        string `json:"tags"` // Comma-separated tag list
	Country     string `json:"country"`
	CountryCode string `json:"countrycode"`
	Language    string `json:"language"`
	Votes       int    `json:"votes"`
	ClickCount  int    `json:"clickcount"`
	Bitrate     int    `json:"bitrate"`
	Codec       string `json:"codec"`
	LastCheckOK int    `json:"lastcheckok"`
}

// StreamURL returns the resolved stream address when the directory has one.
// Falls back to the registered URL otherwise.
func (s *Station) StreamURL() string {
	if s.URLResolved != "" {
		return s.URLResolved
	}
	return s.URL
}

// TagList returns the station's tags normalized via ParseTags.
func (s *Station) TagList() []string {
	return ParseTags(s.Tags)
}

// ParseTags splits a comma-separated tag string into trimmed, lower-cased,
// deduplicated tags, preserving first-seen order.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]bool, len(parts))
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// Stats represents the statistics block reported by a Radio-Browser server.
type Stats struct {
	SupportedVersion int    `json:"supported_version"`
	SoftwareVersion  string `json:"software_version"`
	Status           string `json:"status"`
	Stations         int    `json:"stations"`
	StationsBroken   int    `json:"stations_broken"`
	Tags             int    `json:"tags"`
	ClicksLastHour   int    `json:"clicks_last_hour"`
	ClicksLastDay    int    `json:"clicks_last_day"`
	Languages        int    `json:"languages"`
	Countries        int    `json:"countries"`
}

// TagCount is one entry of the directory's tag catalog.
type TagCount struct {
	Name         string `json:"name"`
	StationCount int    `json:"stationcount"`
}
