package directory

import (
	"fmt"
	"strings"

	"radio-browser-mcp/internal/station"
)

const (
	minLimit = 1
	maxLimit = 1000
)

// Sort fields accepted by the tag catalog endpoint.
const (
	OrderStationCount = "stationcount"
	OrderName         = "name"
)

// clampLimit bounds a result limit to the range the API accepts.
func clampLimit(limit int) int {
	if limit < minLimit {
		return minLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// SearchQuery selects stations on the advanced-search endpoint. Zero-valued
// fields are omitted from the request body.
type SearchQuery struct {
	Name        string `json:"name,omitempty"`
	Tag         string `json:"tag,omitempty"`
	CountryCode string `json:"countrycode,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Order       string `json:"order,omitempty"`
	Reverse     bool   `json:"reverse,omitempty"`
	HideBroken  bool   `json:"hidebroken,omitempty"`
}

// tagQuery is the request body for the tag catalog endpoint.
type tagQuery struct {
	Limit      int    `json:"limit"`
	Order      string `json:"order"`
	Reverse    bool   `json:"reverse"`
	HideBroken bool   `json:"hidebroken"`
}

// Stats fetches statistics from whichever mirror answers first.
func (c *Client) Stats() (*station.Stats, error) {
	var stats station.Stats
	if err := c.Get("/json/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// StationsByCountryCode lists stations registered under an ISO 3166-1
// alpha-2 code. Matching is exact; the code is upper-cased first.
func (c *Client) StationsByCountryCode(code string) ([]station.Station, error) {
	var stations []station.Station
	path := "/json/stations/bycountrycodeexact/" + strings.ToUpper(code)
	if err := c.Get(path, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// SearchByName finds stations whose name contains the given text.
func (c *Client) SearchByName(name string) ([]station.Station, error) {
	return c.Search(SearchQuery{Name: name})
}

// SearchByTag finds stations carrying the given tag.
func (c *Client) SearchByTag(tag string) ([]station.Station, error) {
	return c.Search(SearchQuery{Tag: tag})
}

// Search finds stations matching every set field of query.
func (c *Client) Search(query SearchQuery) ([]station.Station, error) {
	if query.Limit != 0 {
		query.Limit = clampLimit(query.Limit)
	}
	var stations []station.Station
	if err := c.Post("/json/stations/search", query, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// TopByVotes lists the globally most voted stations.
func (c *Client) TopByVotes(limit int) ([]station.Station, error) {
	return c.top("topvote", limit)
}

// TopByClicks lists the globally most clicked stations.
func (c *Client) TopByClicks(limit int) ([]station.Station, error) {
	return c.top("topclick", limit)
}

func (c *Client) top(endpoint string, limit int) ([]station.Station, error) {
	var stations []station.Station
	path := fmt.Sprintf("/json/stations/%s/%d", endpoint, clampLimit(limit))
	if err := c.Get(path, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// Tags fetches the tag catalog, most common first. Unknown order values
// fall back to OrderStationCount.
func (c *Client) Tags(limit int, order string) ([]station.TagCount, error) {
	normalized := strings.ToLower(strings.TrimSpace(order))
	if normalized != OrderStationCount && normalized != OrderName {
		normalized = OrderStationCount
	}

	query := tagQuery{
		Limit:      clampLimit(limit),
		Order:      normalized,
		Reverse:    true,
		HideBroken: true,
	}

	var tags []station.TagCount
	if err := c.Post("/json/tags", query, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
