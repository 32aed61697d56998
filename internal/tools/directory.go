package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"radio-browser-mcp/internal/directory"
	"radio-browser-mcp/internal/station"
)

func (s *Service) getRadioStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.dir.Stats()
	if err != nil {
		return errorResult(err, map[string]any{"stats": map[string]any{}})
	}
	return successResult(map[string]any{"stats": stats})
}

func (s *Service) getAvailableServers(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{"servers": s.mirrors.Resolve()})
}

func (s *Service) searchStationsByCountryCode(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("country_code")
	if err != nil {
		return errorResult(err, map[string]any{"stations": []station.Station{}})
	}
	return s.stationList(s.dir.StationsByCountryCode(code))
}

func (s *Service) searchStationsByName(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return errorResult(err, map[string]any{"stations": []station.Station{}})
	}
	return s.stationList(s.dir.SearchByName(name))
}

func (s *Service) searchStationsByTag(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return errorResult(err, map[string]any{"stations": []station.Station{}})
	}
	return s.stationList(s.dir.SearchByTag(tag))
}

func (s *Service) searchGlobalTopVotedStations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.stationList(s.dir.TopByVotes(req.GetInt("limit", 10)))
}

func (s *Service) searchGlobalTopClickedStations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.stationList(s.dir.TopByClicks(req.GetInt("limit", 10)))
}

func (s *Service) getAvailableTags(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 100)
	order := req.GetString("order", directory.OrderStationCount)

	tags, err := s.dir.Tags(limit, order)
	if err != nil {
		return errorResult(err, map[string]any{"tags": []station.TagCount{}})
	}
	return successResult(map[string]any{"tags": tags})
}

// stationList wraps a station search result, caching the metadata of every
// returned station for later history enrichment.
func (s *Service) stationList(stations []station.Station, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err, map[string]any{"stations": []station.Station{}})
	}
	s.cacheStations(stations)
	return successResult(map[string]any{"stations": stations})
}

// cacheStations is best-effort: a failed write must never fail the search
// that produced the stations.
func (s *Service) cacheStations(stations []station.Station) {
	if err := s.store.CacheStations(stations); err != nil {
		log.Warn().Err(err).Int("stations", len(stations)).Msg("Failed to cache station metadata")
	}
}
