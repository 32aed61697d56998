package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"radio-browser-mcp/internal/history"
)

func (s *Service) addFavoriteStation(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return errorResult(err, nil)
	}
	name := req.GetString("name", "")
	stationUUID := req.GetString("stationuuid", "")

	// Favorites are keyed by the resolved stream URL, matching what
	// playback records in the listening history.
	resolved, rerr := s.playlist.Resolve(url)
	if rerr != nil {
		log.Warn().Err(rerr).Str("url", url).Msg("Playlist resolution failed, using original URL")
	}

	if stationUUID == "" {
		stationUUID, err = s.store.StationUUIDByURL(resolved)
		if err != nil {
			return errorResult(err, nil)
		}
	}

	if err := s.store.UpsertFavorite(resolved, name, stationUUID); err != nil {
		return errorResult(err, nil)
	}

	label := name
	if label == "" {
		label = resolved
	}
	return successResult(map[string]any{"message": "Added to favorites: " + label})
}

func (s *Service) removeFavoriteStation(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return errorResult(err, nil)
	}
	if err := s.store.DeleteFavorite(url); err != nil {
		return errorResult(err, nil)
	}
	return successResult(map[string]any{"message": "Removed from favorites: " + url})
}

func (s *Service) getFavoriteStations(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	favorites, err := s.store.ListFavorites()
	if err != nil {
		return errorResult(err, nil)
	}
	return successResult(map[string]any{"favorites": favorites})
}

func (s *Service) getMyRecentStations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recent, err := s.store.ListRecent(req.GetInt("limit", 10))
	if err != nil {
		return errorResult(err, nil)
	}
	return successResult(map[string]any{"recent": recent})
}

func (s *Service) getMyTopStations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	top, err := s.store.ListTopByDuration(req.GetInt("limit", 10))
	if err != nil {
		return errorResult(err, nil)
	}
	return successResult(map[string]any{"top": top})
}

func (s *Service) getMyTopTags(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.store.HistoryWithTags()
	if err != nil {
		return errorResult(err, map[string]any{"top_tags": []history.TagScore{}})
	}
	top, meta := history.TopTags(rows, req.GetInt("limit", 10))
	return successResult(map[string]any{"top_tags": top, "meta": meta})
}
