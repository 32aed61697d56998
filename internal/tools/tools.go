// Package tools exposes the radio toolset over MCP: directory search,
// playback control and the personal listening library. Every handler reports
// domain failures inside a uniform success/error JSON envelope; no failure
// crosses the tool boundary as a protocol error.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"radio-browser-mcp/internal/directory"
	"radio-browser-mcp/internal/playback"
	"radio-browser-mcp/internal/playlist"
	"radio-browser-mcp/internal/store"
)

// Service bundles the collaborators the tool handlers dispatch to.
type Service struct {
	mirrors  *directory.MirrorResolver
	dir      *directory.Client
	store    *store.Store
	session  *playback.Session
	playlist *playlist.Resolver
}

func NewService(mirrors *directory.MirrorResolver, dir *directory.Client, st *store.Store, session *playback.Session, resolver *playlist.Resolver) *Service {
	return &Service{
		mirrors:  mirrors,
		dir:      dir,
		store:    st,
		session:  session,
		playlist: resolver,
	}
}

// Register adds every radio tool to the MCP server.
func (s *Service) Register(srv *server.MCPServer) {
	srv.AddTool(mcp.NewTool("get_radio_stats",
		mcp.WithDescription("Get Radio Browser statistics (stations, countries, and other metrics)."),
	), s.getRadioStats)

	srv.AddTool(mcp.NewTool("get_available_servers",
		mcp.WithDescription("Get list of all available Radio Browser API servers."),
	), s.getAvailableServers)

	srv.AddTool(mcp.NewTool("search_stations_by_country_code",
		mcp.WithDescription("Search radio stations by country code."),
		mcp.WithString("country_code", mcp.Required(),
			mcp.Description("Two-letter country code (e.g., 'US', 'DE', 'TR', 'GB', 'FR')")),
	), s.searchStationsByCountryCode)

	srv.AddTool(mcp.NewTool("search_stations_by_station_name",
		mcp.WithDescription("Search radio stations by name or partial name."),
		mcp.WithString("name", mcp.Required(),
			mcp.Description("Name or partial name of the radio station to search for")),
	), s.searchStationsByName)

	srv.AddTool(mcp.NewTool("search_stations_by_tag",
		mcp.WithDescription("Search radio stations by tag (genre)."),
		mcp.WithString("tag", mcp.Required(),
			mcp.Description("Tag or genre to search for (e.g., 'jazz', 'rock', 'classical')")),
	), s.searchStationsByTag)

	srv.AddTool(mcp.NewTool("search_global_top_voted_stations",
		mcp.WithDescription("Get the top voted stations globally from the Radio Browser database."),
		mcp.WithNumber("limit", mcp.DefaultNumber(10),
			mcp.Description("Number of stations to return (default 10)")),
	), s.searchGlobalTopVotedStations)

	srv.AddTool(mcp.NewTool("search_global_top_clicked_stations",
		mcp.WithDescription("Get the most clicked stations globally from the Radio Browser database."),
		mcp.WithNumber("limit", mcp.DefaultNumber(10),
			mcp.Description("Number of stations to return (default 10)")),
	), s.searchGlobalTopClickedStations)

	srv.AddTool(mcp.NewTool("get_available_tags",
		mcp.WithDescription("Get available tags from the Radio Browser database."),
		mcp.WithNumber("limit", mcp.DefaultNumber(100),
			mcp.Description("Number of tags to return (default 100, max 1000)")),
		mcp.WithString("order", mcp.DefaultString(directory.OrderStationCount),
			mcp.Description(`Sort order, one of "stationcount" or "name"`)),
	), s.getAvailableTags)

	srv.AddTool(mcp.NewTool("play_radio_station",
		mcp.WithDescription("Play an audio stream from a given URL using VLC. Automatically resolves playlists if necessary."),
		mcp.WithString("url", mcp.Required(),
			mcp.Description("The stream URL to play")),
		mcp.WithString("name",
			mcp.Description("The stream name (for history tracking)")),
		mcp.WithString("stationuuid",
			mcp.Description("Station UUID from Radio Browser metadata")),
	), s.playRadioStation)

	srv.AddTool(mcp.NewTool("stop_radio",
		mcp.WithDescription("Stops the currently playing radio station."),
	), s.stopRadio)

	srv.AddTool(mcp.NewTool("get_radio_status",
		mcp.WithDescription("Get the current playback status of the radio station."),
	), s.getRadioStatus)

	srv.AddTool(mcp.NewTool("set_radio_volume",
		mcp.WithDescription("Set the volume of the radio player."),
		mcp.WithNumber("volume", mcp.Required(),
			mcp.Description("Volume level from 0 to 100.")),
	), s.setRadioVolume)

	srv.AddTool(mcp.NewTool("get_radio_volume",
		mcp.WithDescription("Get the current volume of the radio player."),
	), s.getRadioVolume)

	srv.AddTool(mcp.NewTool("add_favorite_station",
		mcp.WithDescription("Add a radio station to favorites."),
		mcp.WithString("url", mcp.Required(),
			mcp.Description("The stream URL to save")),
		mcp.WithString("name",
			mcp.Description("Display name for the favorite")),
		mcp.WithString("stationuuid",
			mcp.Description("Station UUID from Radio Browser metadata")),
	), s.addFavoriteStation)

	srv.AddTool(mcp.NewTool("remove_favorite_station",
		mcp.WithDescription("Remove a radio station from favorites."),
		mcp.WithString("url", mcp.Required(),
			mcp.Description("The favorite's stream URL")),
	), s.removeFavoriteStation)

	srv.AddTool(mcp.NewTool("get_favorite_stations",
		mcp.WithDescription("Get the list of favorite radio stations."),
	), s.getFavoriteStations)

	srv.AddTool(mcp.NewTool("get_my_recent_stations",
		mcp.WithDescription("Get the most recently played radio stations from personal history."),
		mcp.WithNumber("limit", mcp.DefaultNumber(10),
			mcp.Description("Number of stations to return (default 10)")),
	), s.getMyRecentStations)

	srv.AddTool(mcp.NewTool("get_my_top_stations",
		mcp.WithDescription("Get personal top radio stations by total listening duration."),
		mcp.WithNumber("limit", mcp.DefaultNumber(10),
			mcp.Description("Number of stations to return (default 10)")),
	), s.getMyTopStations)

	srv.AddTool(mcp.NewTool("get_my_top_tags",
		mcp.WithDescription("Get personal top tags aggregated from listened stations with cached station metadata."),
		mcp.WithNumber("limit", mcp.DefaultNumber(10),
			mcp.Description("Number of tags to return (default 10, max 1000)")),
	), s.getMyTopTags)
}

// successResult wraps the payload fields in the success envelope.
func successResult(fields map[string]any) (*mcp.CallToolResult, error) {
	payload := map[string]any{"success": true}
	for k, v := range fields {
		payload[k] = v
	}
	return marshalResult(payload)
}

// errorResult reports a domain failure inside the envelope, with any
// tool-specific empty placeholders the caller wants alongside it.
func errorResult(err error, fields map[string]any) (*mcp.CallToolResult, error) {
	payload := map[string]any{"success": false, "error": err.Error()}
	for k, v := range fields {
		payload[k] = v
	}
	return marshalResult(payload)
}

func marshalResult(payload map[string]any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// nullableString maps an empty string to JSON null.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
