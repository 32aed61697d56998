package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Service) playRadioStation(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return errorResult(err, nil)
	}
	name := req.GetString("name", "")
	stationUUID := req.GetString("stationuuid", "")

	resolved, err := s.session.Start(url, name, stationUUID)
	if err != nil {
		return errorResult(err, nil)
	}
	return successResult(map[string]any{"message": "Started playback of " + resolved})
}

func (s *Service) stopRadio(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.session.Stop(); err != nil {
		return errorResult(err, nil)
	}
	return successResult(map[string]any{"message": "Stopped playback"})
}

func (s *Service) getRadioStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.session.Status()
	if err != nil {
		return errorResult(err, nil)
	}
	return successResult(map[string]any{
		"status":      status.State,
		"url":         nullableString(status.URL),
		"now_playing": nullableString(status.NowPlaying),
		"title":       nullableString(status.Title),
	})
}

func (s *Service) setRadioVolume(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	volume, err := req.RequireInt("volume")
	if err != nil {
		return errorResult(err, nil)
	}
	applied, err := s.session.SetVolume(volume)
	if err != nil {
		return errorResult(err, nil)
	}
	return successResult(map[string]any{"message": fmt.Sprintf("Volume set to %d%%", applied)})
}

func (s *Service) getRadioVolume(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	volume, err := s.session.Volume()
	if err != nil {
		return errorResult(err, nil)
	}
	return successResult(map[string]any{"volume": volume})
}
