package tools

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"radio-browser-mcp/internal/config"
	"radio-browser-mcp/internal/playback"
	"radio-browser-mcp/internal/player"
	"radio-browser-mcp/internal/playlist"
	"radio-browser-mcp/internal/store"
)

func TestPlayRadioStation(t *testing.T) {
	ts := setupTestService(t, http.NotFound)

	payload := decodeResult(t, ts.svc.playRadioStation(context.Background(), newRequest(map[string]any{
		"url":         "http://stream.example.com/live",
		"name":        "Test FM",
		"stationuuid": "uuid-1",
	})))
	assertSuccess(t, payload)

	if payload["message"] != "Started playback of http://stream.example.com/live" {
		t.Errorf("message = %v, want started-playback message", payload["message"])
	}
	if len(ts.player.plays) != 1 || ts.player.plays[0] != "http://stream.example.com/live" {
		t.Errorf("player plays = %v, want the requested stream", ts.player.plays)
	}
}

func TestPlayRadioStationMissingURL(t *testing.T) {
	ts := setupTestService(t, http.NotFound)

	payload := decodeResult(t, ts.svc.playRadioStation(context.Background(), newRequest(nil)))
	assertFailure(t, payload)
}

func TestPlayRadioStationPlayerUnavailable(t *testing.T) {
	ts := setupTestService(t, http.NotFound)

	st, err := store.Open(filepath.Join(t.TempDir(), "radio.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.DefaultConfig()
	resolver := playlist.NewResolver(cfg.MaxPlaylistBytes)
	session := playback.NewSession(cfg, st, resolver, nil, errors.New("init failed"))
	t.Cleanup(session.Close)
	svc := NewService(ts.svc.mirrors, ts.svc.dir, st, session, resolver)

	payload := decodeResult(t, svc.playRadioStation(context.Background(), newRequest(map[string]any{
		"url": "http://stream.example.com/live",
	})))
	msg := assertFailure(t, payload)

	want := "VLC is not available. Install VLC/libVLC and ensure it can be initialized. Details: init failed"
	if msg != want {
		t.Errorf("error = %q, want %q", msg, want)
	}
}

func TestStopRadio(t *testing.T) {
	ts := setupTestService(t, http.NotFound)

	decodeResult(t, ts.svc.playRadioStation(context.Background(), newRequest(map[string]any{
		"url": "http://stream.example.com/live",
	})))

	payload := decodeResult(t, ts.svc.stopRadio(context.Background(), newRequest(nil)))
	assertSuccess(t, payload)
	if payload["message"] != "Stopped playback" {
		t.Errorf("message = %v, want %q", payload["message"], "Stopped playback")
	}
	if ts.player.stops != 1 {
		t.Errorf("player stops = %d, want 1", ts.player.stops)
	}
}

func TestGetRadioStatusWhilePlaying(t *testing.T) {
	ts := setupTestService(t, http.NotFound)

	decodeResult(t, ts.svc.playRadioStation(context.Background(), newRequest(map[string]any{
		"url": "http://stream.example.com/live",
	})))
	ts.player.mu.Lock()
	ts.player.track = "Artist - Current Song"
	ts.player.title = "Station Title"
	ts.player.mu.Unlock()

	payload := decodeResult(t, ts.svc.getRadioStatus(context.Background(), newRequest(nil)))
	assertSuccess(t, payload)

	if payload["status"] != "Playing" {
		t.Errorf("status = %v, want Playing", payload["status"])
	}
	if payload["url"] != "http://stream.example.com/live" {
		t.Errorf("url = %v, want the active stream", payload["url"])
	}
	if payload["now_playing"] != "Artist - Current Song" {
		t.Errorf("now_playing = %v, want track metadata", payload["now_playing"])
	}
	if payload["title"] != "Station Title" {
		t.Errorf("title = %v, want station title", payload["title"])
	}
}

func TestGetRadioStatusIdleHasNullFields(t *testing.T) {
	ts := setupTestService(t, http.NotFound)
	ts.player.mu.Lock()
	ts.player.state = player.StateNothingSpecial
	ts.player.mu.Unlock()

	payload := decodeResult(t, ts.svc.getRadioStatus(context.Background(), newRequest(nil)))
	assertSuccess(t, payload)

	if payload["status"] != "Stopped" {
		t.Errorf("status = %v, want Stopped", payload["status"])
	}
	for _, key := range []string{"url", "now_playing", "title"} {
		value, present := payload[key]
		if !present {
			t.Errorf("payload is missing %q", key)
			continue
		}
		if value != nil {
			t.Errorf("%s = %v, want null", key, value)
		}
	}
}

func TestSetRadioVolumeClamps(t *testing.T) {
	ts := setupTestService(t, http.NotFound)

	payload := decodeResult(t, ts.svc.setRadioVolume(context.Background(),
		newRequest(map[string]any{"volume": 150})))
	assertSuccess(t, payload)
	if payload["message"] != "Volume set to 100%" {
		t.Errorf("message = %v, want clamped volume message", payload["message"])
	}

	payload = decodeResult(t, ts.svc.getRadioVolume(context.Background(), newRequest(nil)))
	assertSuccess(t, payload)
	if payload["volume"] != float64(100) {
		t.Errorf("volume = %v, want 100", payload["volume"])
	}
}

func TestSetRadioVolumeMissingArgument(t *testing.T) {
	ts := setupTestService(t, http.NotFound)

	payload := decodeResult(t, ts.svc.setRadioVolume(context.Background(), newRequest(nil)))
	assertFailure(t, payload)
}
