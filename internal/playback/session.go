// Package playback owns the state of the currently playing stream: starting
// and stopping the player, reconnecting after stream failures, and
// periodically persisting listen time.
package playback

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"radio-browser-mcp/internal/config"
	"radio-browser-mcp/internal/metrics"
	"radio-browser-mcp/internal/player"
)

// Store is the slice of the persistence layer the session needs.
type Store interface {
	AddListenDuration(url string, seconds float64, name, stationUUID string) error
	StationUUIDByURL(url string) (string, error)
}

// Resolver turns playlist URLs into direct stream URLs.
type Resolver interface {
	Resolve(rawURL string) (string, error)
}

// PlayerUnavailableError reports that the player capability could not be
// initialized. It is an environment problem, not a per-stream one.
type PlayerUnavailableError struct {
	Cause error
}

func (e *PlayerUnavailableError) Error() string {
	cause := "unknown error"
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return "VLC is not available. Install VLC/libVLC and ensure it can be initialized. Details: " + cause
}

func (e *PlayerUnavailableError) Unwrap() error { return e.Cause }

// Status is a snapshot of the player state for the current stream.
type Status struct {
	State      string
	URL        string
	NowPlaying string
	Title      string
}

// Session is the single process-wide playback session. Exactly one stream is
// addressed at a time: starting a new one finalizes the previous one's
// duration bookkeeping first.
//
// Three locks guard independent pieces of state so tracking commits and
// reconnect scheduling never contend with each other. stateMu is a leaf
// lock: no other lock is acquired while holding it.
type Session struct {
	cfg       *config.Config
	store     Store
	resolver  Resolver
	player    player.Player
	playerErr error

	// opMu serializes Start and Stop wholesale so a new stream never
	// interleaves with the previous one's teardown.
	opMu sync.Mutex

	// stateMu guards the identity of the current stream.
	stateMu         sync.Mutex
	currentURL      string
	currentName     string
	currentUUID     string
	asyncTrack      string
	intentionalStop bool

	// trackingMu guards the periodic duration-commit loop.
	trackingMu    sync.Mutex
	lastCommitAt  time.Time
	trackingTimer *time.Timer

	// reconnectMu guards reconnect backoff and scheduling.
	reconnectMu     sync.Mutex
	reconnectDelay  time.Duration
	lastReconnectAt time.Time
	reconnectTimer  *time.Timer

	done      chan struct{}
	closeOnce sync.Once
}

// NewSession wires the session to its collaborators and starts consuming
// player events. p may be nil when player initialization failed; playerErr
// then preserves the cause for diagnostics, and every playback operation
// reports a PlayerUnavailableError.
func NewSession(cfg *config.Config, st Store, resolver Resolver, p player.Player, playerErr error) *Session {
	s := &Session{
		cfg:       cfg,
		store:     st,
		resolver:  resolver,
		player:    p,
		playerErr: playerErr,
		done:      make(chan struct{}),
	}
	if p != nil {
		go s.dispatchEvents()
	}
	return s
}

// Start begins playback of url, replacing whatever was playing before. It
// returns the resolved stream URL actually handed to the player.
func (s *Session) Start(rawURL, name, stationUUID string) (string, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	// Commit time accrued by the previous stream before switching.
	s.commitListenTime(false)
	s.cancelTrackingTimer()

	s.stateMu.Lock()
	s.asyncTrack = ""
	s.intentionalStop = false
	s.stateMu.Unlock()

	// A manual start clears any scheduled reconnect and resets backoff.
	s.reconnectMu.Lock()
	s.reconnectDelay = s.cfg.InitialReconnectDelay()
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.reconnectMu.Unlock()

	resolved, err := s.resolver.Resolve(rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("Playlist resolution failed, using original URL")
	}

	if stationUUID == "" {
		uuid, err := s.store.StationUUIDByURL(resolved)
		if err != nil {
			log.Warn().Err(err).Str("url", resolved).Msg("Station UUID lookup failed")
		} else {
			stationUUID = uuid
		}
	}

	s.stateMu.Lock()
	s.currentURL = resolved
	s.currentName = name
	s.currentUUID = stationUUID
	s.stateMu.Unlock()

	s.trackingMu.Lock()
	s.lastCommitAt = time.Now()
	if s.cfg.EnableBackgroundTracking {
		s.armTrackingTimerLocked()
	}
	s.trackingMu.Unlock()

	if err := s.ensurePlayer(); err != nil {
		return "", err
	}
	if err := s.player.Play(resolved); err != nil {
		return "", err
	}
	log.Info().Str("url", resolved).Str("name", name).Msg("Playback started")
	return resolved, nil
}

// Stop halts playback, commits the final listen duration and marks the stop
// as intentional so stream-lost events do not trigger a reconnect. Idempotent.
func (s *Session) Stop() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.commitListenTime(false)
	s.cancelTrackingTimer()

	s.trackingMu.Lock()
	s.lastCommitAt = time.Time{}
	s.trackingMu.Unlock()

	s.stateMu.Lock()
	s.currentURL = ""
	s.currentUUID = ""
	s.intentionalStop = true
	s.stateMu.Unlock()

	if err := s.ensurePlayer(); err != nil {
		return err
	}
	if err := s.player.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	log.Info().Msg("Playback stopped")
	return nil
}

// Status reports the player state and the best-known track metadata. A track
// name captured asynchronously from metadata-changed events wins over
// synchronously read metadata; failing both, a title that looks like
// "Artist - Song" is reused as the now-playing value.
func (s *Session) Status() (Status, error) {
	if err := s.ensurePlayer(); err != nil {
		return Status{}, err
	}

	st := Status{State: s.player.State().String()}

	url := s.player.MediaURL()
	if url == "" {
		return st, nil
	}
	st.URL = url

	s.stateMu.Lock()
	async := s.asyncTrack
	s.stateMu.Unlock()

	if async != "" {
		st.NowPlaying = async
		return st, nil
	}

	track, title := s.player.NowPlaying()
	st.NowPlaying = track
	st.Title = title
	if st.NowPlaying == "" && strings.Contains(title, " - ") {
		st.NowPlaying = title
	}
	return st, nil
}

// SetVolume clamps v to the valid range and applies it, returning the value
// actually set.
func (s *Session) SetVolume(v int) (int, error) {
	v = config.ClampVolume(v)
	if err := s.ensurePlayer(); err != nil {
		return 0, err
	}
	if err := s.player.SetVolume(v); err != nil {
		return 0, fmt.Errorf("failed to set volume: %w", err)
	}
	return v, nil
}

// Volume reports the player's current volume.
func (s *Session) Volume() (int, error) {
	if err := s.ensurePlayer(); err != nil {
		return 0, err
	}
	v, err := s.player.Volume()
	if err != nil {
		return 0, fmt.Errorf("failed to get volume: %w", err)
	}
	return v, nil
}

// Close performs the final duration commit and stops all background work.
// The player itself is released by the owner that created it.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.commitListenTime(false)
		s.cancelTrackingTimer()

		s.reconnectMu.Lock()
		if s.reconnectTimer != nil {
			s.reconnectTimer.Stop()
			s.reconnectTimer = nil
		}
		s.reconnectMu.Unlock()
	})
}

func (s *Session) ensurePlayer() error {
	if s.player == nil {
		return &PlayerUnavailableError{Cause: s.playerErr}
	}
	return nil
}

// dispatchEvents consumes the player's event queue until Close.
func (s *Session) dispatchEvents() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.player.Events():
			switch ev {
			case player.EventEndReached, player.EventEncounteredError:
				s.handleStreamLost()
			case player.EventMetaChanged:
				s.captureTrackName()
			}
		}
	}
}

// captureTrackName records the stream's now-playing metadata when it changes.
// An empty value never overwrites a previously captured one.
func (s *Session) captureTrackName() {
	track, _ := s.player.NowPlaying()
	if track == "" {
		return
	}
	s.stateMu.Lock()
	s.asyncTrack = track
	s.stateMu.Unlock()
	log.Debug().Str("track", track).Msg("Track metadata updated")
}

// handleStreamLost schedules a reconnect for an unintentional stream loss.
// Every event adjusts the backoff delay, even when a reconnect is already
// pending; scheduling itself is debounced to one timer at a time.
func (s *Session) handleStreamLost() {
	s.stateMu.Lock()
	url := s.currentURL
	stopped := s.intentionalStop
	s.stateMu.Unlock()

	if stopped || url == "" {
		return
	}

	delay := s.advanceReconnectDelay(time.Now())

	s.reconnectMu.Lock()
	defer s.reconnectMu.Unlock()
	if s.reconnectTimer != nil {
		return
	}

	log.Warn().Str("url", url).Dur("delay", delay).Msg("Stream lost, scheduling reconnect")
	metrics.ReconnectsScheduled.Inc()
	s.reconnectTimer = time.AfterFunc(delay, s.reconnect)
}

// advanceReconnectDelay applies the backoff rule for an event at now: a
// repeat failure within the threshold doubles the delay up to the maximum,
// a failure after a stable run resets it to the initial value.
func (s *Session) advanceReconnectDelay(now time.Time) time.Duration {
	s.reconnectMu.Lock()
	defer s.reconnectMu.Unlock()

	if now.Sub(s.lastReconnectAt) < s.cfg.ReconnectBackoffThreshold() {
		s.reconnectDelay = min(s.reconnectDelay*2, s.cfg.MaxReconnectDelay())
	} else {
		s.reconnectDelay = s.cfg.InitialReconnectDelay()
	}
	s.lastReconnectAt = now
	return s.reconnectDelay
}

// reconnect re-starts the current stream unless it was stopped on purpose in
// the meantime. Runs on the reconnect timer's goroutine.
func (s *Session) reconnect() {
	s.reconnectMu.Lock()
	s.reconnectTimer = nil
	s.reconnectMu.Unlock()

	s.stateMu.Lock()
	url := s.currentURL
	name := s.currentName
	uuid := s.currentUUID
	stopped := s.intentionalStop
	s.stateMu.Unlock()

	if stopped || url == "" {
		return
	}

	log.Info().Str("url", url).Msg("Reconnecting")
	if _, err := s.Start(url, name, uuid); err != nil {
		log.Err(err).Str("url", url).Msg("Reconnect failed")
	}
}

// commitListenTime persists the time elapsed since the last commit for the
// current stream. The commit timestamp only advances when the write
// succeeds, so time lost to a transient storage error is recovered by the
// next commit. When reschedule is set the periodic timer is re-armed,
// keeping the tracking loop alive.
func (s *Session) commitListenTime(reschedule bool) {
	s.trackingMu.Lock()
	defer s.trackingMu.Unlock()

	s.stateMu.Lock()
	url := s.currentURL
	name := s.currentName
	uuid := s.currentUUID
	s.stateMu.Unlock()

	if url == "" || s.lastCommitAt.IsZero() {
		return
	}

	now := time.Now()
	elapsed := now.Sub(s.lastCommitAt)
	if elapsed > 0 {
		if err := s.store.AddListenDuration(url, elapsed.Seconds(), name, uuid); err != nil {
			log.Err(err).Str("url", url).Msg("Failed to record listen duration")
		} else {
			s.lastCommitAt = now
			metrics.DurationCommits.Inc()
			metrics.ListenedSeconds.Add(elapsed.Seconds())
		}
	}

	if reschedule && s.cfg.EnableBackgroundTracking {
		s.armTrackingTimerLocked()
	}
}

// armTrackingTimerLocked schedules the next periodic commit. Caller holds
// trackingMu.
func (s *Session) armTrackingTimerLocked() {
	if s.trackingTimer != nil {
		s.trackingTimer.Stop()
	}
	s.trackingTimer = time.AfterFunc(s.cfg.TrackingInterval(), func() {
		s.commitListenTime(true)
	})
}

func (s *Session) cancelTrackingTimer() {
	s.trackingMu.Lock()
	if s.trackingTimer != nil {
		s.trackingTimer.Stop()
		s.trackingTimer = nil
	}
	s.trackingMu.Unlock()
}
