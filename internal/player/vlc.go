package player

import (
	"fmt"
	"sync"

	vlc "github.com/adrg/libvlc-go/v3"
	"github.com/rs/zerolog/log"

	"radio-browser-mcp/internal/metrics"
)

const eventQueueSize = 16

// VLCPlayer drives a libVLC media player. libVLC invokes callbacks on its
// own threads, so callbacks only enqueue events; every control call runs on
// a caller goroutine under the mutex.
type VLCPlayer struct {
	mu     sync.Mutex
	player *vlc.Player
	media  *vlc.Media

	playerManager *vlc.EventManager
	playerEvents  []vlc.EventID
	mediaManager  *vlc.EventManager
	mediaEvents   []vlc.EventID

	events chan Event
}

// NewVLCPlayer initializes libVLC and creates an idle player.
func NewVLCPlayer() (*VLCPlayer, error) {
	if err := vlc.Init("--no-video", "--quiet"); err != nil {
		return nil, fmt.Errorf("failed to initialize libVLC: %w", err)
	}

	inner, err := vlc.NewPlayer()
	if err != nil {
		vlc.Release()
		return nil, fmt.Errorf("failed to create media player: %w", err)
	}

	p := &VLCPlayer{
		player: inner,
		events: make(chan Event, eventQueueSize),
	}

	manager, err := inner.EventManager()
	if err != nil {
		inner.Release()
		vlc.Release()
		return nil, fmt.Errorf("failed to get player event manager: %w", err)
	}
	p.playerManager = manager

	for _, eventType := range []vlc.Event{vlc.MediaPlayerEndReached, vlc.MediaPlayerEncounteredError} {
		id, err := manager.Attach(eventType, p.onPlayerEvent, nil)
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("failed to attach player event: %w", err)
		}
		p.playerEvents = append(p.playerEvents, id)
	}

	return p, nil
}

// Callbacks run on libVLC threads: they must not call back into libVLC and
// must never block.
func (p *VLCPlayer) onPlayerEvent(event vlc.Event, _ interface{}) {
	switch event {
	case vlc.MediaPlayerEndReached:
		p.enqueue(EventEndReached)
	case vlc.MediaPlayerEncounteredError:
		p.enqueue(EventEncounteredError)
	}
}

func (p *VLCPlayer) onMetaChanged(_ vlc.Event, _ interface{}) {
	p.enqueue(EventMetaChanged)
}

func (p *VLCPlayer) enqueue(ev Event) {
	select {
	case p.events <- ev:
	default:
		metrics.DroppedPlayerEvents.Inc()
	}
}

// Play loads url into the player and starts playback.
func (p *VLCPlayer) Play(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	media, err := vlc.NewMediaFromURL(url)
	if err != nil {
		return fmt.Errorf("failed to load media %s: %w", url, err)
	}

	if err := p.player.SetMedia(media); err != nil {
		media.Release()
		return fmt.Errorf("failed to set media: %w", err)
	}

	p.detachMediaEvents()
	if p.media != nil {
		p.media.Release()
	}
	p.media = media
	p.attachMediaEvents(media)

	if err := p.player.Play(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	return nil
}

// Stop halts playback. The loaded media stays attached so status queries
// can still report its URL.
func (p *VLCPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player.Stop()
}

// State reports the player's current media state.
func (p *VLCPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, err := p.player.MediaState()
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read media state")
		return StateNothingSpecial
	}
	return State(int(state))
}

// NowPlaying returns the stream's now-playing and title metadata.
func (p *VLCPlayer) NowPlaying() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.media == nil {
		return "", ""
	}
	track, err := p.media.Meta(vlc.MediaNowPlaying)
	if err != nil {
		track = ""
	}
	title, err := p.media.Meta(vlc.MediaTitle)
	if err != nil {
		title = ""
	}
	return track, title
}

// MediaURL returns the location of the loaded media, or "".
func (p *VLCPlayer) MediaURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.media == nil {
		return ""
	}
	location, err := p.media.Location()
	if err != nil {
		return ""
	}
	return location
}

// SetVolume sets the audio volume in percent.
func (p *VLCPlayer) SetVolume(volume int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player.SetVolume(volume)
}

// Volume reports the audio volume in percent.
func (p *VLCPlayer) Volume() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player.Volume()
}

// Events yields stream-lost and track-changed notifications.
func (p *VLCPlayer) Events() <-chan Event {
	return p.events
}

// Release frees the player, its media, and the libVLC instance.
func (p *VLCPlayer) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playerManager != nil && len(p.playerEvents) > 0 {
		p.playerManager.Detach(p.playerEvents...)
	}
	p.playerManager = nil
	p.playerEvents = nil

	p.detachMediaEvents()
	if p.media != nil {
		p.media.Release()
		p.media = nil
	}
	if p.player != nil {
		_ = p.player.Stop()
		p.player.Release()
		p.player = nil
	}
	vlc.Release()
}

func (p *VLCPlayer) attachMediaEvents(media *vlc.Media) {
	manager, err := media.EventManager()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get media event manager, track updates disabled")
		return
	}
	id, err := manager.Attach(vlc.MediaMetaChanged, p.onMetaChanged, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to attach media meta listener")
		return
	}
	p.mediaManager = manager
	p.mediaEvents = []vlc.EventID{id}
}

func (p *VLCPlayer) detachMediaEvents() {
	if p.mediaManager != nil && len(p.mediaEvents) > 0 {
		p.mediaManager.Detach(p.mediaEvents...)
	}
	p.mediaManager = nil
	p.mediaEvents = nil
}
