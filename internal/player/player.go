// Package player wraps libVLC media playback behind a small interface the
// playback session drives.
package player

import "fmt"

// State mirrors libVLC's media state values.
type State int

const (
	StateNothingSpecial State = iota
	StateOpening
	StateBuffering
	StatePlaying
	StatePaused
	StateStopped
	StateEnded
	StateError
)

// String returns the status label reported to clients. StateNothingSpecial
// and StateStopped both read as "Stopped".
func (s State) String() string {
	switch s {
	case StateNothingSpecial, StateStopped:
		return "Stopped"
	case StateOpening:
		return "Opening"
	case StateBuffering:
		return "Buffering"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateEnded:
		return "Ended"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown (%d)", int(s))
	}
}

// Event is an asynchronous player notification.
type Event int

const (
	// EventMetaChanged fires when the stream announces new metadata.
	EventMetaChanged Event = iota
	// EventEndReached fires when the stream runs out without a stop request.
	EventEndReached
	// EventEncounteredError fires when playback aborts on a stream error.
	EventEncounteredError
)

// Player is the control surface the playback session drives.
// Implementations must be safe for concurrent use, and their event channel
// must never block the emitting thread.
type Player interface {
	// Play loads the given URL and starts playback.
	Play(url string) error
	// Stop halts playback, keeping the loaded media.
	Stop() error
	// State reports the player's current activity.
	State() State
	// NowPlaying returns the stream's now-playing and title metadata.
	NowPlaying() (track, title string)
	// MediaURL returns the location of the loaded media, or "".
	MediaURL() string
	// SetVolume sets the audio volume in percent.
	SetVolume(volume int) error
	// Volume reports the audio volume in percent.
	Volume() (int, error)
	// Events yields end-of-stream, error, and metadata notifications.
	Events() <-chan Event
	// Release frees the underlying player resources.
	Release()
}
