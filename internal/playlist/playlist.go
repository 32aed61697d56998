// Package playlist resolves .pls and .m3u playlists to their first stream
// entry so the player always receives a direct stream URL.
package playlist

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"radio-browser-mcp/internal/directory"
)

const (
	fetchTimeout = 5 * time.Second
	chunkSize    = 8192
)

// Resolver fetches playlist files with a hard byte cap and extracts the
// stream URL they point at.
type Resolver struct {
	client   *resty.Client
	maxBytes int64
}

// NewResolver creates a resolver that reads at most maxBytes of any
// playlist before giving up on the remainder.
func NewResolver(maxBytes int64) *Resolver {
	return &Resolver{
		client: resty.New().
			SetTimeout(fetchTimeout).
			SetHeader("User-Agent", directory.UserAgent).
			SetDoNotParseResponse(true),
		maxBytes: maxBytes,
	}
}

// Resolve follows .pls and .m3u playlists to their first stream entry.
// Other URLs pass through unchanged, including .m3u8: the player handles
// adaptive playlists natively. Failures are non-fatal; the original URL is
// returned alongside the error so playback can still be attempted.
func (r *Resolver) Resolve(rawURL string) (string, error) {
	lower := strings.ToLower(rawURL)
	if !strings.HasSuffix(lower, ".pls") && !strings.HasSuffix(lower, ".m3u") {
		return rawURL, nil
	}

	content, err := r.fetch(rawURL)
	if err != nil {
		return rawURL, fmt.Errorf("failed to resolve playlist %s: %w", rawURL, err)
	}

	if resolved := ExtractStreamURL(rawURL, content); resolved != "" {
		return resolved, nil
	}
	return rawURL, nil
}

// fetch downloads the playlist in chunks, dropping any chunk that would
// push the total past the byte cap, and strips invalid UTF-8.
func (r *Resolver) fetch(rawURL string) (string, error) {
	resp, err := r.client.R().Get(rawURL)
	if err != nil {
		return "", err
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return "", fmt.Errorf("playlist fetch returned status %d", resp.StatusCode())
	}

	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	var total int64
	for {
		n, err := body.Read(chunk)
		if n > 0 {
			total += int64(n)
			if total > r.maxBytes {
				break
			}
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	content := buf.String()
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}
	return content, nil
}

// ExtractStreamURL parses playlist content and returns its first stream
// entry, or "" when none is found. Relative entries are resolved against
// the playlist's own URL.
func ExtractStreamURL(playlistURL, content string) string {
	lines := strings.Split(content, "\n")

	if strings.HasSuffix(strings.ToLower(playlistURL), ".pls") {
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" || !strings.Contains(line, "=") {
				continue
			}
			key, value, _ := strings.Cut(line, "=")
			value = strings.TrimSpace(value)
			if strings.HasPrefix(strings.ToLower(key), "file") && value != "" {
				return absoluteOrJoin(playlistURL, value)
			}
		}
		return ""
	}

	// .m3u: the first non-comment, non-empty line is the stream URI.
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return absoluteOrJoin(playlistURL, line)
	}
	return ""
}

func absoluteOrJoin(baseURL, candidate string) string {
	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		return candidate
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return candidate
	}
	ref, err := url.Parse(candidate)
	if err != nil {
		return candidate
	}
	return base.ResolveReference(ref).String()
}
