package directory

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"radio-browser-mcp/internal/metrics"
)

// UserAgent identifies this client to Radio-Browser servers and stream hosts.
const UserAgent = "RadioBrowserMCP/1.0.0"

const requestTimeout = 5 * time.Second

// MirrorsExhaustedError reports that every mirror failed for one request.
type MirrorsExhaustedError struct {
	Failures []string // deduplicated per-mirror failure messages
}

func (e *MirrorsExhaustedError) Error() string {
	return "All Radio-Browser mirrors failed: " + strings.Join(e.Failures, " | ")
}

// Client sends requests to the Radio-Browser API, trying mirrors in random
// order until one succeeds. Each mirror is tried at most once per request.
type Client struct {
	mirrors *MirrorResolver
	client  *resty.Client
	shuffle func([]string)
}

// NewClient creates a failover client over the given mirror resolver.
func NewClient(mirrors *MirrorResolver) *Client {
	return &Client{
		mirrors: mirrors,
		client: resty.New().
			SetTimeout(requestTimeout).
			SetHeader("User-Agent", UserAgent).
			SetHeader("Content-Type", "application/json"),
		shuffle: func(bases []string) {
			rand.Shuffle(len(bases), func(i, j int) {
				bases[i], bases[j] = bases[j], bases[i]
			})
		},
	}
}

// Get fetches path from the first mirror that answers successfully and
// decodes the JSON response into out.
func (c *Client) Get(path string, out interface{}) error {
	return c.do(resty.MethodGet, path, nil, out)
}

// Post sends a JSON body to path on the first mirror that answers
// successfully and decodes the JSON response into out.
func (c *Client) Post(path string, body, out interface{}) error {
	return c.do(resty.MethodPost, path, body, out)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	bases := c.mirrors.Resolve()

	// Shuffle a copy so the cached list keeps its sorted order.
	order := make([]string, len(bases))
	copy(order, bases)
	c.shuffle(order)

	var failures []string
	for _, base := range order {
		req := c.client.R()
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, base+path)
		if err != nil {
			metrics.MirrorFailures.WithLabelValues(base).Inc()
			log.Debug().Err(err).Str("mirror", base).Msg("Mirror request failed")
			failures = append(failures, base+": "+truncateCause(err))
			continue
		}
		if !resp.IsSuccess() {
			metrics.MirrorFailures.WithLabelValues(base).Inc()
			log.Debug().Int("status", resp.StatusCode()).Str("mirror", base).Msg("Mirror returned non-success status")
			failures = append(failures, fmt.Sprintf("%s: HTTP %d", base, resp.StatusCode()))
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				metrics.DirectoryRequests.WithLabelValues("failure").Inc()
				return fmt.Errorf("failed to parse response from %s: %w", base, err)
			}
		}
		metrics.DirectoryRequests.WithLabelValues("success").Inc()
		return nil
	}

	metrics.DirectoryRequests.WithLabelValues("failure").Inc()
	return &MirrorsExhaustedError{Failures: dedupe(failures)}
}

// truncateCause keeps the part of the error after the last "] ", dropping
// the nested operation prefixes wrapped around dial and DNS failures.
func truncateCause(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, "] "); idx != -1 {
		msg = msg[idx+2:]
	}
	return msg
}

func dedupe(messages []string) []string {
	seen := make(map[string]bool, len(messages))
	unique := make([]string, 0, len(messages))
	for _, msg := range messages {
		if seen[msg] {
			continue
		}
		seen[msg] = true
		unique = append(unique, msg)
	}
	return unique
}
