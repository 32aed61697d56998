// Package directory provides discovery of and failover across the
// Radio-Browser server pool.
package directory

import (
	"encoding/json"
	"net"
	"sort"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	discoveryURL  = "https://de1.api.radio-browser.info/json/servers"
	mirrorDNSName = "all.api.radio-browser.info"
)

// fallbackMirrors are well-known servers merged into every resolved list so
// the client still works when both discovery paths fail.
var fallbackMirrors = []string{
	"de1.api.radio-browser.info",
	"nl1.api.radio-browser.info",
	"at1.api.radio-browser.info",
	"fr1.api.radio-browser.info",
	"us1.api.radio-browser.info",
	"ca1.api.radio-browser.info",
}

// MirrorResolver discovers the Radio-Browser server pool and caches the
// result for the lifetime of the process.
type MirrorResolver struct {
	mu     sync.Mutex
	cached []string

	client       *resty.Client
	discoveryURL string
	lookupIP     func(host string) ([]net.IP, error)
	lookupAddr   func(addr string) ([]string, error)
}

// NewMirrorResolver creates a resolver backed by the public discovery
// endpoint and the system DNS resolver.
func NewMirrorResolver() *MirrorResolver {
	return &MirrorResolver{
		client: resty.New().
			SetTimeout(requestTimeout).
			SetHeader("User-Agent", UserAgent),
		discoveryURL: discoveryURL,
		lookupIP:     net.LookupIP,
		lookupAddr:   net.LookupAddr,
	}
}

// Resolve returns the sorted, deduplicated mirror base URLs, each prefixed
// with "https://". The list is computed once and reused until Invalidate.
func (r *MirrorResolver) Resolve() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return r.cached
	}

	hosts := r.discoverHosts()
	if len(hosts) == 0 {
		hosts = r.reverseLookupHosts()
	}
	hosts = append(hosts, fallbackMirrors...)

	seen := make(map[string]bool, len(hosts))
	unique := make([]string, 0, len(hosts))
	for _, host := range hosts {
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		unique = append(unique, host)
	}
	sort.Strings(unique)

	bases := make([]string, len(unique))
	for i, host := range unique {
		bases[i] = "https://" + host
	}

	r.cached = bases
	log.Debug().Int("count", len(bases)).Msg("Resolved Radio-Browser mirrors")
	return bases
}

// Invalidate drops the cached mirror list so the next Resolve rediscovers it.
func (r *MirrorResolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

// StaticMirrors returns a resolver pinned to the given base URLs, skipping
// discovery entirely.
func StaticMirrors(bases ...string) *MirrorResolver {
	r := NewMirrorResolver()
	r.cached = append([]string(nil), bases...)
	return r
}

// discoverHosts asks a known server for the current pool members.
func (r *MirrorResolver) discoverHosts() []string {
	resp, err := r.client.R().Get(r.discoveryURL)
	if err != nil {
		log.Warn().Err(err).Msg("Mirror discovery request failed")
		return nil
	}
	if !resp.IsSuccess() {
		log.Warn().Int("status", resp.StatusCode()).Msg("Mirror discovery returned non-success status")
		return nil
	}

	var servers []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Body(), &servers); err != nil {
		log.Warn().Err(err).Msg("Failed to parse mirror discovery response")
		return nil
	}

	hosts := make([]string, 0, len(servers))
	for _, server := range servers {
		if server.Name != "" {
			hosts = append(hosts, server.Name)
		}
	}
	return hosts
}

// reverseLookupHosts resolves the pool's round-robin DNS name and maps each
// address back to a server name. Individual address failures are skipped.
func (r *MirrorResolver) reverseLookupHosts() []string {
	ips, err := r.lookupIP(mirrorDNSName)
	if err != nil {
		log.Warn().Err(err).Msg("Mirror DNS lookup failed")
		return nil
	}

	var hosts []string
	for _, ip := range ips {
		names, err := r.lookupAddr(ip.String())
		if err != nil {
			log.Debug().Err(err).Str("ip", ip.String()).Msg("Reverse lookup failed, skipping address")
			continue
		}
		for _, name := range names {
			hosts = append(hosts, strings.TrimSuffix(name, "."))
		}
	}
	return hosts
}
