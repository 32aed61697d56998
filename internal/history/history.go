// Package history aggregates the listening statistics recorded by the store.
package history

import (
	"math"
	"sort"

	"radio-browser-mcp/internal/station"
	"radio-browser-mcp/internal/store"
)

const (
	minTagLimit = 1
	maxTagLimit = 1000
)

// TagScore ranks a single tag by the total listening time spent on
// stations carrying it.
type TagScore struct {
	Tag           string  `json:"tag"`
	Score         float64 `json:"score"`
	StationsCount int     `json:"stations_count"`
}

// TagMeta describes how much of the listening history contributed to a
// TopTags ranking. Stations without cached directory metadata cannot be
// attributed to any tag and are counted as missing.
type TagMeta struct {
	Limit                  int `json:"limit"`
	StationsConsidered     int `json:"stations_considered"`
	StationsWithCachedTags int `json:"stations_with_cached_tags"`
	StationsMissingTags    int `json:"stations_missing_tags"`
}

// TopTags scores every tag across the listened stations: each station adds
// its full listen duration to every one of its tags. Stations with no
// recorded listening time are ignored. The result is sorted by score
// descending, ties broken alphabetically, and truncated to limit.
func TopTags(rows []store.TaggedHistory, limit int) ([]TagScore, TagMeta) {
	limit = clampTagLimit(limit)

	scores := make(map[string]float64)
	counts := make(map[string]int)
	considered := 0
	withTags := 0

	for _, row := range rows {
		if row.ListenDuration <= 0 {
			continue
		}
		considered++

		tags := station.ParseTags(row.TagsRaw)
		if len(tags) == 0 {
			continue
		}
		withTags++

		for _, tag := range tags {
			scores[tag] += row.ListenDuration
			counts[tag]++
		}
	}

	ranked := make([]TagScore, 0, len(scores))
	for tag, score := range scores {
		ranked = append(ranked, TagScore{
			Tag:           tag,
			Score:         score,
			StationsCount: counts[tag],
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Tag < ranked[j].Tag
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Score = math.Round(ranked[i].Score*100) / 100
	}

	meta := TagMeta{
		Limit:                  limit,
		StationsConsidered:     considered,
		StationsWithCachedTags: withTags,
		StationsMissingTags:    max(0, considered-withTags),
	}
	return ranked, meta
}

func clampTagLimit(limit int) int {
	if limit < minTagLimit {
		return minTagLimit
	}
	if limit > maxTagLimit {
		return maxTagLimit
	}
	return limit
}
