// Package store persists listening history, favorites, and cached station
// metadata in a local SQLite database.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"radio-browser-mcp/internal/station"
)

// HistoryEntry is one station's cumulative listening record. It is also the
// row shape returned for recent and top station queries.
type HistoryEntry struct {
	URL            string  `gorm:"column:url;primaryKey" json:"url"`
	Name           string  `gorm:"column:name" json:"name"`
	StationUUID    string  `gorm:"column:stationuuid" json:"stationuuid"`
	ListenDuration float64 `gorm:"column:listen_duration" json:"listen_duration"`
	LastListenedAt float64 `gorm:"column:last_listened_at" json:"last_listened_at"`
}

func (HistoryEntry) TableName() string { return "listening_history" }

// Favorite is a bookmarked station.
type Favorite struct {
	URL         string  `gorm:"column:url;primaryKey" json:"url"`
	Name        string  `gorm:"column:name" json:"name"`
	StationUUID string  `gorm:"column:stationuuid" json:"stationuuid"`
	AddedAt     float64 `gorm:"column:created_at" json:"created_at"`
}

func (Favorite) TableName() string { return "favorites" }

// StationMetadata caches directory fields for stations seen in search
// results, keyed by their UUID.
type StationMetadata struct {
	StationUUID string `gorm:"column:stationuuid;primaryKey" json:"stationuuid"`
	Name        string `gorm:"column:name" json:"name"`
	URL         string `gorm:"column:url" json:"url"`
	URLResolved string `gorm:"column:url_resolved" json:"url_resolved"`
	Tags        string `gorm:"column:tags" json:"tags"`
}

func (StationMetadata) TableName() string { return "station_metadata" }

// FavoriteRow is a favorite joined with its listening stats.
type FavoriteRow struct {
	URL            string  `gorm:"column:url" json:"url"`
	Name           string  `gorm:"column:name" json:"name"`
	StationUUID    string  `gorm:"column:stationuuid" json:"stationuuid"`
	CreatedAt      float64 `gorm:"column:created_at" json:"created_at"`
	LastListenedAt float64 `gorm:"column:last_listened_at" json:"last_listened_at"`
	ListenDuration float64 `gorm:"column:listen_duration" json:"listen_duration"`
}

// TaggedHistory pairs a history row with the cached tag string that best
// matches it.
type TaggedHistory struct {
	URL            string
	ListenDuration float64
	TagsRaw        string
}

// Store wraps the SQLite database holding all local state.
type Store struct {
	db *gorm.DB
}

// Open opens the database at path, creating the file and parent directory
// when missing, and migrates the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&HistoryEntry{}, &Favorite{}, &StationMetadata{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AddListenDuration accumulates listening time for url and stamps the
// moment of listening. Empty names and UUIDs never overwrite known values.
func (s *Store) AddListenDuration(url string, seconds float64, name, stationUUID string) error {
	entry := HistoryEntry{
		URL:            url,
		Name:           name,
		StationUUID:    stationUUID,
		ListenDuration: seconds,
		LastListenedAt: nowUnix(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "url"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"listen_duration":  gorm.Expr("listen_duration + excluded.listen_duration"),
			"last_listened_at": gorm.Expr("excluded.last_listened_at"),
			"name":             gorm.Expr("CASE WHEN excluded.name != '' THEN excluded.name ELSE name END"),
			"stationuuid":      gorm.Expr("CASE WHEN excluded.stationuuid != '' THEN excluded.stationuuid ELSE stationuuid END"),
		}),
	}).Create(&entry).Error
}

// UpsertFavorite bookmarks url. On re-adding, empty names and UUIDs keep
// the stored values and the original created_at stands.
func (s *Store) UpsertFavorite(url, name, stationUUID string) error {
	fav := Favorite{
		URL:         url,
		Name:        name,
		StationUUID: stationUUID,
		AddedAt:     nowUnix(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "url"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":        gorm.Expr("CASE WHEN excluded.name != '' THEN excluded.name ELSE name END"),
			"stationuuid": gorm.Expr("CASE WHEN excluded.stationuuid != '' THEN excluded.stationuuid ELSE stationuuid END"),
		}),
	}).Create(&fav).Error
}

// DeleteFavorite removes the bookmark for url. Unknown URLs are a no-op.
func (s *Store) DeleteFavorite(url string) error {
	return s.db.Where("url = ?", url).Delete(&Favorite{}).Error
}

// ListFavorites returns all favorites with their listening stats, ordered
// by name.
func (s *Store) ListFavorites() ([]FavoriteRow, error) {
	rows := make([]FavoriteRow, 0)
	err := s.db.Model(&Favorite{}).
		Select("favorites.url, favorites.name, favorites.stationuuid, favorites.created_at, " +
			"COALESCE(listening_history.last_listened_at, 0) AS last_listened_at, " +
			"COALESCE(listening_history.listen_duration, 0) AS listen_duration").
		Joins("LEFT JOIN listening_history ON listening_history.url = favorites.url").
		Order("favorites.name ASC").
		Scan(&rows).Error
	return rows, err
}

// ListRecent returns the most recently listened stations, newest first.
func (s *Store) ListRecent(limit int) ([]HistoryEntry, error) {
	entries := make([]HistoryEntry, 0)
	err := s.db.
		Where("last_listened_at > 0").
		Order("last_listened_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ListTopByDuration returns stations by cumulative listening time,
// longest first.
func (s *Store) ListTopByDuration(limit int) ([]HistoryEntry, error) {
	entries := make([]HistoryEntry, 0)
	err := s.db.
		Where("listen_duration > 0").
		Order("listen_duration DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// CacheStations refreshes the metadata cache from directory search results.
// Stations without a UUID are skipped.
func (s *Store) CacheStations(stations []station.Station) error {
	rows := make([]StationMetadata, 0, len(stations))
	for _, st := range stations {
		if st.StationUUID == "" {
			continue
		}
		rows = append(rows, StationMetadata{
			StationUUID: st.StationUUID,
			Name:        st.Name,
			URL:         st.URL,
			URLResolved: st.URLResolved,
			Tags:        st.Tags,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stationuuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "url", "url_resolved", "tags"}),
	}).Create(&rows).Error
}

// StationUUIDByURL looks up a cached station UUID by registered URL first,
// then by resolved URL. Returns "" when nothing matches.
func (s *Store) StationUUIDByURL(url string) (string, error) {
	if url == "" {
		return "", nil
	}

	var meta StationMetadata
	err := s.db.Where("url = ?", url).Take(&meta).Error
	if err == nil {
		return meta.StationUUID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	err = s.db.Where("url_resolved = ?", url).Take(&meta).Error
	if err == nil {
		return meta.StationUUID, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return "", err
}

// HistoryWithTags pairs every listened-to history row with its cached tags,
// matching by station UUID first, then by registered URL, then by resolved
// URL. Rows without accumulated listen time are skipped.
func (s *Store) HistoryWithTags() ([]TaggedHistory, error) {
	var entries []HistoryEntry
	if err := s.db.Where("listen_duration > 0").Find(&entries).Error; err != nil {
		return nil, err
	}
	var metas []StationMetadata
	if err := s.db.Find(&metas).Error; err != nil {
		return nil, err
	}

	byUUID := make(map[string]string, len(metas))
	byURL := make(map[string]string, len(metas))
	byResolved := make(map[string]string, len(metas))
	for _, meta := range metas {
		if meta.StationUUID != "" {
			byUUID[meta.StationUUID] = meta.Tags
		}
		if meta.URL != "" {
			byURL[meta.URL] = meta.Tags
		}
		if meta.URLResolved != "" {
			byResolved[meta.URLResolved] = meta.Tags
		}
	}

	rows := make([]TaggedHistory, 0, len(entries))
	for _, entry := range entries {
		tags, ok := "", false
		if entry.StationUUID != "" {
			tags, ok = byUUID[entry.StationUUID]
		}
		if !ok {
			tags, ok = byURL[entry.URL]
		}
		if !ok {
			tags = byResolved[entry.URL]
		}
		rows = append(rows, TaggedHistory{
			URL:            entry.URL,
			ListenDuration: entry.ListenDuration,
			TagsRaw:        tags,
		})
	}
	return rows, nil
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
