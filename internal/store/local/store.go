// Package local implements the embedded offline store: two collections
// (matches, seasons) keyed by record id, each row holding the JSON-encoded
// record. Collection and key names are part of the persisted format.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"pool-tracker-service/internal/domain"
	"pool-tracker-service/internal/logging"
)

type matchRecord struct {
	ID      string `gorm:"primaryKey"`
	Payload []byte
}

func (matchRecord) TableName() string { return "matches" }

type seasonRecord struct {
	ID      string `gorm:"primaryKey"`
	Payload []byte
}

func (seasonRecord) TableName() string { return "seasons" }

// Store is the embedded SQLite-backed record store. A failed open degrades
// reads to empty results while writes keep returning the open error, so data
// is never silently dropped.
type Store struct {
	db      *gorm.DB
	openErr error
	logger  *slog.Logger
}

// Open initializes the store at the given path. It always returns a usable
// Store; check Err or any write's error for open failures.
func Open(path string, logger *slog.Logger) *Store {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		logging.Warn(logger, "local store unavailable, reads degrade to empty", "error", err)
		return &Store{openErr: fmt.Errorf("open local store: %w", err), logger: logger}
	}

	if err := db.AutoMigrate(&matchRecord{}, &seasonRecord{}); err != nil {
		logging.Warn(logger, "local store migration failed", "error", err)
		return &Store{openErr: fmt.Errorf("migrate local store: %w", err), logger: logger}
	}

	return &Store{db: db, logger: logger}
}

// Err returns the open failure, if any.
func (s *Store) Err() error {
	return s.openErr
}

// Matches returns every stored match in unspecified order. Internal failures
// degrade to an empty slice; this read never errors.
func (s *Store) Matches(ctx context.Context) []domain.Match {
	if s.openErr != nil {
		return []domain.Match{}
	}

	var rows []matchRecord
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		logging.Warn(s.logger, "local match scan failed", "error", err)
		return []domain.Match{}
	}

	out := make([]domain.Match, 0, len(rows))
	for _, row := range rows {
		var m domain.Match
		if err := json.Unmarshal(row.Payload, &m); err != nil {
			logging.Warn(s.logger, "skipping undecodable match row", logging.FieldRecordID, row.ID, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out
}

// Seasons returns every stored season in unspecified order, degrading to
// empty on internal failure.
func (s *Store) Seasons(ctx context.Context) []domain.Season {
	if s.openErr != nil {
		return []domain.Season{}
	}

	var rows []seasonRecord
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		logging.Warn(s.logger, "local season scan failed", "error", err)
		return []domain.Season{}
	}

	out := make([]domain.Season, 0, len(rows))
	for _, row := range rows {
		var season domain.Season
		if err := json.Unmarshal(row.Payload, &season); err != nil {
			logging.Warn(s.logger, "skipping undecodable season row", logging.FieldRecordID, row.ID, "error", err)
			continue
		}
		out = append(out, season)
	}
	return out
}

// PutMatch inserts or replaces a match by id; last write wins.
func (s *Store) PutMatch(ctx context.Context, m domain.Match) error {
	if s.openErr != nil {
		return s.openErr
	}
	if m.ID == "" {
		return errors.New("match id required")
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode match %s: %w", m.ID, err)
	}
	row := matchRecord{ID: m.ID, Payload: payload}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("put match %s: %w", m.ID, err)
	}
	return nil
}

// PutSeason inserts or replaces a season by id; last write wins.
func (s *Store) PutSeason(ctx context.Context, season domain.Season) error {
	if s.openErr != nil {
		return s.openErr
	}
	if season.ID == "" {
		return errors.New("season id required")
	}

	payload, err := json.Marshal(season)
	if err != nil {
		return fmt.Errorf("encode season %s: %w", season.ID, err)
	}
	row := seasonRecord{ID: season.ID, Payload: payload}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("put season %s: %w", season.ID, err)
	}
	return nil
}

// DeleteMatch removes a match; deleting an absent key is not an error.
func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	if s.openErr != nil {
		return s.openErr
	}
	if err := s.db.WithContext(ctx).Delete(&matchRecord{ID: id}).Error; err != nil {
		return fmt.Errorf("delete match %s: %w", id, err)
	}
	return nil
}

// DeleteSeason removes a season; deleting an absent key is not an error.
func (s *Store) DeleteSeason(ctx context.Context, id string) error {
	if s.openErr != nil {
		return s.openErr
	}
	if err := s.db.WithContext(ctx).Delete(&seasonRecord{ID: id}).Error; err != nil {
		return fmt.Errorf("delete season %s: %w", id, err)
	}
	return nil
}

// ClearMatches empties the match collection in a single statement.
func (s *Store) ClearMatches(ctx context.Context) error {
	if s.openErr != nil {
		return s.openErr
	}
	if err := s.db.WithContext(ctx).Exec("DELETE FROM matches").Error; err != nil {
		return fmt.Errorf("clear matches: %w", err)
	}
	return nil
}

// ClearSeasons empties the season collection in a single statement.
func (s *Store) ClearSeasons(ctx context.Context) error {
	if s.openErr != nil {
		return s.openErr
	}
	if err := s.db.WithContext(ctx).Exec("DELETE FROM seasons").Error; err != nil {
		return fmt.Errorf("clear seasons: %w", err)
	}
	return nil
}
