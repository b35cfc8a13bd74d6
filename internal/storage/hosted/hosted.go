// Package hosted is the gorm-backed store used when the tracker runs as a
// shared service. It speaks Postgres in production; any other DSN is opened
// as a SQLite file, which keeps tests free of a database server.
package hosted

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pable/wintracker/internal/model"
)

type userRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (userRow) TableName() string { return "users" }

type matchRow struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	UserID       int64     `gorm:"index;not null"`
	OpponentName string    `gorm:"not null"`
	Wins         int       `gorm:"not null;default:0"`
	Losses       int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (matchRow) TableName() string { return "matches" }

// Store is a gorm implementation of the user/match store.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the schema. DSNs starting with
// postgres:// or postgresql:// (or containing host=) use Postgres.
func Open(dsn string) (*Store, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	db, err := gorm.Open(dialector(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(&userRow{}, &matchRow{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	// Names are unique regardless of case; gorm tags cannot express an
	// expression index.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_name_lower ON users (LOWER(name))`).Error; err != nil {
		return nil, fmt.Errorf("create name index: %w", err)
	}
	return &Store{db: db}, nil
}

func dialector(dsn string) gorm.Dialector {
	if isPostgres(dsn) {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateUser(name string) (*model.User, error) {
	row := userRow{Name: name}
	if err := s.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) GetUser(id int64) (*model.User, error) {
	var row userRow
	err := s.db.First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// GetUserByName matches names case-insensitively.
func (s *Store) GetUserByName(name string) (*model.User, error) {
	var row userRow
	err := s.db.Where("LOWER(name) = LOWER(?)", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Store) UserExists(name string) (bool, error) {
	var count int64
	if err := s.db.Model(&userRow{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListUsers() ([]model.User, error) {
	var rows []userRow
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r.toModel())
	}
	return out, nil
}

func (s *Store) ListMatches(userID int64) ([]model.Match, error) {
	var rows []matchRow
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Match, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r.toModel())
	}
	return out, nil
}

func (s *Store) GetMatch(id int64) (*model.Match, error) {
	var row matchRow
	err := s.db.First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Store) CreateMatch(req model.CreateMatchRequest) (*model.Match, error) {
	row := matchRow{
		UserID:       req.UserID,
		OpponentName: req.OpponentName,
		Wins:         req.WinsOrZero(),
		Losses:       req.LossesOrZero(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert match: %w", err)
	}
	return row.toModel(), nil
}

func (s *Store) UpdateMatch(id int64, req model.UpdateMatchRequest) (*model.Match, error) {
	return s.updateMatch(id, map[string]any{"wins": req.Wins, "losses": req.Losses})
}

func (s *Store) RenameOpponent(id int64, opponentName string) (*model.Match, error) {
	return s.updateMatch(id, map[string]any{"opponent_name": opponentName})
}

// updateMatch uses a map so zero counters are written rather than skipped.
func (s *Store) updateMatch(id int64, fields map[string]any) (*model.Match, error) {
	res := s.db.Model(&matchRow{ID: id}).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update match %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("match %d: %w", id, model.ErrNotFound)
	}
	return s.GetMatch(id)
}

func (s *Store) DeleteMatch(id int64) error {
	res := s.db.Delete(&matchRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete match %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("match %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteMatches(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.Where("id IN ?", ids).Delete(&matchRow{}).Error; err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	return nil
}

func (r userRow) toModel() *model.User {
	return &model.User{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

func (r matchRow) toModel() *model.Match {
	return &model.Match{
		ID:           r.ID,
		UserID:       r.UserID,
		OpponentName: r.OpponentName,
		Wins:         r.Wins,
		Losses:       r.Losses,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
