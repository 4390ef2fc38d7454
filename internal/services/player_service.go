package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anhbaysgalan1/clicker/internal/database"
	"github.com/anhbaysgalan1/clicker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaderboardSize is the number of players returned by a leaderboard read.
const LeaderboardSize = 10

var ErrPlayerNotFound = errors.New("player not found")

// PlayerService persists player progress. It holds only the shared pool and
// is safe for concurrent use.
type PlayerService struct {
	db *gorm.DB
}

func NewPlayerService(db *database.DB) *PlayerService {
	return &PlayerService{db: db.DB}
}

// Leaderboard returns up to limit players ordered by total clicks, highest first.
func (s *PlayerService) Leaderboard(ctx context.Context, limit int) ([]models.Player, error) {
	players := make([]models.Player, 0, limit)
	err := s.db.WithContext(ctx).
		Select(models.ColumnNickname, models.ColumnTotalClicks, models.ColumnClickPower, models.ColumnAutoClickRate).
		Order(models.ColumnTotalClicks + " DESC").
		Limit(limit).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	return players, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	var player models.Player
	err := s.db.WithContext(ctx).Where("player_id = ?", playerID).Take(&player).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to fetch player: %w", err)
	}
	return &player, nil
}

// CreatePlayer inserts a player id and nickname; every other column takes its
// database default. Creating an id that already exists is a no-op and
// reports created=false.
func (s *PlayerService) CreatePlayer(ctx context.Context, playerID, nickname string) (*models.Player, bool, error) {
	var player models.Player
	result := s.db.WithContext(ctx).
		Raw(createPlayerSQL, playerID, nickname).
		Scan(&player)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create player: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, false, nil
	}
	return &player, true, nil
}

// Only the supplied columns are named, so an empty nickname is stored as is.
const createPlayerSQL = `INSERT INTO players (player_id, nickname) VALUES (?, ?)
ON CONFLICT (player_id) DO NOTHING
RETURNING *`

// UpdatePlayer applies the present fields of patch and returns the updated row.
func (s *PlayerService) UpdatePlayer(ctx context.Context, playerID string, patch models.PlayerPatch) (*models.Player, error) {
	var player models.Player
	result := s.db.WithContext(ctx).
		Model(&player).
		Clauses(clause.Returning{}).
		Where("player_id = ?", playerID).
		Updates(patch.Columns())
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update player: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, ErrPlayerNotFound
	}
	return &player, nil
}
