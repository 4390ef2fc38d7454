package models

import (
	"bytes"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultNickname is stored when a player is created without a nickname.
const DefaultNickname = "Аноним"

// Player is one row of the players table. PlayerID is supplied by the client
// and never reassigned.
type Player struct {
	PlayerID      string         `json:"playerId" gorm:"column:player_id;primaryKey;size:255"`
	Nickname      string         `json:"nickname" gorm:"not null;size:100;default:'Аноним'"`
	TotalClicks   int64          `json:"totalClicks" gorm:"not null;default:0"`
	ClickPower    int64          `json:"clickPower" gorm:"not null;default:1"`
	AutoClickRate float64        `json:"autoClickRate" gorm:"not null;default:0"`
	Upgrades      datatypes.JSON `json:"upgrades" gorm:"type:jsonb;default:'[]'"`
	Achievements  datatypes.JSON `json:"achievements" gorm:"type:jsonb;default:'[]'"`
	UpdatedAt     time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Player) TableName() string {
	return "players"
}

// Column names touched by partial updates.
const (
	ColumnNickname      = "nickname"
	ColumnTotalClicks   = "total_clicks"
	ColumnClickPower    = "click_power"
	ColumnAutoClickRate = "auto_click_rate"
	ColumnUpgrades      = "upgrades"
	ColumnAchievements  = "achievements"
	ColumnUpdatedAt     = "updated_at"
)

// PlayerPatch holds one optional value per updatable column. A nil field is
// left untouched by the update.
type PlayerPatch struct {
	Nickname      *string
	TotalClicks   *int64
	ClickPower    *int64
	AutoClickRate *float64
	Upgrades      datatypes.JSON
	Achievements  datatypes.JSON
}

// Columns returns the column/value pairs for an UPDATE. updated_at is always
// present and resolved by the database clock.
func (p PlayerPatch) Columns() map[string]interface{} {
	columns := map[string]interface{}{
		ColumnUpdatedAt: gorm.Expr("CURRENT_TIMESTAMP"),
	}
	if p.Nickname != nil {
		columns[ColumnNickname] = *p.Nickname
	}
	if p.TotalClicks != nil {
		columns[ColumnTotalClicks] = *p.TotalClicks
	}
	if p.ClickPower != nil {
		columns[ColumnClickPower] = *p.ClickPower
	}
	if p.AutoClickRate != nil {
		columns[ColumnAutoClickRate] = *p.AutoClickRate
	}
	if p.Upgrades != nil {
		columns[ColumnUpgrades] = p.Upgrades
	}
	if p.Achievements != nil {
		columns[ColumnAchievements] = p.Achievements
	}
	return columns
}

// IsEmpty reports whether the patch only refreshes updated_at.
func (p PlayerPatch) IsEmpty() bool {
	return p.Nickname == nil && p.TotalClicks == nil && p.ClickPower == nil &&
		p.AutoClickRate == nil && p.Upgrades == nil && p.Achievements == nil
}

// LeaderboardEntry is the public projection of a ranked player. A successful
// create returns the same shape, without upgrades or achievements.
type LeaderboardEntry struct {
	Nickname      string  `json:"nickname"`
	TotalClicks   int64   `json:"totalClicks"`
	ClickPower    int64   `json:"clickPower"`
	AutoClickRate float64 `json:"autoClickRate"`
}

type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// PlayerView is the full projection returned by player reads and updates.
type PlayerView struct {
	Nickname      string          `json:"nickname"`
	TotalClicks   int64           `json:"totalClicks"`
	ClickPower    int64           `json:"clickPower"`
	AutoClickRate float64         `json:"autoClickRate"`
	Upgrades      json.RawMessage `json:"upgrades"`
	Achievements  json.RawMessage `json:"achievements"`
}

func (p *Player) LeaderboardEntry() LeaderboardEntry {
	return LeaderboardEntry{
		Nickname:      p.Nickname,
		TotalClicks:   p.TotalClicks,
		ClickPower:    p.ClickPower,
		AutoClickRate: p.AutoClickRate,
	}
}

func (p *Player) View() PlayerView {
	return PlayerView{
		Nickname:      p.Nickname,
		TotalClicks:   p.TotalClicks,
		ClickPower:    p.ClickPower,
		AutoClickRate: p.AutoClickRate,
		Upgrades:      NormalizeList(p.Upgrades),
		Achievements:  NormalizeList(p.Achievements),
	}
}

var emptyList = json.RawMessage("[]")

// NormalizeList returns the stored JSON unchanged unless it is missing or a
// falsy value (null, false, 0, "", [] or {}), in which case it returns [].
func NormalizeList(raw datatypes.JSON) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return emptyList
	}

	var value interface{}
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return emptyList
	}

	switch v := value.(type) {
	case nil:
		return emptyList
	case bool:
		if !v {
			return emptyList
		}
	case float64:
		if v == 0 {
			return emptyList
		}
	case string:
		if v == "" {
			return emptyList
		}
	case []interface{}:
		if len(v) == 0 {
			return emptyList
		}
	case map[string]interface{}:
		if len(v) == 0 {
			return emptyList
		}
	}
	return json.RawMessage(trimmed)
}
