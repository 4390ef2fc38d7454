package handlers

import (
	"context"
	"sort"
	"sync"

	"github.com/anhbaysgalan1/clicker/internal/models"
	"github.com/anhbaysgalan1/clicker/internal/services"
)

// memoryStore is an in-memory PlayerStore that mirrors the schema defaults
// and records how often it was called.
type memoryStore struct {
	mu      sync.Mutex
	players map[string]*models.Player
	order   []string
	calls   int
	err     error
	panicOn string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		players: make(map[string]*models.Player),
	}
}

func (m *memoryStore) enter(op string) error {
	m.calls++
	if m.panicOn == op {
		panic("store exploded")
	}
	return m.err
}

func (m *memoryStore) put(player models.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.players[player.PlayerID]; !exists {
		m.order = append(m.order, player.PlayerID)
	}
	m.players[player.PlayerID] = &player
}

func (m *memoryStore) Leaderboard(ctx context.Context, limit int) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("leaderboard"); err != nil {
		return nil, err
	}

	players := make([]models.Player, 0, len(m.order))
	for _, id := range m.order {
		players = append(players, *m.players[id])
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].TotalClicks > players[j].TotalClicks
	})
	if len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}

func (m *memoryStore) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("get"); err != nil {
		return nil, err
	}

	player, ok := m.players[playerID]
	if !ok {
		return nil, services.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (m *memoryStore) CreatePlayer(ctx context.Context, playerID, nickname string) (*models.Player, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("create"); err != nil {
		return nil, false, err
	}

	if _, exists := m.players[playerID]; exists {
		return nil, false, nil
	}

	player := &models.Player{
		PlayerID:     playerID,
		Nickname:     nickname,
		ClickPower:   1,
		Upgrades:     []byte("[]"),
		Achievements: []byte("[]"),
	}
	m.players[playerID] = player
	m.order = append(m.order, playerID)

	copied := *player
	return &copied, true, nil
}

func (m *memoryStore) UpdatePlayer(ctx context.Context, playerID string, patch models.PlayerPatch) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("update"); err != nil {
		return nil, err
	}

	player, ok := m.players[playerID]
	if !ok {
		return nil, services.ErrPlayerNotFound
	}

	if patch.Nickname != nil {
		player.Nickname = *patch.Nickname
	}
	if patch.TotalClicks != nil {
		player.TotalClicks = *patch.TotalClicks
	}
	if patch.ClickPower != nil {
		player.ClickPower = *patch.ClickPower
	}
	if patch.AutoClickRate != nil {
		player.AutoClickRate = *patch.AutoClickRate
	}
	if patch.Upgrades != nil {
		player.Upgrades = patch.Upgrades
	}
	if patch.Achievements != nil {
		player.Achievements = patch.Achievements
	}

	copied := *player
	return &copied, nil
}
