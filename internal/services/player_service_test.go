package services

import (
	"context"
	"os"
	"testing"

	"github.com/anhbaysgalan1/clicker/internal/config"
	"github.com/anhbaysgalan1/clicker/internal/database"
	"github.com/anhbaysgalan1/clicker/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"
)

// PlayerServiceTestSuite runs against a real Postgres database named by
// TEST_DATABASE_URL.
type PlayerServiceTestSuite struct {
	suite.Suite
	db      *database.DB
	service *PlayerService
	ctx     context.Context
}

func TestPlayerServiceTestSuite(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	t.Setenv("DATABASE_URL", dsn)
	t.Setenv("ENVIRONMENT", "test")

	suite.Run(t, new(PlayerServiceTestSuite))
}

func (suite *PlayerServiceTestSuite) SetupSuite() {
	cfg := config.Load()

	db, err := database.NewConnection(cfg)
	require.NoError(suite.T(), err)
	suite.db = db

	require.NoError(suite.T(), db.AutoMigrate())

	suite.service = NewPlayerService(db)
	suite.ctx = context.Background()
}

func (suite *PlayerServiceTestSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE players")
}

func (suite *PlayerServiceTestSuite) TearDownSuite() {
	suite.db.Exec("DROP TABLE IF EXISTS players")
	suite.db.Close()
}

func (suite *PlayerServiceTestSuite) TestCreatePlayerIsIdempotent() {
	id := uuid.New().String()

	player, created, err := suite.service.CreatePlayer(suite.ctx, id, "Rex")
	require.NoError(suite.T(), err)
	require.True(suite.T(), created)
	assert.Equal(suite.T(), "Rex", player.Nickname)
	assert.Equal(suite.T(), int64(0), player.TotalClicks)
	assert.Equal(suite.T(), int64(1), player.ClickPower)
	assert.Equal(suite.T(), 0.0, player.AutoClickRate)

	again, created, err := suite.service.CreatePlayer(suite.ctx, id, "Someone else")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), created)
	assert.Nil(suite.T(), again)

	var count int64
	suite.db.Model(&models.Player{}).Where("player_id = ?", id).Count(&count)
	assert.Equal(suite.T(), int64(1), count)

	stored, err := suite.service.GetPlayer(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Rex", stored.Nickname)
	assert.JSONEq(suite.T(), `[]`, string(stored.View().Upgrades))
}

func (suite *PlayerServiceTestSuite) TestCreatePlayerKeepsEmptyNickname() {
	id := uuid.New().String()

	player, created, err := suite.service.CreatePlayer(suite.ctx, id, "")
	require.NoError(suite.T(), err)
	require.True(suite.T(), created)
	assert.Equal(suite.T(), "", player.Nickname)
	assert.Equal(suite.T(), int64(1), player.ClickPower)
	assert.JSONEq(suite.T(), `[]`, string(player.Achievements))

	stored, err := suite.service.GetPlayer(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "", stored.Nickname)
}

func (suite *PlayerServiceTestSuite) TestGetPlayerNotFound() {
	_, err := suite.service.GetPlayer(suite.ctx, uuid.New().String())
	assert.ErrorIs(suite.T(), err, ErrPlayerNotFound)
}

func (suite *PlayerServiceTestSuite) TestUpdatePlayerPartial() {
	id := uuid.New().String()
	_, _, err := suite.service.CreatePlayer(suite.ctx, id, "Rex")
	require.NoError(suite.T(), err)

	power := int64(5)
	_, err = suite.service.UpdatePlayer(suite.ctx, id, models.PlayerPatch{
		ClickPower: &power,
		Upgrades:   datatypes.JSON(`[{"id":"cursor","owned":3}]`),
	})
	require.NoError(suite.T(), err)

	clicks := int64(42)
	updated, err := suite.service.UpdatePlayer(suite.ctx, id, models.PlayerPatch{TotalClicks: &clicks})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), int64(42), updated.TotalClicks)
	assert.Equal(suite.T(), int64(5), updated.ClickPower)
	assert.Equal(suite.T(), "Rex", updated.Nickname)
	assert.JSONEq(suite.T(), `[{"id":"cursor","owned":3}]`, string(updated.Upgrades))
	assert.False(suite.T(), updated.UpdatedAt.IsZero())
}

func (suite *PlayerServiceTestSuite) TestUpdatePlayerNotFound() {
	clicks := int64(1)
	_, err := suite.service.UpdatePlayer(suite.ctx, uuid.New().String(), models.PlayerPatch{TotalClicks: &clicks})
	assert.ErrorIs(suite.T(), err, ErrPlayerNotFound)
}

func (suite *PlayerServiceTestSuite) TestLeaderboardOrderAndLimit() {
	for i := 0; i < 15; i++ {
		id := uuid.New().String()
		_, _, err := suite.service.CreatePlayer(suite.ctx, id, models.DefaultNickname)
		require.NoError(suite.T(), err)

		clicks := int64(i * 100)
		_, err = suite.service.UpdatePlayer(suite.ctx, id, models.PlayerPatch{TotalClicks: &clicks})
		require.NoError(suite.T(), err)
	}

	players, err := suite.service.Leaderboard(suite.ctx, LeaderboardSize)
	require.NoError(suite.T(), err)

	require.Len(suite.T(), players, LeaderboardSize)
	assert.Equal(suite.T(), int64(1400), players[0].TotalClicks)
	for i := 1; i < len(players); i++ {
		assert.GreaterOrEqual(suite.T(), players[i-1].TotalClicks, players[i].TotalClicks)
	}
}
