package game_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/game"
	"github.com/dropDatabas3/clickauth/internal/store/memory"
)

func seed(t *testing.T, repo *memory.Store, nick string, score int64) *account.Account {
	t.Helper()
	a := account.New()
	a.UpdateNickname(nick)
	require.NoError(t, a.AddScore(score))
	require.NoError(t, repo.Save(context.Background(), a))
	return a
}

func TestLeaderboard(t *testing.T) {
	repo := memory.New()
	seed(t, repo, "low", 1)
	seed(t, repo, "top", 50)
	seed(t, repo, "tie-a", 10)
	seed(t, repo, "tie-b", 10)

	svc := game.NewService(repo)
	board, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 4)
	assert.Equal(t, game.Entry{Name: "top", Score: 50}, board[0])
	assert.Equal(t, "tie-a", board[1].Name)
	assert.Equal(t, "tie-b", board[2].Name)
	assert.Equal(t, "low", board[3].Name)
}

func TestClickPersists(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	a := seed(t, repo, "clicker", 0)
	svc := game.NewService(repo)

	n, err := svc.Click(ctx, a)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = svc.Click(ctx, a)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	stored, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.Profile.ClickCounter)
}

func TestCountersNeverNegative(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	a := seed(t, repo, "p", 3)
	svc := game.NewService(repo)

	assert.ErrorIs(t, svc.AddScore(ctx, a, -4), account.ErrNegativeCounter)
	require.NoError(t, svc.AddScore(ctx, a, -3))
	assert.ErrorIs(t, svc.AddExperience(ctx, a, -1), account.ErrNegativeCounter)
	require.NoError(t, svc.AddExperience(ctx, a, 5))

	stored, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Profile.Score)
	assert.EqualValues(t, 5, stored.Profile.Experience)
}

func TestUsersHidesCredentials(t *testing.T) {
	repo := memory.New()
	a := seed(t, repo, "pub", 7)
	users, err := game.NewService(repo).Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, a.ID, users[0].ID)
	assert.Equal(t, "pub", users[0].Nickname)
}
