package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/adapter"
	"github.com/mmcdole/reel/internal/domain"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := adapter.DefaultConfig()
	cfg.Storage.Backend = adapter.StorageMemory
	cfg.Catalog.Path = ""

	a, err := newApp(context.Background(), cfg, adapter.NullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.storage.Close() })
	return a
}

func TestCategoryIndex(t *testing.T) {
	cats := []domain.Category{{ID: "movie", Name: "Movies"}, {ID: "anime", Name: "Anime"}}

	assert.Equal(t, 0, categoryIndex(cats, "movie"))
	assert.Equal(t, 1, categoryIndex(cats, "anime"))
	assert.Equal(t, 1, categoryIndex(cats, "ANIME"))
	assert.Equal(t, -1, categoryIndex(cats, "sports"))
}

func TestBrowseCommands(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	assert.NoError(t, a.home(ctx, nil))
	assert.NoError(t, a.home(ctx, []string{"anime"}))
	assert.Error(t, a.home(ctx, []string{"nope"}))

	assert.NoError(t, a.discover(ctx, nil))
	assert.NoError(t, a.discover(ctx, []string{"actors"}))
	assert.Error(t, a.discover(ctx, []string{"people"}))

	assert.NoError(t, a.games(ctx, []string{"puzzle"}))
	assert.Error(t, a.games(ctx, []string{"racing"}))
}

func TestNotificationsCommand(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	require.NoError(t, a.notifications(ctx, nil), "anonymous is not an error")

	require.NoError(t, a.session.Login(ctx, domain.Credentials{Email: "demo@reel.dev", Password: "reel1234"}))
	require.NoError(t, a.notifications(ctx, []string{"read", "n-1"}))

	unread, err := a.catalog.UnreadCount(ctx).Get()
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, a.notifications(ctx, []string{"read", "all"}))
	unread, err = a.catalog.UnreadCount(ctx).Get()
	require.NoError(t, err)
	assert.Zero(t, unread)

	assert.Error(t, a.notifications(ctx, []string{"delete"}))
}
