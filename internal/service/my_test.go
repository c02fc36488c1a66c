package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mocks"
)

func TestFormatBadge(t *testing.T) {
	cases := map[int]string{0: "0", 5: "5", 99: "99", 100: "99+", 150: "99+", -3: "0"}
	for n, want := range cases {
		assert.Equal(t, want, FormatBadge(n), "count %d", n)
	}
}

type myFixture struct {
	session *SessionStore
	history *mocks.MockHistoryRepository
	notes   *mocks.MockNotificationRepository
	store   *MyStore
}

func newMyFixture(t *testing.T) *myFixture {
	t.Helper()
	f := &myFixture{
		session: NewSessionStore(okLogin(), mocks.NewMockSessionStorage("", nil), testLogger()),
		history: &mocks.MockHistoryRepository{
			ListHistoryFn: func(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.HistoryItem]] {
				return mocks.Page(1, 2, domain.HistoryItem{Movie: domain.Movie{ID: "h1"}}, domain.HistoryItem{Movie: domain.Movie{ID: "h2"}})
			},
		},
		notes: &mocks.MockNotificationRepository{
			UnreadCountFn: func(ctx context.Context) domain.Result[int] { return domain.Ok(150) },
		},
	}
	favorites := &mocks.MockRelationRepository{
		ListFavoritesFn: func(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
			return moviePage(1, 1, "f1")
		},
	}
	f.store = NewMyStore(f.history, favorites, f.notes, f.session, 20, testLogger())
	return f
}

func TestMyStore_Init(t *testing.T) {
	f := newMyFixture(t)

	require.NoError(t, f.store.Init(context.Background()))

	assert.Len(t, f.store.History.Items(), 2)
	assert.Len(t, f.store.Favorites.Items(), 1)
	assert.Equal(t, 150, f.store.UnreadCount())
	assert.Equal(t, "99+", f.store.FormattedUnread())
}

func TestMyStore_InitFailureStaysLocal(t *testing.T) {
	f := newMyFixture(t)
	f.history.ListHistoryFn = func(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.HistoryItem]] {
		select {
		case <-ctx.Done():
			return domain.Fail[domain.PaginatedList[domain.HistoryItem]](domain.CancelledFailure())
		case <-time.After(50 * time.Millisecond):
		}
		return mocks.Page(1, 1, domain.HistoryItem{Movie: domain.Movie{ID: "h1"}})
	}
	f.notes.UnreadCountFn = func(ctx context.Context) domain.Result[int] {
		return domain.Fail[int](domain.ServerFailure("boom", nil))
	}

	err := f.store.Init(context.Background())

	require.Error(t, err)
	hist := f.store.History.Snapshot()
	assert.Len(t, hist.Items, 1)
	assert.Empty(t, hist.ErrorMessage)
	assert.Len(t, f.store.Favorites.Items(), 1)
	assert.NotEmpty(t, f.store.Snapshot().ErrorMessage)
}

func TestMyStore_ClearsOnLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("init then login then logout leaves empty defaults", func(t *testing.T) {
		f := newMyFixture(t)
		require.NoError(t, f.store.Init(ctx))
		require.NoError(t, f.session.Login(ctx, goodCreds))

		f.session.Logout(ctx)

		assert.Empty(t, f.store.History.Items())
		assert.Empty(t, f.store.Favorites.Items())
		assert.Equal(t, domain.DefaultPaginator(), f.store.History.Snapshot().Paginator)
		assert.Zero(t, f.store.UnreadCount())
	})

	t.Run("login alone does not clear", func(t *testing.T) {
		f := newMyFixture(t)
		require.NoError(t, f.store.Init(ctx))

		require.NoError(t, f.session.Login(ctx, goodCreds))

		assert.Len(t, f.store.History.Items(), 2)
	})

	t.Run("disposed store keeps its data", func(t *testing.T) {
		f := newMyFixture(t)
		require.NoError(t, f.store.Init(ctx))
		require.NoError(t, f.session.Login(ctx, goodCreds))

		f.store.Dispose()
		f.store.Dispose()
		f.session.Logout(ctx)

		assert.Len(t, f.store.History.Items(), 2)
		assert.Equal(t, 150, f.store.UnreadCount())
	})

	t.Run("unauthenticated signal clears too", func(t *testing.T) {
		f := newMyFixture(t)
		require.NoError(t, f.session.Login(ctx, goodCreds))
		require.NoError(t, f.store.Init(ctx))

		f.session.HandleUnauthenticated()

		assert.Empty(t, f.store.History.Items())
	})
}

func TestMyStore_UnreadFailureKeepsCount(t *testing.T) {
	f := newMyFixture(t)
	require.NoError(t, f.store.RefreshUnread(context.Background()))

	f.notes.UnreadCountFn = func(ctx context.Context) domain.Result[int] {
		return domain.Fail[int](domain.ServerFailure("try later", nil))
	}
	err := f.store.RefreshUnread(context.Background())

	require.Error(t, err)
	assert.Equal(t, 150, f.store.UnreadCount())
	assert.Equal(t, "try later", f.store.Snapshot().ErrorMessage)
}
