package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// GameStore is the game catalog: one paginated list per game category.
type GameStore struct {
	Lanes *cache.KeyedPages[domain.GameCategory, domain.Game]

	logger *slog.Logger
}

// NewGameStore creates the store with no lane selected.
func NewGameStore(repo domain.GameRepository, pageSize int, logger *slog.Logger) *GameStore {
	if logger == nil {
		logger = slog.Default()
	}
	factory := func(category domain.GameCategory) cache.FetchPage[domain.Game] {
		return func(ctx context.Context, page, pageSize int) domain.Result[domain.PaginatedList[domain.Game]] {
			return repo.ListGames(ctx, category, domain.PageQuery{Page: page, PageSize: pageSize})
		}
	}
	return &GameStore{
		Lanes:  cache.NewKeyedPages(CacheGames, factory, pageSize, logger),
		logger: logger,
	}
}

// SelectCategory switches lanes. A lane is fetched the first time it is
// selected; switching back to it never refetches.
func (s *GameStore) SelectCategory(ctx context.Context, category domain.GameCategory) {
	s.Lanes.Select(ctx, category)
}

// Selected returns the current lane, or GameCategoryAll before any selection.
func (s *GameStore) Selected() domain.GameCategory {
	if c, ok := s.Lanes.CurrentKey(); ok {
		return c
	}
	return domain.GameCategoryAll
}

// Current returns the list of the current lane, or an empty page.
func (s *GameStore) Current() cache.Page[domain.Game] { return s.Lanes.Current() }

func (s *GameStore) Refresh(ctx context.Context) error  { return s.Lanes.Refresh(ctx) }
func (s *GameStore) LoadMore(ctx context.Context) error { return s.Lanes.LoadMore(ctx) }

// Subscribe registers fn for lane switches and list changes.
func (s *GameStore) Subscribe(fn func(cache.Selection[domain.GameCategory])) (unsubscribe func()) {
	return s.Lanes.Subscribe(fn)
}
