package service

import (
	"context"
	"log/slog"

	"github.com/samber/mo"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// CategoryState holds the category tabs.
type CategoryState struct {
	Categories    []domain.Category
	SelectedIndex int
	IsLoading     bool
	ErrorMessage  string
}

// CategoryHomeStore backs the home screen: one landing page per category,
// loaded the first time its tab is selected.
type CategoryHomeStore struct {
	Homes *cache.Keyed[string, domain.CategoryHome]

	repo   domain.CategoryRepository
	state  *cache.State[CategoryState]
	logger *slog.Logger
}

// NewCategoryHomeStore creates an empty store.
func NewCategoryHomeStore(repo domain.CategoryRepository, logger *slog.Logger) *CategoryHomeStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryHomeStore{
		Homes:  cache.NewKeyed[string, domain.CategoryHome](CacheCategoryHome, repo.GetCategoryHome, logger),
		repo:   repo,
		state:  cache.NewState(CategoryState{}),
		logger: logger,
	}
}

// Init loads the categories and selects the first one.
func (s *CategoryHomeStore) Init(ctx context.Context) error {
	started := s.state.CommitIf(
		func(st CategoryState) bool { return !st.IsLoading },
		func(st *CategoryState) { st.IsLoading = true },
	)
	if !started {
		return nil
	}

	res := s.repo.ListCategories(ctx)
	cats, err := res.Get()
	s.state.Commit(func(st *CategoryState) {
		st.IsLoading = false
		if err != nil {
			st.ErrorMessage = domain.UserMessage(err)
			return
		}
		st.Categories = cats
		st.SelectedIndex = 0
		st.ErrorMessage = ""
	})
	if err != nil {
		s.logger.Error("failed to load categories", "error", err)
		return err
	}
	s.logger.Debug("loaded categories", "count", len(cats))

	if len(cats) > 0 {
		s.Homes.Select(ctx, cats[0].ID)
	}
	return nil
}

// SelectCategory switches to the category at index. Its landing page is
// loaded in the background the first time only. Out of range indexes are
// ignored.
func (s *CategoryHomeStore) SelectCategory(ctx context.Context, index int) {
	var id string
	ok := s.state.CommitIf(
		func(st CategoryState) bool { return index >= 0 && index < len(st.Categories) },
		func(st *CategoryState) {
			st.SelectedIndex = index
			id = st.Categories[index].ID
		},
	)
	if !ok {
		s.logger.Debug("ignored category selection", "index", index)
		return
	}
	s.Homes.Select(ctx, id)
}

// Refresh reloads the selected category's landing page.
func (s *CategoryHomeStore) Refresh(ctx context.Context) error { return s.Homes.Refresh(ctx) }

// Current returns the selected landing page if it has loaded.
func (s *CategoryHomeStore) Current() mo.Option[domain.CategoryHome] { return s.Homes.Current() }

// Snapshot returns the category tabs.
func (s *CategoryHomeStore) Snapshot() CategoryState { return s.state.Get() }

// Subscribe registers fn for tab changes. Subscribe to Homes for pages.
func (s *CategoryHomeStore) Subscribe(fn func(CategoryState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}
