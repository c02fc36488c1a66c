package service

import (
	"context"
	"maps"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// authWatcher is the part of SessionStore dependent stores need.
type authWatcher interface {
	WatchAuthenticated(effect func(bool)) (dispose func())
}

// pager adapts a repository list call to a cache page fetcher.
func pager[T any](list func(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[T]]) cache.FetchPage[T] {
	return func(ctx context.Context, page, pageSize int) domain.Result[domain.PaginatedList[T]] {
		return list(ctx, domain.PageQuery{Page: page, PageSize: pageSize})
	}
}

// cloneFlags copies m so a committed snapshot never shares its map.
func cloneFlags[K comparable](m map[K]bool) map[K]bool {
	if m == nil {
		return make(map[K]bool, 1)
	}
	return maps.Clone(m)
}
