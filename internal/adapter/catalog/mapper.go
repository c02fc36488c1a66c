package catalog

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

const defaultPageSize = 20

// Sort keys understood by ListMovies
const (
	SortLatest  = "latest"
	SortScore   = "score"
	SortTitle   = "title"
	SortDefault = ""
)

// mapUser converts an account to the public user shape
func mapUser(a Account) domain.User {
	return domain.User{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		AvatarURL: a.AvatarURL,
	}
}

// mapComment resolves the author of a fixture comment
func mapComment(c CommentDTO, accounts map[string]Account) domain.Comment {
	user := domain.User{ID: c.AuthorID, Name: "anonymous"}
	if a, ok := accounts[c.AuthorID]; ok {
		user = mapUser(a)
	}
	return domain.Comment{
		ID:        c.ID,
		MovieID:   c.MovieID,
		User:      user,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

// mapHistory joins a history entry with its movie. Entries for unknown
// movies are dropped.
func mapHistory(entries []HistoryDTO, movies map[string]domain.Movie) []domain.HistoryItem {
	items := make([]domain.HistoryItem, 0, len(entries))
	for _, h := range entries {
		m, ok := movies[h.MovieID]
		if !ok {
			continue
		}
		items = append(items, domain.HistoryItem{
			Movie:     m,
			Episode:   h.Episode,
			Progress:  time.Duration(h.ProgressSeconds) * time.Second,
			WatchedAt: h.WatchedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].WatchedAt.After(items[j].WatchedAt)
	})
	return items
}

// deriveFilterOptions builds the option lists from the movies themselves
func deriveFilterOptions(movies []domain.Movie) domain.FilterOptions {
	areas := map[string]bool{}
	years := map[int]bool{}
	genres := map[string]bool{}
	for _, m := range movies {
		if m.Area != "" {
			areas[m.Area] = true
		}
		if m.Year > 0 {
			years[m.Year] = true
		}
		for _, g := range m.Genres {
			genres[g] = true
		}
	}

	opts := domain.FilterOptions{
		Areas:  sortedKeys(areas),
		Genres: sortedKeys(genres),
		Sorts:  []string{SortLatest, SortScore, SortTitle},
	}
	yearList := make([]int, 0, len(years))
	for y := range years {
		yearList = append(yearList, y)
	}
	slices.Sort(yearList)
	slices.Reverse(yearList)
	for _, y := range yearList {
		opts.Years = append(opts.Years, strconv.Itoa(y))
	}
	return opts
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// matchesFilter reports whether m satisfies every non-empty selection
func matchesFilter(m domain.Movie, f domain.MovieFilter) bool {
	if f.CategoryID != "" && m.CategoryID != f.CategoryID {
		return false
	}
	if f.Area != "" && !strings.EqualFold(m.Area, f.Area) {
		return false
	}
	if f.Year != "" && strconv.Itoa(m.Year) != f.Year {
		return false
	}
	if f.Genre != "" && !slices.ContainsFunc(m.Genres, func(g string) bool {
		return strings.EqualFold(g, f.Genre)
	}) {
		return false
	}
	return true
}

// sortMovies orders movies in place by key. Unknown keys keep catalog order.
func sortMovies(movies []domain.Movie, key string) {
	switch key {
	case SortLatest:
		sort.SliceStable(movies, func(i, j int) bool { return movies[i].Year > movies[j].Year })
	case SortScore:
		sort.SliceStable(movies, func(i, j int) bool { return movies[i].Score > movies[j].Score })
	case SortTitle:
		sort.SliceStable(movies, func(i, j int) bool {
			return strings.ToLower(movies[i].Title) < strings.ToLower(movies[j].Title)
		})
	}
}

// matchesKeyword does a case-insensitive match on title and cast
func matchesKeyword(m domain.Movie, keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	if strings.Contains(strings.ToLower(m.Title), kw) {
		return true
	}
	return slices.ContainsFunc(m.Actors, func(a string) bool {
		return strings.Contains(strings.ToLower(a), kw)
	})
}

// related ranks other movies by shared genres, same category first
func related(target domain.Movie, movies []domain.Movie) []domain.Movie {
	type scored struct {
		movie domain.Movie
		score int
	}
	var candidates []scored
	for _, m := range movies {
		if m.ID == target.ID {
			continue
		}
		s := 0
		for _, g := range m.Genres {
			if slices.Contains(target.Genres, g) {
				s += 2
			}
		}
		if m.CategoryID == target.CategoryID {
			s++
		}
		if s > 0 {
			candidates = append(candidates, scored{m, s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	out := make([]domain.Movie, len(candidates))
	for i, c := range candidates {
		out[i] = c.movie
	}
	return out
}

// categoryHome assembles the landing page of one category
func categoryHome(categoryID string, movies []domain.Movie, ad *domain.Ad) domain.CategoryHome {
	var inCategory []domain.Movie
	for _, m := range movies {
		if m.CategoryID == categoryID {
			inCategory = append(inCategory, m)
		}
	}

	top := slices.Clone(inCategory)
	sortMovies(top, SortScore)
	latest := slices.Clone(inCategory)
	sortMovies(latest, SortLatest)

	home := domain.CategoryHome{
		CategoryID: categoryID,
		Banners:    top[:min(3, len(top))],
		Ad:         ad,
	}
	if len(latest) > 0 {
		home.Sections = append(home.Sections, domain.Section{Title: "Latest", Movies: latest[:min(10, len(latest))]})
	}
	if len(top) > 0 {
		home.Sections = append(home.Sections, domain.Section{Title: "Top rated", Movies: top[:min(10, len(top))]})
	}
	return home
}

// paginate slices items into the requested page window
func paginate[T any](items []T, q domain.PageQuery) domain.PaginatedList[T] {
	size := q.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	page := max(q.Page, 1)

	lastPage := max((len(items)+size-1)/size, 1)
	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))

	return domain.PaginatedList[T]{
		Items: slices.Clone(items[start:end]),
		Paginator: domain.PaginatorInfo{
			CurrentPage:  page,
			LastPage:     lastPage,
			HasMorePages: page < lastPage,
			Total:        len(items),
		},
	}
}
