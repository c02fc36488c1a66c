package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/service"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// Screen is the top-level view being shown
type Screen int

const (
	ScreenBrowse Screen = iota
	ScreenDetail
)

// inputMode says what the text input is bound to, if anything
type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputComment
)

// listSource selects which movie list the browse screen shows
type listSource int

const (
	sourceFilter listSource = iota
	sourceSearch
)

const (
	headerHeight    = 3
	footerHeight    = 1
	loadMoreMargin  = 3 // rows from the end that trigger the next page
	suggestionLimit = 5
)

// Stores bundles the stores the TUI is bound to
type Stores struct {
	App     *service.AppStore
	Session *service.SessionStore
	Filter  *service.FilterStore
	Search  *service.SearchStore
	Detail  *service.MovieDetailStore
	My      *service.MyStore
}

// Model is the main Bubble Tea model for the application
type Model struct {
	stores   Stores
	observer *Observer
	logger   *slog.Logger

	// UI components
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	list     list.Model
	input    textinput.Model
	viewport viewport.Model

	// Store snapshots, refreshed on StoreChangedMsg
	app      service.AppState
	session  service.SessionState
	filter   service.FilterState
	movies   cache.Page[domain.Movie]
	results  cache.Page[domain.Movie]
	detail   service.DetailState
	comments cache.Page[domain.Comment]
	recs     cache.Page[domain.Movie]
	favorite cache.ToggleState
	subbed   cache.ToggleState
	unread   string

	// UI state
	screen      Screen
	mode        inputMode
	source      listSource
	suggestions []search.Suggestion
	width       int
	height      int
	statusMsg   string
	statusIsErr bool
}

// NewModel creates the model and subscribes it to every store
func NewModel(stores Stores, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	o := NewObserver()
	o.Watch(stores.App.Subscribe(Notify[service.AppState](o)))
	o.Watch(stores.Session.Subscribe(Notify[service.SessionState](o)))
	o.Watch(stores.Filter.Subscribe(Notify[service.FilterState](o)))
	o.Watch(stores.Filter.Movies.Subscribe(Notify[cache.Page[domain.Movie]](o)))
	o.Watch(stores.Search.Subscribe(Notify[service.SearchState](o)))
	o.Watch(stores.Search.Results.Subscribe(Notify[cache.Page[domain.Movie]](o)))
	o.Watch(stores.Detail.Subscribe(Notify[service.DetailState](o)))
	o.Watch(stores.Detail.Comments.Subscribe(Notify[cache.Page[domain.Comment]](o)))
	o.Watch(stores.Detail.Recommendations.Subscribe(Notify[cache.Page[domain.Movie]](o)))
	o.Watch(stores.Detail.Favorite.Subscribe(Notify[cache.ToggleState](o)))
	o.Watch(stores.Detail.Subscription.Subscribe(Notify[cache.ToggleState](o)))
	o.Watch(stores.My.Subscribe(Notify[service.MyState](o)))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	in := textinput.New()
	in.CharLimit = 500

	m := Model{
		stores:   stores,
		observer: o,
		logger:   logger,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		list:     l,
		input:    in,
		viewport: viewport.New(0, 0),
	}
	m.sync()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.observer.Wait(),
		InitBrowseCmd(m.stores.Filter),
		InitAppCmd(m.stores.App, m.stores.My),
	)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.updateLayout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StoreChangedMsg:
		cmd := m.sync()
		return m, tea.Batch(cmd, m.observer.Wait())

	case ErrMsg:
		m.logger.Debug("command failed", "context", msg.Context, "error", msg.Err)
		m.setStatus(errorText(msg), true)
		return m, nil

	case StatusMsg:
		m.setStatus(msg.Text, msg.IsErr)
		return m, nil

	case CommentPostedMsg:
		m.setStatus("comment posted", false)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusMsg = text
	m.statusIsErr = isErr
}

// sync copies every store snapshot into the model. Returns the list's
// command when its items changed.
func (m *Model) sync() tea.Cmd {
	m.app = m.stores.App.Snapshot()
	m.session = m.stores.Session.State()
	m.filter = m.stores.Filter.Snapshot()
	m.movies = m.stores.Filter.Movies.Snapshot()
	m.results = m.stores.Search.Results.Snapshot()
	m.detail = m.stores.Detail.Snapshot()
	m.comments = m.stores.Detail.Comments.Snapshot()
	m.recs = m.stores.Detail.Recommendations.Snapshot()
	m.favorite = m.stores.Detail.Favorite.Snapshot()
	m.subbed = m.stores.Detail.Subscription.Snapshot()
	m.unread = ""
	if m.session.IsAuthenticated() {
		m.unread = m.stores.My.FormattedUnread()
	}

	if m.app.Loaded && len(m.app.Config.HotKeywords) > 0 && len(m.stores.Search.Snapshot().HotKeywords) == 0 {
		m.stores.Search.SetHotKeywords(m.app.Config.HotKeywords)
	}

	m.viewport.SetContent(m.renderDetailBody())
	return m.syncList()
}

// syncList replaces the list items when the shown movies changed
func (m *Model) syncList() tea.Cmd {
	movies := m.shownMovies().Items
	current := m.list.Items()
	if len(current) == len(movies) && slices.EqualFunc(current, movies, func(it list.Item, mv domain.Movie) bool {
		item, ok := it.(movieItem)
		return ok && item.movie.ID == mv.ID
	}) {
		return nil
	}

	items := make([]list.Item, len(movies))
	for i, mv := range movies {
		items[i] = movieItem{movie: mv}
	}
	return m.list.SetItems(items)
}

func (m Model) shownMovies() cache.Page[domain.Movie] {
	if m.source == sourceSearch {
		return m.results
	}
	return m.movies
}

func (m *Model) updateLayout() {
	bodyHeight := max(m.height-headerHeight-footerHeight, 1)
	m.list.SetSize(m.width-2, bodyHeight-1)
	m.viewport.Width = m.width
	m.viewport.Height = bodyHeight
	m.viewport.SetContent(m.renderDetailBody())
	m.help.Width = m.width
	m.input.Width = max(m.width-12, 10)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	if m.mode != inputNone {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.observer.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.screen == ScreenDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.filter.Filter
	opts := m.filter.Options
	store := m.stores.Filter

	switch {
	case key.Matches(msg, m.keys.Open):
		item, ok := m.list.SelectedItem().(movieItem)
		if !ok {
			return m, nil
		}
		m.screen = ScreenDetail
		m.viewport.GotoTop()
		return m, LoadDetailCmd(m.stores.Detail, item.movie.ID)

	case key.Matches(msg, m.keys.Back):
		if m.source == sourceSearch {
			m.source = sourceFilter
			return m, m.syncList()
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = inputSearch
		m.input.Reset()
		m.input.Placeholder = "search titles"
		m.suggestions = m.stores.Search.Suggest("", suggestionLimit)
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Refresh):
		if m.source == sourceSearch {
			return m, SearchCmd(m.stores.Search, m.stores.Search.Snapshot().Keyword)
		}
		return m, RefreshMoviesCmd(store)

	case key.Matches(msg, m.keys.NextCategory), key.Matches(msg, m.keys.PrevCategory):
		ids := make([]string, 0, len(m.filter.Categories))
		for _, c := range m.filter.Categories {
			ids = append(ids, c.ID)
		}
		step := 1
		if key.Matches(msg, m.keys.PrevCategory) {
			step = -1
		}
		m.source = sourceFilter
		return m, SetFilterCmd(store.SetSelectedCategoryID, cycle(ids, f.CategoryID, step))

	case key.Matches(msg, m.keys.CycleArea):
		m.source = sourceFilter
		return m, SetFilterCmd(store.SetSelectedArea, cycle(opts.Areas, f.Area, 1))
	case key.Matches(msg, m.keys.CycleYear):
		m.source = sourceFilter
		return m, SetFilterCmd(store.SetSelectedYear, cycle(opts.Years, f.Year, 1))
	case key.Matches(msg, m.keys.CycleGenre):
		m.source = sourceFilter
		return m, SetFilterCmd(store.SetSelectedGenre, cycle(opts.Genres, f.Genre, 1))
	case key.Matches(msg, m.keys.CycleSort):
		m.source = sourceFilter
		return m, SetFilterCmd(store.SetSelectedSort, cycle(opts.Sorts, f.Sort, 1))

	case key.Matches(msg, m.keys.ClearFilter):
		m.source = sourceFilter
		return m, runCmd("clearing filters", func(ctx context.Context) error {
			for _, set := range []func(context.Context, string) error{
				store.SetSelectedArea, store.SetSelectedYear, store.SetSelectedGenre, store.SetSelectedSort,
			} {
				if err := set(ctx, ""); err != nil {
					return err
				}
			}
			return nil
		})
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(cmd, m.maybeLoadMore())
}

// maybeLoadMore fetches the next page when the cursor nears the end
func (m Model) maybeLoadMore() tea.Cmd {
	page := m.shownMovies()
	if !page.Paginator.HasMorePages || page.Busy() {
		return nil
	}
	if m.list.Index() < len(page.Items)-loadMoreMargin {
		return nil
	}
	if m.source == sourceSearch {
		return LoadMoreResultsCmd(m.stores.Search)
	}
	return LoadMoreMoviesCmd(m.stores.Filter)
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = ScreenBrowse
		return m, nil

	case key.Matches(msg, m.keys.Favorite):
		if !m.requireLogin("favorite") {
			return m, nil
		}
		return m, ToggleFavoriteCmd(m.stores.Detail)

	case key.Matches(msg, m.keys.Subscribe):
		if !m.requireLogin("subscribe") {
			return m, nil
		}
		return m, ToggleSubscribeCmd(m.stores.Detail)

	case key.Matches(msg, m.keys.Comment):
		if !m.requireLogin("comment") {
			return m, nil
		}
		m.mode = inputComment
		m.input.Reset()
		m.input.Placeholder = "write a comment"
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.MoreComments):
		if !m.comments.Paginator.HasMorePages {
			return m, nil
		}
		return m, LoadMoreCommentsCmd(m.stores.Detail)

	case key.Matches(msg, m.keys.Recommendation):
		n, err := strconv.Atoi(msg.String())
		if err != nil || n < 1 || n > len(m.recs.Items) {
			return m, nil
		}
		m.viewport.GotoTop()
		return m, LoadDetailCmd(m.stores.Detail, m.recs.Items[n-1].ID)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// requireLogin opens the login prompt for anonymous viewers
func (m *Model) requireLogin(action string) bool {
	if m.session.IsAuthenticated() {
		return true
	}
	m.stores.Session.OpenLoginPrompt()
	m.setStatus(fmt.Sprintf("log in to %s: run `reel login`", action), true)
	return false
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = inputNone
		m.input.Blur()
		m.suggestions = nil
		return m, nil

	case tea.KeyTab:
		if m.mode == inputSearch && len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[0].Text)
			m.input.CursorEnd()
			m.suggestions = m.stores.Search.Suggest(m.input.Value(), suggestionLimit)
		}
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		m.suggestions = nil

		if mode == inputComment {
			return m, SubmitCommentCmd(m.stores.Detail, value)
		}
		if strings.TrimSpace(value) == "" {
			return m, nil
		}
		m.source = sourceSearch
		m.list.ResetSelected()
		return m, SearchCmd(m.stores.Search, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == inputSearch {
		m.suggestions = m.stores.Search.Suggest(m.input.Value(), suggestionLimit)
	}
	return m, cmd
}

// cycle returns the value after current in ["" + values], wrapping around.
// "" stands for "any".
func cycle(values []string, current string, step int) string {
	all := append([]string{""}, values...)
	i := slices.Index(all, current)
	if i < 0 {
		i = 0
	}
	n := len(all)
	return all[((i+step)%n+n)%n]
}

// movieItem adapts a movie to the list component
type movieItem struct {
	movie domain.Movie
}

func (i movieItem) Title() string {
	if i.movie.Score > 0 {
		return fmt.Sprintf("%s  %s", i.movie.Title, styles.ScoreStyle.Render(fmt.Sprintf("%.1f", i.movie.Score)))
	}
	return i.movie.Title
}

func (i movieItem) Description() string { return i.movie.GetDescription() }
func (i movieItem) FilterValue() string { return i.movie.Title }
