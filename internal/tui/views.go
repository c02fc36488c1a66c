package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// View implements tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var body string
	switch m.screen {
	case ScreenDetail:
		body = m.viewport.View()
	default:
		body = m.renderBrowse()
	}

	if m.mode != inputNone {
		body = m.renderInput()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

// renderHeader draws the brand, the category tabs and the session badge
func (m Model) renderHeader() string {
	brand := styles.AccentStyle.Bold(true).Render("reel")

	tabs := []string{m.renderTab("All", m.filter.Filter.CategoryID == "")}
	for _, c := range m.filter.Categories {
		tabs = append(tabs, m.renderTab(c.Name, c.ID == m.filter.Filter.CategoryID))
	}

	who := styles.DimStyle.Render("anonymous")
	if m.session.User != nil {
		who = styles.SubtitleStyle.Render(m.session.User.Name)
		if m.unread != "" {
			who += " " + unreadBadge(m.unread)
		}
	}

	left := brand + "  " + strings.Join(tabs, "")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(who), 1)
	line := left + strings.Repeat(" ", gap) + who

	sub := styles.DimStyle.Render(m.app.Config.Announcement)
	if m.source == sourceSearch {
		sub = styles.SubtitleStyle.Render(fmt.Sprintf("results for %q", m.stores.Search.Snapshot().Keyword)) +
			styles.DimStyle.Render("  (esc to go back)")
	} else if m.screen == ScreenBrowse {
		sub = m.renderFilterLine()
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, lipgloss.NewStyle().MaxWidth(m.width).Render(sub), "")
}

// unreadBadge dims the badge when nothing is unread
func unreadBadge(count string) string {
	if count == "0" {
		return styles.DimBadgeStyle.Render(count)
	}
	return styles.BadgeStyle.Render(count)
}

func (m Model) renderTab(name string, active bool) string {
	if active {
		return styles.ActiveTabStyle.Render(name)
	}
	return styles.TabStyle.Render(name)
}

func (m Model) renderFilterLine() string {
	f := m.filter.Filter
	part := func(label, value string) string {
		if value == "" {
			value = "any"
			return styles.DimStyle.Render(label+": ") + styles.DimStyle.Render(value)
		}
		return styles.DimStyle.Render(label+": ") + styles.AccentStyle.Render(value)
	}
	line := strings.Join([]string{
		part("area", f.Area),
		part("year", f.Year),
		part("genre", f.Genre),
		part("sort", f.Sort),
	}, "  ")
	if m.filter.IsLoadingOptions {
		line += "  " + m.spinner.View()
	}
	if m.filter.OptionsError != "" {
		line += "  " + styles.ErrorStyle.Render(m.filter.OptionsError)
	}
	return line
}

// renderBrowse draws the movie list with its loading and empty states
func (m Model) renderBrowse() string {
	page := m.shownMovies()
	height := max(m.height-headerHeight-footerHeight, 1)

	var content string
	switch {
	case page.IsLoading && len(page.Items) == 0:
		content = m.spinner.View() + " loading..."
	case page.ErrorMessage != "" && len(page.Items) == 0:
		content = styles.ErrorStyle.Render(page.ErrorMessage) + styles.DimStyle.Render("  (r to retry)")
	case page.IsEmpty():
		content = styles.DimStyle.Render("no titles match")
	default:
		content = m.list.View()
	}

	var status string
	switch {
	case page.IsLoadingMore:
		status = m.spinner.View() + " loading more"
	case page.IsRefreshing, page.IsLoading:
		status = m.spinner.View() + " refreshing"
	case page.Loaded:
		status = styles.DimStyle.Render(fmt.Sprintf("%d of %d", len(page.Items), page.Paginator.Total))
	}

	return styles.BrowserStyle.Height(height).Render(
		lipgloss.JoinVertical(lipgloss.Left, content, status),
	)
}

// renderDetailBody builds the scrollable detail content
func (m Model) renderDetailBody() string {
	d := m.detail
	if d.MovieID == "" {
		return ""
	}
	if !d.HasDetail {
		if d.ErrorMessage != "" {
			return styles.DetailStyle.Render(styles.ErrorStyle.Render(d.ErrorMessage))
		}
		return styles.DetailStyle.Render(m.spinner.View() + " loading...")
	}

	mv := d.Detail.Movie
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(mv.Title))
	if mv.Score > 0 {
		b.WriteString("  " + styles.ScoreStyle.Render(fmt.Sprintf("%.1f", mv.Score)))
	}
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(mv.GetDescription()))
	if len(mv.Genres) > 0 {
		b.WriteString(styles.DimStyle.Render("  " + strings.Join(mv.Genres, ", ")))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderRelation(styles.FavoriteChar, "favorite", m.favorite.Active, m.favorite.InFlight))
	b.WriteString("   ")
	b.WriteString(m.renderRelation(styles.SubscribedChar, "subscribed", m.subbed.Active, m.subbed.InFlight))
	b.WriteString("\n\n")

	width := max(m.width-6, 20)
	if mv.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(mv.Description))
		b.WriteString("\n\n")
	}
	if len(mv.Actors) > 0 {
		b.WriteString(styles.DimStyle.Render("cast: ") + strings.Join(mv.Actors, ", ") + "\n\n")
	}

	b.WriteString(styles.TitleStyle.Render("Related") + "\n")
	switch {
	case m.recs.IsLoading:
		b.WriteString(m.spinner.View() + "\n")
	case len(m.recs.Items) == 0:
		b.WriteString(styles.DimStyle.Render("nothing related") + "\n")
	}
	for i, r := range m.recs.Items[:min(5, len(m.recs.Items))] {
		b.WriteString(fmt.Sprintf("%s %s\n", styles.AccentStyle.Render(fmt.Sprintf("%d", i+1)), r.Title))
	}
	b.WriteString("\n")

	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Comments (%d)", d.Detail.CommentCount)) + "\n")
	if d.IsSubmittingComment {
		b.WriteString(m.spinner.View() + " posting...\n")
	}
	if d.CommentError != "" {
		b.WriteString(styles.ErrorStyle.Render(d.CommentError) + "\n")
	}
	for _, c := range m.comments.Items {
		b.WriteString(styles.AccentStyle.Render(c.User.Name))
		b.WriteString(styles.DimStyle.Render("  " + c.CreatedAt.Format("2006-01-02")))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(c.Body))
		b.WriteString("\n\n")
	}
	switch {
	case m.comments.IsLoadingMore:
		b.WriteString(m.spinner.View() + " loading more\n")
	case m.comments.Paginator.HasMorePages:
		b.WriteString(styles.DimStyle.Render("m for more comments") + "\n")
	}

	return styles.DetailStyle.Render(b.String())
}

func (m Model) renderRelation(char, label string, active, inFlight bool) string {
	text := char + " " + label
	switch {
	case inFlight:
		return styles.DimStyle.Render(text + "...")
	case active:
		return styles.AccentStyle.Render(text)
	default:
		return styles.DimStyle.Render("not " + label)
	}
}

// renderInput draws the search or comment input with its suggestions
func (m Model) renderInput() string {
	title := "Search"
	if m.mode == inputComment {
		title = "Comment on " + m.detail.Detail.Movie.Title
	}

	lines := []string{
		styles.ModalTitleStyle.Render(title),
		m.input.View(),
	}
	if len(m.suggestions) > 0 {
		lines = append(lines, "")
		for _, s := range m.suggestions {
			prefix := "  "
			if s.Source == search.SourceRecent {
				prefix = styles.DimStyle.Render("↺ ")
			}
			lines = append(lines, prefix+styles.HighlightMatches(s.Text, s.MatchedIndexes))
		}
	}

	modal := styles.ModalStyle.Width(max(m.width/2, 40)).Render(strings.Join(lines, "\n"))
	height := max(m.height-headerHeight-footerHeight, 1)
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, modal)
}

// renderFooter shows the status line or the key help
func (m Model) renderFooter() string {
	if m.session.LoginPromptOpen && m.statusMsg == "" {
		return styles.ErrorStyle.Render("session expired: run `reel login`")
	}
	if m.statusMsg != "" {
		if m.statusIsErr {
			return styles.ErrorStyle.Render(styles.Truncate(m.statusMsg, m.width))
		}
		return styles.SuccessStyle.Render(styles.Truncate(m.statusMsg, m.width))
	}
	if m.screen == ScreenDetail {
		return m.help.View(detailKeys{m.keys})
	}
	return m.help.View(browseKeys{m.keys})
}
