package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/reel/internal/adapter"
	"github.com/mmcdole/reel/internal/adapter/catalog"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/service"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	offlineEndpoint = "offline"
	startupTimeout  = 15 * time.Second
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: reel [flags] [command]

commands:
  browse     browse the catalog (default)
  login      log in and remember the session
  register   create an account and log in
  logout     end the session
  whoami     show the logged-in user
  games      list games, optionally in a category (%s)
  home       show a category landing page (default: the first category)
  discover   list topics or actors
  notifications
             list notifications; "read <id>" or "read all" marks them read

flags:
`, strings.Join(gameCategoryNames(), ", "))
	flag.PrintDefaults()
}

func main() {
	var (
		showVersion bool
		verbose     bool
		configPath  string
	)
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.StringVar(&configPath, "config", "", "config file (default: OS config dir)")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("reel %s\n", Version)
		return
	}

	if err := run(flag.Args(), configPath, verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything a command needs
type app struct {
	cfg     *adapter.Config
	logger  *slog.Logger
	storage domain.SessionStorage
	catalog *catalog.Catalog
	session *service.SessionStore
}

func run(args []string, configPath string, verbose bool) error {
	cfg, err := adapter.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := adapter.SetupLogger(&cfg.Logging, verbose)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting reel", "version", Version, "storage", cfg.Storage.Backend)

	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.storage.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	command := "browse"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "browse":
		return a.browse(ctx)
	case "login":
		return a.login(ctx, false)
	case "register":
		return a.login(ctx, true)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "games":
		return a.games(ctx, args[1:])
	case "home":
		return a.home(ctx, args[1:])
	case "discover":
		return a.discover(ctx, args[1:])
	case "notifications":
		return a.notifications(ctx, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// newApp opens storage and the backend and links the session to it
func newApp(ctx context.Context, cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Keyed on the device id so tokens issued in an earlier run still verify
	cat, err := catalog.Load(cfg.Catalog.Path, logger, catalog.WithSecret([]byte(storage.DeviceID())))
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	session := service.NewSessionStore(cat, storage, logger)
	cat.OnUnauthenticated(session.HandleUnauthenticated)

	return &app{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
		catalog: cat,
		session: session,
	}, nil
}

func openStorage(ctx context.Context, cfg *adapter.Config, logger *slog.Logger) (domain.SessionStorage, error) {
	endpoint := cfg.API.Endpoint
	if endpoint == "" {
		endpoint = offlineEndpoint
	}

	switch cfg.Storage.Backend {
	case adapter.StorageRedis:
		s, err := store.NewRedisStorage(ctx, cfg.Storage.RedisURL, cfg.Storage.Profile, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis storage: %w", err)
		}
		return s, nil
	default:
		dir := cfg.Storage.Path
		if cfg.Storage.Backend == adapter.StorageMemory {
			dir = ""
		}
		s, err := store.NewBoltStorage(dir, endpoint, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open session storage: %w", err)
		}
		return s, nil
	}
}

func (a *app) restore(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	return a.session.Restore(ctx)
}

// browse runs the TUI
func (a *app) browse(ctx context.Context) error {
	a.restore(ctx)

	pageSize := a.cfg.API.PageSize
	my := service.NewMyStore(a.catalog, a.catalog, a.catalog, a.session, pageSize, a.logger)
	defer my.Dispose()

	model := tui.NewModel(tui.Stores{
		App:     service.NewAppStore(a.catalog, a.catalog, a.logger),
		Session: a.session,
		Filter:  service.NewFilterStore(a.catalog, a.catalog, pageSize, a.logger),
		Search:  service.NewSearchStore(a.catalog, pageSize, a.logger),
		Detail:  service.NewMovieDetailStore(a.catalog, a.catalog, a.catalog, a.catalog, pageSize, a.logger),
		My:      my,
	}, a.logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	a.logger.Info("shutting down")
	return nil
}

// login prompts for credentials and persists the session
func (a *app) login(ctx context.Context, register bool) error {
	if a.restore(ctx) {
		user, _ := a.session.User()
		fmt.Printf("Already logged in as %s. Run `reel logout` first.\n", user.Name)
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	creds := domain.Credentials{}

	var err error
	if register {
		if creds.Name, err = prompt(reader, "Name: "); err != nil {
			return err
		}
	}
	if creds.Email, err = prompt(reader, "Email: "); err != nil {
		return err
	}
	if creds.Password, err = readPassword(reader, "Password: "); err != nil {
		return err
	}

	if register {
		err = a.session.Register(ctx, creds)
	} else {
		err = a.session.Login(ctx, creds)
	}
	if err != nil {
		if msg := a.session.State().ErrorMessage; msg != "" {
			return errors.New(msg)
		}
		return errors.New(domain.UserMessage(err))
	}

	user, _ := a.session.User()
	fmt.Printf("✓ Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo when stdin is a terminal
func readPassword(reader *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(reader, label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func (a *app) logout(ctx context.Context) error {
	if !a.restore(ctx) {
		fmt.Println("Not logged in.")
		return nil
	}
	a.session.Logout(ctx)
	fmt.Println("✓ Logged out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if !a.restore(ctx) {
		fmt.Println("Not logged in.")
		return nil
	}
	user, _ := a.session.User()

	my := service.NewMyStore(a.catalog, a.catalog, a.catalog, a.session, a.cfg.API.PageSize, a.logger)
	defer my.Dispose()
	if err := my.RefreshUnread(ctx); err != nil {
		a.logger.Warn("failed to load unread count", "error", err)
	}

	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	fmt.Printf("unread notifications: %s\n", my.FormattedUnread())
	fmt.Printf("device: %s\n", a.storage.DeviceID())
	return nil
}

// games prints one page of a game lane
func (a *app) games(ctx context.Context, args []string) error {
	category := domain.GameCategory(a.cfg.Games.DefaultCategory)
	if len(args) > 0 {
		category = domain.GameCategory(args[0])
	}
	if !isGameCategory(category) {
		return fmt.Errorf("unknown game category %q (want one of %s)", category, strings.Join(gameCategoryNames(), ", "))
	}

	gs := service.NewGameStore(a.catalog, a.cfg.API.PageSize, a.logger)
	gs.SelectCategory(ctx, category)
	gs.Lanes.Wait()

	page := gs.Current()
	if page.ErrorMessage != "" {
		return errors.New(page.ErrorMessage)
	}
	if page.IsEmpty() {
		fmt.Printf("No %s games.\n", category)
		return nil
	}
	printList(page.Items)
	if page.Paginator.HasMorePages {
		fmt.Printf("... %d more\n", page.Paginator.Total-len(page.Items))
	}
	return nil
}

// printList prints one row per item
func printList[T domain.ListItem](items []T) {
	for _, item := range items {
		fmt.Printf("%-24s %s\n", item.GetTitle(), item.GetDescription())
	}
}

func isGameCategory(c domain.GameCategory) bool {
	for _, known := range domain.GameCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func gameCategoryNames() []string {
	cats := domain.GameCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}
