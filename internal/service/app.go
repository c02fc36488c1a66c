package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// AdLaunch is the ad position shown at startup.
const AdLaunch = "launch"

// AppState is the observable state of an AppStore.
type AppState struct {
	Config       domain.AppConfig
	LaunchAd     *domain.Ad
	Loaded       bool
	IsLoading    bool
	ErrorMessage string
}

// AppStore holds the remote client configuration and the launch ad.
type AppStore struct {
	config domain.AppConfigRepository
	ads    domain.AdRepository
	state  *cache.State[AppState]
	logger *slog.Logger
}

// NewAppStore creates an unloaded store.
func NewAppStore(config domain.AppConfigRepository, ads domain.AdRepository, logger *slog.Logger) *AppStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppStore{
		config: config,
		ads:    ads,
		state:  cache.NewState(AppState{}),
		logger: logger,
	}
}

// Init loads the configuration and the launch ad once. Later calls, and
// calls while loading, do nothing. A missing ad is not an error.
func (s *AppStore) Init(ctx context.Context) error {
	started := s.state.CommitIf(
		func(st AppState) bool { return !st.Loaded && !st.IsLoading },
		func(st *AppState) { st.IsLoading = true },
	)
	if !started {
		return nil
	}

	var (
		cfg domain.Result[domain.AppConfig]
		ad  domain.Result[domain.Ad]
	)
	var g errgroup.Group
	g.Go(func() error {
		cfg = s.config.GetAppConfig(ctx)
		return nil
	})
	g.Go(func() error {
		ad = s.ads.GetAd(ctx, AdLaunch)
		return nil
	})
	_ = g.Wait()

	if f := ad.Failure(); f != nil {
		s.logger.Warn("no launch ad", "error", f)
	}
	f := cfg.Failure()
	s.state.Commit(func(st *AppState) {
		st.IsLoading = false
		if ad.IsSuccess() {
			v := ad.Value()
			st.LaunchAd = &v
		}
		if f != nil {
			st.ErrorMessage = f.UserMessage()
			return
		}
		st.Config = cfg.Value()
		st.Loaded = true
		st.ErrorMessage = ""
	})
	if f != nil {
		s.logger.Error("failed to load app config", "error", f)
		return f
	}
	s.logger.Debug("loaded app config", "minVersion", cfg.Value().MinVersion)
	return nil
}

// Config returns the loaded configuration, or the zero value.
func (s *AppStore) Config() domain.AppConfig { return s.state.Get().Config }

// Snapshot returns the current state.
func (s *AppStore) Snapshot() AppState { return s.state.Get() }

// Subscribe registers fn for every committed change.
func (s *AppStore) Subscribe(fn func(AppState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}
