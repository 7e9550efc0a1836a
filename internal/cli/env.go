package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"expo-admin/internal/api"
	"expo-admin/internal/app"
	"expo-admin/internal/auth"
	"expo-admin/internal/config"
	"expo-admin/internal/domain"
	"expo-admin/internal/i18n"
	"expo-admin/internal/infra/disk"
	"expo-admin/internal/infra/memory"
	redisinfra "expo-admin/internal/infra/redis"
	"expo-admin/internal/listmanager"
	"expo-admin/internal/logger"
	"expo-admin/internal/notify"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Backend is everything the console needs from the persistence API. Both
// api.Client and the in-memory demo store implement it.
type Backend interface {
	app.Backend
	app.ResultSource
	auth.Authenticator
	auth.Verifier
	Get(ctx context.Context, resource, id string) (listmanager.Record, error)
}

type env struct {
	cfg      config.Config
	tr       *i18n.Translator
	log      *logrus.Entry
	backend  Backend
	provider *auth.Provider
	lookups  app.RecordLister
	out      io.Writer
	errOut   io.Writer
	closers  []func() error

	// failures counts error toasts raised by screens of this command.
	failures int
}

// tokenProxy breaks the construction cycle between the API client and the
// credential provider that authenticates through it.
type tokenProxy struct{ provider *auth.Provider }

func (t *tokenProxy) Token() (string, bool) {
	if t.provider == nil {
		return "", false
	}
	return t.provider.Token()
}

func (t *tokenProxy) Expire() {
	if t.provider != nil {
		t.provider.Expire()
	}
}

// loadConfig reads the config file, applies flag overrides and starts the
// file logger.
func (o *globalOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
	}
	if o.lang != "" {
		cfg.UI.Language = o.lang
	}
	err = logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return cfg, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func (o *globalOptions) open(cmd *cobra.Command) (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	tr, err := i18n.New(cfg.UI.Language, cfg.UI.FallbackLanguage)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:    cfg,
		tr:     tr,
		log:    logger.For("cli").WithField("command", cmd.Name()),
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" && !o.demo {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		e.closers = append(e.closers, redisClient.Close)
	}

	store, err := e.tokenStore(o.demo, redisClient)
	if err != nil {
		e.Close()
		return nil, err
	}

	proxy := &tokenProxy{}
	if o.demo {
		e.backend = demoStore()
	} else {
		client, err := api.New(api.Options{
			BaseURL:   cfg.API.BaseURL,
			StreamURL: cfg.API.StreamURL,
			Timeout:   config.TTLDuration(cfg.API.Timeout, 15*time.Second),
			Retries:   cfg.API.Retries,
			Tokens:    proxy,
			Log:       logger.For("api"),
		})
		if err != nil {
			e.Close()
			return nil, err
		}
		e.backend = client
	}

	e.provider = auth.NewProvider(auth.Options{
		Store:         store,
		Authenticator: e.backend,
		Verifier:      e.backend,
		Log:           logger.For("auth"),
	})
	proxy.provider = e.provider

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, time.Minute)
	if redisClient != nil {
		e.lookups = redisinfra.NewListCache(redisClient, e.backend, cacheTTL)
	} else {
		e.lookups = memory.NewListCache(e.backend, cacheTTL)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.provider.Restore(ctx); err != nil {
		e.log.WithError(err).Warn("could not restore session")
	}
	if o.demo && !e.provider.IsAuthenticated() {
		if _, err := e.provider.Login(ctx, demoEmail, demoPassword); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

func (e *env) tokenStore(demo bool, client *redis.Client) (auth.TokenStore, error) {
	if demo {
		return memory.NewTokenStore(), nil
	}
	ttl := config.TTLDuration(e.cfg.Session.TTL, 12*time.Hour)
	switch e.cfg.Session.Store {
	case "memory":
		return memory.NewTokenStore(), nil
	case "redis":
		if client == nil {
			return nil, errors.New("session store redis requires redis.addr")
		}
		return redisinfra.NewTokenStore(client, e.cfg.Session.Profile, ttl), nil
	case "", "disk":
		store, err := disk.Open(e.cfg.Session.Path, e.cfg.Session.Profile)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", e.cfg.Session.Store)
	}
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.WithError(err).Warn("close")
		}
	}
	e.closers = nil
}

// requireAuth fails fast when no live session exists.
func (e *env) requireAuth() error {
	if e.provider.IsAuthenticated() {
		return nil
	}
	return fmt.Errorf("%s (run `expo-admin login`): %w", e.tr.T("cli.not_logged_in"), domain.ErrNoSession)
}

// screen builds and mounts the screen of resource. Toasts go to stderr.
func (e *env) screen(ctx context.Context, resource string) (*app.Screen, error) {
	def, err := app.Find(app.Catalog(e.tr), resource)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", resource, err)
	}
	screen, err := app.NewScreen(def, app.ScreenDeps{
		Backend:      e.backend,
		Lookups:      e.lookups,
		Notifier:     notify.Multi{notify.NewWriter(e.errOut), notify.Func(e.countFailure)},
		Translator:   e.tr,
		Log:          logger.For("screen"),
		SkeletonRows: e.cfg.UI.SkeletonRows,
	})
	if err != nil {
		return nil, err
	}
	if err := screen.Mount(ctx); err != nil {
		return nil, err
	}
	return screen, nil
}

func (e *env) countFailure(n notify.Notification) {
	if n.Severity == notify.Error || n.Severity == notify.Warning {
		e.failures++
	}
}

// run opens the environment, runs fn and closes it again.
func (o *globalOptions) run(cmd *cobra.Command, authenticated bool, fn func(ctx context.Context, e *env) error) error {
	e, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	if authenticated {
		if err := e.requireAuth(); err != nil {
			return err
		}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, e)
}
