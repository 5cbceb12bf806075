// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artpar/wxgate/adapters/clock"
	wxhttp "github.com/artpar/wxgate/adapters/http"
	"github.com/artpar/wxgate/adapters/idgen"
	"github.com/artpar/wxgate/adapters/memory"
	"github.com/artpar/wxgate/adapters/metrics"
	"github.com/artpar/wxgate/adapters/oauth"
	"github.com/artpar/wxgate/adapters/random"
	"github.com/artpar/wxgate/adapters/sqlite"
	"github.com/artpar/wxgate/app"
	"github.com/artpar/wxgate/config"
	"github.com/artpar/wxgate/domain/message"
	"github.com/artpar/wxgate/domain/reply"
	"github.com/artpar/wxgate/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Options customizes application construction.
type Options struct {
	// Handler processes inbound messages. When nil, a default echo
	// handler is installed.
	Handler app.Handler

	// EventHandler processes third-party platform events. Optional.
	EventHandler app.EventHandler
}

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Holder
	DB         *sqlite.DB
	Sessions   ports.SessionStore
	Metrics    *metrics.Collector
	Webhook    *app.WebhookService
	OAuth      *oauth.Client
	HTTPServer *http.Server
}

// New creates and initializes the application from a config file path.
func New(configPath string, opts Options) (*App, error) {
	holder, err := newHolder(configPath)
	if err != nil {
		return nil, err
	}
	cfg := holder.Get()

	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing wxgate")

	a := &App{
		Logger: logger,
		Config: holder,
	}

	clk := clock.Real{}

	if err := a.initStorage(cfg, clk); err != nil {
		return nil, err
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		collector, registry := metrics.New()
		a.Metrics = collector
		gatherer = registry
		logger.Info().Msg("prometheus metrics enabled")
	}

	handler := opts.Handler
	if handler == nil {
		handler = echoHandler
	}

	a.Webhook = app.NewWebhookService(handler, logger, a.Metrics, clk, idgen.UUID{})
	if opts.EventHandler != nil {
		a.Webhook.SetEventHandler(opts.EventHandler)
	}

	if cfg.OAuth.Enabled {
		a.OAuth = oauth.NewClient(oauth.Config{
			AppID:       cfg.WeChat.AppID,
			AppSecret:   cfg.WeChat.AppSecret,
			RedirectURI: cfg.OAuth.RedirectURI,
		}, random.Real{})
		logger.Info().Str("scope", cfg.OAuth.Scope).Msg("oauth login enabled")
	}

	a.initHTTPServer(cfg, gatherer)

	return a, nil
}

func newHolder(path string) (*config.Holder, error) {
	// Env-only deployments have no file to hold; synthesize one in that
	// case by loading once and wrapping it.
	if path == "" || !fileExists(path) {
		if !config.HasEnvConfig() {
			return nil, fmt.Errorf("no configuration found: provide config file or set WXGATE_WECHAT_TOKEN")
		}
	}
	if path != "" && fileExists(path) {
		return config.NewHolder(path, zerolog.Nop())
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	return config.NewStaticHolder(cfg), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (a *App) initStorage(cfg *config.Config, clk ports.Clock) error {
	if cfg.Session.Store == "sqlite" {
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.Sessions = sqlite.NewSessionStore(db, clk)
		a.Logger.Info().Str("dsn", cfg.Database.DSN).Msg("sqlite session store initialized")
		return nil
	}

	a.Sessions = memory.NewSessionStore(clk)
	a.Logger.Info().Msg("in-memory session store initialized")
	return nil
}

func (a *App) initHTTPServer(cfg *config.Config, gatherer prometheus.Gatherer) {
	handler := wxhttp.NewHandler(a.Webhook, cfg.WeChat.Token, cfg.WeChat.CallbackPath, a.Logger, a.Metrics, gatherer)
	if a.OAuth != nil {
		handler.EnableOAuth(a.OAuth, a.Sessions, cfg.OAuth.Scope, cfg.Session.TTL)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = handler.Server(addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	// Token rotation takes effect without restart.
	a.Config.OnChange(func(c *config.Config) {
		handler.SetToken(c.WeChat.Token)
	})

	a.Logger.Info().Str("addr", addr).Str("path", cfg.WeChat.CallbackPath).Msg("http server configured")
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if err := a.Config.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	a.Config.WatchSignals()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.Config.Stop()

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// echoHandler mirrors text messages back to the sender and stays silent
// on everything else.
func echoHandler(ctx context.Context, msg message.Message) (any, error) {
	if text, ok := msg.(*message.Text); ok {
		return text.Content(), nil
	}
	return reply.NewEmpty(), nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
