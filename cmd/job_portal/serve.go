package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/accounts"
	"github.com/jonathan/job-portal/internal/applications"
	"github.com/jonathan/job-portal/internal/catalog"
	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/dashboard"
	"github.com/jonathan/job-portal/internal/filestore"
	"github.com/jonathan/job-portal/internal/jobs"
	"github.com/jonathan/job-portal/internal/notify"
	"github.com/jonathan/job-portal/internal/preferences"
	"github.com/jonathan/job-portal/internal/server"
	"github.com/jonathan/job-portal/internal/server/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	serveStore   string
	serveMigrate bool
	serveDev     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for accounts, jobs, applications, reference data and job preferences.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Store backend: postgres or memory (overrides STORE)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply pending database migrations on startup")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Human-readable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime(serveDev, serveOverrides()...)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, serveMigrate, logger)
	if err != nil {
		return errors.Wrap(err, "failed to open store")
	}

	mailer, err := newMailer(ctx, cfg.Mail, logger)
	if err != nil {
		_ = st.close(ctx)
		return errors.Wrap(err, "failed to build mailer")
	}
	files, err := filestore.NewLocal(cfg.Uploads.Dir)
	if err != nil {
		_ = st.close(ctx)
		return err
	}

	dispatcher := notify.NewDispatcher(mailer, notify.DispatcherConfig{
		Interval:  cfg.Notify.Interval,
		QueueSize: cfg.Notify.QueueSize,
		Workers:   cfg.Notify.Workers,
	}, logger)
	matcher := preferences.NewMatcher(st, dispatcher, logger)
	dispatcher.OnJobCreated(matcher.HandleJobCreated)

	tokens := server.NewJWTService(&cfg.JWT)
	jobSvc := jobs.NewService(st, dispatcher, logger)
	svc := server.Services{
		Accounts:     accounts.NewService(st, &cfg.Password, tokens, logger),
		Jobs:         jobSvc,
		Applications: applications.NewService(st, files, jobSvc, dispatcher, logger, applications.WithMaxAttachmentBytes(cfg.Uploads.MaxBytes)),
		Catalog:      catalog.NewService(st, logger),
		Preferences:  preferences.NewService(st, logger),
		Dashboard:    dashboard.NewService(st),
		Ping:         st.ping,
	}

	limiter, stopLimiter, err := newLimiter(cfg, logger)
	if err != nil {
		_ = dispatcher.Close(ctx)
		_ = st.close(ctx)
		return err
	}

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		AllowedOrigin:   cfg.Server.AllowedOrigin,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxUploadBytes:  cfg.Uploads.MaxBytes,
	}, svc, tokens, limiter, logger)

	return srv.Run(ctx, dispatcher.Close, stopLimiter, st.close)
}

// serveOverrides turns the explicitly set serve flags into config overrides.
func serveOverrides() []config.Option {
	var opts []config.Option
	if serveStore != "" {
		opts = append(opts, config.WithOverride("store", serveStore))
	}
	if servePort != 0 {
		opts = append(opts, config.WithOverride("server.port", servePort))
	}
	return opts
}

// newLimiter shares limits through Redis when REDIS_URL is set and keeps
// them in process otherwise.
func newLimiter(cfg *config.Config, logger *zap.SugaredLogger) (ratelimit.Allower, func(context.Context) error, error) {
	rl := ratelimit.FromConfig(cfg.RateLimit)
	if cfg.Redis.URL == "" {
		l := ratelimit.NewLimiter(rl)
		return l, func(context.Context) error { l.Stop(); return nil }, nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid REDIS_URL")
	}
	client := redis.NewClient(opts)
	logger.Infow("using redis rate limiter", "addr", opts.Addr)
	return ratelimit.NewRedisLimiter(client, rl, logger), func(context.Context) error { return client.Close() }, nil
}
