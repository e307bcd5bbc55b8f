package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/db"
	"github.com/jonathan/job-portal/internal/notify"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/store/memstore"
	"go.uber.org/zap"
)

// openedStore is a store plus its health check and shutdown hook.
type openedStore struct {
	store.Store
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func loadRuntime(dev bool, opts ...config.Option) (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(configPath, opts...)
	if err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(observability.LoggerConfig{
		Development: dev || cfg.Log.Development,
		Level:       cfg.Log.Level,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build logger")
	}
	return cfg, logger, nil
}

// openStore connects to the configured backend. Postgres schemas are migrated
// first when migrate is set.
func openStore(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.SugaredLogger) (*openedStore, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warnw("using in-memory store; data is lost on exit")
		return &openedStore{
			Store: memstore.New(),
			close: func(context.Context) error { return nil },
		}, nil
	}

	pool := db.DefaultPoolConfig()
	if cfg.Database.MaxOpenConns > 0 {
		pool.MaxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns > 0 {
		pool.MaxIdleConns = cfg.Database.MaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		pool.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	}
	if cfg.Database.ConnectTimeout > 0 {
		pool.ConnectTimeout = cfg.Database.ConnectTimeout
	}
	database, err := db.Connect(ctx, cfg.Database.URL, pool, logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		if _, err := db.Migrate(ctx, database.SQL(), logger); err != nil {
			_ = database.Close()
			return nil, err
		}
	}
	return &openedStore{
		Store: database,
		ping:  database.Ping,
		close: func(context.Context) error { return database.Close() },
	}, nil
}

// newMailer builds the configured outbound transport.
func newMailer(ctx context.Context, cfg config.MailConfig, logger *zap.SugaredLogger) (notify.Mailer, error) {
	from := notify.Sender{Address: cfg.FromAddress, Name: cfg.FromName}
	switch cfg.Transport {
	case config.MailTransportSMTP:
		return notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     from,
		}), nil
	case config.MailTransportGmail:
		return notify.NewGmailMailer(ctx, notify.GmailConfig{
			CredentialsFile: cfg.Gmail.CredentialsFile,
			TokenFile:       cfg.Gmail.TokenFile,
			From:            from,
		})
	case config.MailTransportLog:
		return notify.NewLogMailer(logger), nil
	}
	return nil, errors.Newf("unknown mail transport %q", cfg.Transport)
}
