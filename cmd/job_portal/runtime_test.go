package main

import (
	"context"
	"testing"

	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/notify"
	"github.com/jonathan/job-portal/internal/server/ratelimit"
	"github.com/jonathan/job-portal/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewMailer(t *testing.T) {
	logger := zap.NewNop().Sugar()
	ctx := context.Background()

	m, err := newMailer(ctx, config.MailConfig{Transport: config.MailTransportLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogMailer{}, m)

	m, err = newMailer(ctx, config.MailConfig{Transport: config.MailTransportSMTP, SMTP: config.SMTPConfig{Host: "smtp.example.test", Port: 587}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.SMTPMailer{}, m)

	_, err = newMailer(ctx, config.MailConfig{Transport: config.MailTransportGmail, Gmail: config.GmailConfig{CredentialsFile: "missing.json"}}, logger)
	assert.Error(t, err)

	_, err = newMailer(ctx, config.MailConfig{Transport: "pigeon"}, logger)
	assert.Error(t, err)
}

func TestOpenStore_Memory(t *testing.T) {
	st, err := openStore(context.Background(), &config.Config{Store: config.StoreMemory}, true, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, st.Store)
	assert.Nil(t, st.ping)
	assert.NoError(t, st.close(context.Background()))
}

func TestNewLimiter(t *testing.T) {
	logger := zap.NewNop().Sugar()

	l, stop, err := newLimiter(&config.Config{RateLimit: config.RateLimitConfig{Enabled: true, DefaultLimit: 10}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.Limiter{}, l)
	assert.NoError(t, stop(context.Background()))

	l, stop, err = newLimiter(&config.Config{Redis: config.RedisConfig{URL: "redis://localhost:6379/0"}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.RedisLimiter{}, l)
	assert.NoError(t, stop(context.Background()))

	_, _, err = newLimiter(&config.Config{Redis: config.RedisConfig{URL: "not a url"}}, logger)
	assert.Error(t, err)
}

func TestServeOverrides(t *testing.T) {
	t.Cleanup(func() { serveStore, servePort = "", 0 })
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	assert.Empty(t, serveOverrides())

	serveStore, servePort = config.StoreMemory, 9191
	cfg, err := config.Load("", serveOverrides()...)
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store)
	assert.Equal(t, 9191, cfg.Server.Port)
}
