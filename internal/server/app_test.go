package server

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

type fakeRepos struct {
	migrateErr error
	migrated   chan struct{}
}

func (f *fakeRepos) RunMigrations(context.Context, *sql.DB) error { return f.migrateErr }

func (f *fakeRepos) SchemaVersion(context.Context, *sql.DB) (int64, error) {
	if f.migrated != nil {
		close(f.migrated)
	}
	return 1, nil
}

func (f *fakeRepos) Users(dbx.DBTX) users.Repository { return nil }

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.MetricsAddr = "127.0.0.1:0"
	c.HashMemoryKB = 64
	c.HashThreads = 1
	c.LogFormat = "text"
	return c
}

// newTestApp swaps the database and repository factories for sqlmock and
// fakeRepos for the duration of the test.
func newTestApp(t *testing.T, c *config.Config, repos *fakeRepos) (*App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	oldOpen, oldRepos := openDB, newRepositoryManager
	t.Cleanup(func() { openDB, newRepositoryManager = oldOpen, oldRepos })
	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return repos }

	app, err := NewApp(c, io.Discard)
	require.NoError(t, err)
	app.connectBackoff = func() retry.Backoff {
		return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
	}
	t.Cleanup(func() { _ = app.Close() })
	return app, mock
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig()
	c.SecretKey = ""
	_, err := NewApp(c, io.Discard)
	require.ErrorContains(t, err, "invalid config")

	c = testConfig()
	c.LogLevel = "loud"
	_, err = NewApp(c, io.Discard)
	require.Error(t, err)
}

func TestNewApp_WarnsOnWeakSecret(t *testing.T) {
	old := openDB
	t.Cleanup(func() { openDB = old })
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	openDB = func(string) (*sql.DB, error) { return db, nil }

	var buf bytes.Buffer
	app, err := NewApp(testConfig(), &buf)
	require.NoError(t, err)
	_ = app.Close()
	assert.Contains(t, buf.String(), "Token secret is weak")

	c := testConfig()
	c.SecretKey = strings.Repeat("s", config.MinSecretKeyLength)
	buf.Reset()
	app, err = NewApp(c, &buf)
	require.NoError(t, err)
	_ = app.Close()
	assert.NotContains(t, buf.String(), "Token secret is weak")
}

func TestNewApp_OpenError(t *testing.T) {
	old := openDB
	t.Cleanup(func() { openDB = old })
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

	_, err := NewApp(testConfig(), io.Discard)
	require.ErrorContains(t, err, "db open error")
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	repos := &fakeRepos{migrated: make(chan struct{})}
	app, mock := newTestApp(t, testConfig(), repos)
	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case <-repos.migrated:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not reach migrations")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_DatabaseNeverReady(t *testing.T) {
	app, mock := newTestApp(t, testConfig(), &fakeRepos{})
	for i := 0; i < 3; i++ {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	}

	err := app.Run(context.Background())
	require.ErrorContains(t, err, "db connect")
	require.ErrorContains(t, err, "connection refused")
}

func TestRun_MigrationError(t *testing.T) {
	app, mock := newTestApp(t, testConfig(), &fakeRepos{migrateErr: errors.New("migrate: boom")})
	mock.ExpectPing()

	err := app.Run(context.Background())
	require.ErrorContains(t, err, "migrate: boom")
}

func TestRun_BadListenAddress(t *testing.T) {
	c := testConfig()
	c.EndpointAddrGRPC = "not-an-address"
	c.MetricsAddr = ""
	app, mock := newTestApp(t, c, &fakeRepos{})
	mock.ExpectPing()

	err := app.Run(context.Background())
	require.ErrorContains(t, err, "grpc server")
}
