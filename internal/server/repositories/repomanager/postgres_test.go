package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewPostgresRepositoryManager_SatisfiesInterface(t *testing.T) {
	var m RepositoryManager = NewPostgresRepositoryManager()
	require.NotNil(t, m)
}

func TestUsers_ReturnsPostgresRepo(t *testing.T) {
	db := newDB(t)
	m := NewPostgresRepositoryManager()

	repo := m.Users(db)
	require.NotNil(t, repo)
	_, ok := repo.(*users.PostgresRepository)
	assert.True(t, ok)
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "migrate")
}

func TestSchemaVersion(t *testing.T) {
	db := newDB(t)

	orig := gooseVersionContext
	t.Cleanup(func() { gooseVersionContext = orig })
	gooseVersionContext = func(ctx context.Context, db *sql.DB) (int64, error) {
		return 1, nil
	}

	v, err := NewPostgresRepositoryManager().SchemaVersion(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
