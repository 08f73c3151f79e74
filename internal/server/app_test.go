package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/viewstore/internal/dbx"
	"github.com/dmitrijs2005/viewstore/internal/logging"
	"github.com/dmitrijs2005/viewstore/internal/server/config"
	"github.com/dmitrijs2005/viewstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/viewstore/internal/server/repositories/views"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepoManager struct {
	migrateErr error
	migrated   bool
}

func (m *stubRepoManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}

func (m *stubRepoManager) Views(db dbx.DBTX) views.Repository {
	return views.NewPostgresRepository(db)
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.DBMaxOpenConns = 3
	return c
}

// withSeams swaps the db and repository manager constructors for the test.
func withSeams(t *testing.T, rm *stubRepoManager) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	origOpen, origRM := openDB, newRepositoryManager
	t.Cleanup(func() {
		openDB, newRepositoryManager = origOpen, origRM
		_ = db.Close()
	})
	openDB = func(dsn string) (*sqlx.DB, error) { return sqlx.NewDb(db, "pgx"), nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
	return mock
}

func TestNewApp_RunsMigrationsAndConfiguresPool(t *testing.T) {
	rm := &stubRepoManager{}
	mock := withSeams(t, rm)
	mock.ExpectPing()

	app, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.NoError(t, err)
	assert.True(t, rm.migrated)
	assert.Equal(t, 3, app.db.Stats().MaxOpenConnections)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_PingFailureClosesPool(t *testing.T) {
	rm := &stubRepoManager{}
	mock := withSeams(t, rm)
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error")
	assert.False(t, rm.migrated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_MigrationFailure(t *testing.T) {
	rm := &stubRepoManager{migrateErr: errors.New("dirty")}
	mock := withSeams(t, rm)
	mock.ExpectPing()
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error: dirty")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_StopsOnCancelAndClosesPool(t *testing.T) {
	rm := &stubRepoManager{}
	mock := withSeams(t, rm)
	mock.ExpectPing()
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
