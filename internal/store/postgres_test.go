//go:build integration

package store

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SurakshaKumari/gt-3D-backend/internal/database"
)

func TestPostgresStore(t *testing.T) {
	dsn := startPostgres(t)

	runStoreSuite(t, func(t *testing.T) Store {
		pool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			t.Fatalf("create pool: %v", err)
		}
		t.Cleanup(func() {
			_, _ = pool.Exec(context.Background(), `TRUNCATE projects`)
			pool.Close()
		})
		if _, err := pool.Exec(context.Background(), `TRUNCATE projects`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return NewPostgres(pool)
	})
}

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("scenes"),
		tcpostgres.WithUsername("scene"),
		tcpostgres.WithPassword("scenepass"),
		tcpostgres.WithSQLDriver("pgx"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	m, err := database.NewMigrator(dsn, slog.Default())
	if err != nil {
		t.Fatalf("create migrator: %v", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	return dsn
}
