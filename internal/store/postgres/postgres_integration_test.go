package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aurora-chat/aurora/internal/store"
	"github.com/aurora-chat/aurora/internal/store/storetest"
)

func makePGStore(t *testing.T) store.Store {
	t.Helper()

	dsn := os.Getenv("AURORA_POSTGRES_DSN")
	if dsn == "" {
		if testing.Short() {
			t.Skip("AURORA_POSTGRES_DSN not set; skipping postgres store integration test")
		}
		dsn = startPostgres(t)
	}

	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return NewWithDB(db)
}

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "aurora",
			"POSTGRES_PASSWORD": "aurora",
			"POSTGRES_DB":       "aurora",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("cannot start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("postgres://aurora:aurora@%s:%s/aurora?sslmode=disable", host, port.Port())
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}

func TestPostgresStore_QuotaConcurrency(t *testing.T) {
	storetest.RunQuotaConcurrency(t, makePGStore)
}
