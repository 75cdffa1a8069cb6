package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/moura-tracker/timeclock/internal/pkg/database"
)

// TestDatabaseSetup holds the read-only pool under test and a writable connection
// used to seed fixtures.
type TestDatabaseSetup struct {
	DB   *database.DB
	Seed *pgx.Conn
}

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id              BIGSERIAL PRIMARY KEY,
	name            VARCHAR(255) NOT NULL,
	email           VARCHAR(255) NOT NULL UNIQUE,
	password        VARCHAR(255) NOT NULL,
	role            VARCHAR(50)  NOT NULL,
	work_start_time VARCHAR(8),
	work_end_time   VARCHAR(8),
	created_at      TIMESTAMP NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMP
);
CREATE TABLE IF NOT EXISTS work_records (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	employee_id      BIGINT NOT NULL REFERENCES employees(id),
	checkin_time     TIMESTAMP NOT NULL,
	checkout_time    TIMESTAMP,
	duration_seconds BIGINT,
	reason_id        VARCHAR(50),
	details          TEXT
);
`

// NewTestDatabase connects to TEST_DATABASE_URL, skipping the test when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	seed, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect seed connection: %v", err)
	}
	if _, err := seed.Exec(ctx, schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db, Seed: seed}
	t.Cleanup(setup.Close)
	if err := setup.TruncateAllTables(ctx); err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
	return setup
}

// TruncateAllTables empties the fixture tables.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	for _, table := range []string{"work_records", "employees"} {
		if _, err := s.Seed.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
	_ = s.Seed.Close(context.Background())
}
