// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"themebuilder/internal/database"
)

// testDSN returns the PostgreSQL connection string for testing.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "themebuilder")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "themebuilder")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB connects through the production pool setup and migrates. The
// test is skipped when PostgreSQL is unavailable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Connect(ctx, testDSN(), database.Pool{MaxOpen: 4, MaxIdle: 1})
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// createTestTemplate inserts a template entity with the given metadata and
// removes it when the test finishes.
func createTestTemplate(t *testing.T, db *sql.DB, title string, meta map[string]string) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO posts (post_type, title, status) VALUES ('tb_template', $1, 'publish') RETURNING id`,
		title).Scan(&id)
	if err != nil {
		t.Fatalf("insert template: %v", err)
	}
	t.Cleanup(func() { cleanPosts(t, db, id) })

	for k, v := range meta {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES ($1, $2, $3)`, id, k, v); err != nil {
			t.Fatalf("insert meta %s: %v", k, err)
		}
	}
	return id
}

// cleanPosts removes test entities by id. Metadata goes with them.
func cleanPosts(t *testing.T, db *sql.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM posts WHERE id = $1", id)
	}
}
