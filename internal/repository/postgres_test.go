package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/db"
	"github.com/rpattn/standards/internal/domain"
)

// openTestDB connects to the database named by STANDARDS_TEST_DB_HOST and
// applies migrations. Tests are skipped when it is not set.
func openTestDB(t *testing.T) *db.Connection {
	t.Helper()
	host := os.Getenv("STANDARDS_TEST_DB_HOST")
	if host == "" {
		t.Skip("STANDARDS_TEST_DB_HOST not set")
	}
	cfg := db.DefaultConfig()
	cfg.Host = host
	if err := db.RunMigrations(cfg); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	conn, err := db.NewConnection(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(conn.Close)
	return conn
}

func TestStandardRepositoryOptimisticUpdate(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	repo := NewStandardRepository(conn.Pool)

	standard := domain.NewStandard(uuid.New(), "Logging", "logging-"+uuid.NewString()[:8], "", nil, nil)
	stored, err := repo.Add(ctx, standard)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	stored.Version = 2
	if _, err := repo.Update(ctx, stored, 1); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	stored.Version = 3
	if _, err := repo.Update(ctx, stored, 1); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	found, err := repo.FindBySlug(ctx, standard.SpaceID, standard.Slug)
	if err != nil {
		t.Fatalf("find by slug failed: %v", err)
	}
	if found.Version != 2 {
		t.Fatalf("expected version 2, got %d", found.Version)
	}
}

func TestStandardRepositoryRejectsDuplicateSlug(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	repo := NewStandardRepository(conn.Pool)

	spaceID := uuid.New()
	if _, err := repo.Add(ctx, domain.NewStandard(spaceID, "A", "dup", "", nil, nil)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	_, err := repo.Add(ctx, domain.NewStandard(spaceID, "B", "dup", "", nil, nil))
	if !errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestVersionSummaryRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	standards := NewStandardRepository(conn.Pool)
	versions := NewStandardVersionRepository(conn.Pool)

	standard, err := standards.Add(ctx, domain.NewStandard(uuid.New(), "Errors", "errors", "", nil, nil))
	if err != nil {
		t.Fatalf("add standard failed: %v", err)
	}
	version, err := versions.Add(ctx, domain.NewStandardVersion(standard.ID, "Errors", "errors", "", nil, 1, nil, nil))
	if err != nil {
		t.Fatalf("add version failed: %v", err)
	}
	if err := versions.UpdateSummary(ctx, version.ID, "wrap everything"); err != nil {
		t.Fatalf("update summary failed: %v", err)
	}
	latest, err := versions.FindLatestByStandardID(ctx, standard.ID)
	if err != nil {
		t.Fatalf("find latest failed: %v", err)
	}
	if !latest.HasSummary() || *latest.Summary != "wrap everything" {
		t.Fatalf("summary not stored: %#v", latest.Summary)
	}
}
