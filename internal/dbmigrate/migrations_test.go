package dbmigrate

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(Migrations(), DefaultMigrationsDir+"/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) < 3 {
		t.Fatalf("expected at least 3 migrations, got %d", len(files))
	}

	for _, want := range []string{"profiles", "planning_sessions", "reports"} {
		found := false
		for _, f := range files {
			if strings.Contains(f, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing migration for %s", want)
		}
	}

	for _, f := range files {
		data, err := fs.ReadFile(Migrations(), f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		body := string(data)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Errorf("%s must have goose Up and Down sections", f)
		}
	}
}

func TestRun_EmptyURL(t *testing.T) {
	if err := Run("up", "", ""); err == nil {
		t.Fatal("expected error for empty database URL")
	}
}
