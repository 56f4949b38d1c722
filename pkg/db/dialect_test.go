package db

import (
	"testing"

	"github.com/floorops/floorops/internal/config"
)

func TestDialectSelection(t *testing.T) {
	if _, err := Dialect(config.Config{DBType: "postgres"}); err != nil {
		t.Fatalf("postgres: %v", err)
	}
	if _, err := Dialect(config.Config{DBType: "sqlite", DBName: "floorops.db"}); err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	for _, unsupported := range []string{"mysql", "oracle", ""} {
		if _, err := Dialect(config.Config{DBType: unsupported}); err == nil {
			t.Fatalf("expected error for %q", unsupported)
		}
	}
}
