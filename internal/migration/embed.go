package migration

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// SchemaSQL returns the embedded up migrations concatenated in version
// order. The test harness derives its sqlite schema checks from this so
// the DDL the tests run against cannot drift from the one production gets.
func SchemaSQL() (string, error) {
	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	if err != nil {
		return "", fmt.Errorf("read migrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		data, err := embeddedMigrations.ReadFile(migrationsDir + "/" + name)
		if err != nil {
			return "", fmt.Errorf("read migration %s: %w", name, err)
		}
		sb.Write(data)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
