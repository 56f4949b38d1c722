// Package testdb opens throwaway in-memory sqlite databases carrying
// the floor schema for service tests.
package testdb

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE tables (
		id INTEGER PRIMARY KEY,
		number INTEGER NOT NULL UNIQUE,
		capacity INTEGER NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		state INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE product_categories (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE products (
		id INTEGER PRIMARY KEY,
		category_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		price INTEGER NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		table_id INTEGER NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		opened_at DATETIME NOT NULL,
		closed_at DATETIME,
		subtotal INTEGER NOT NULL DEFAULT 0,
		discount_rate REAL NOT NULL DEFAULT 0,
		discount_amount INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		closed_by INTEGER
	)`,
	`CREATE UNIQUE INDEX orders_open_per_table ON orders (table_id) WHERE status = 0`,
	`CREATE TABLE order_items (
		id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price INTEGER NOT NULL,
		line_total INTEGER NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		UNIQUE (order_id, product_id)
	)`,
	`CREATE TABLE payments (
		id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL UNIQUE,
		amount INTEGER NOT NULL,
		method INTEGER NOT NULL,
		received_at DATETIME NOT NULL
	)`,
	`CREATE TABLE reservations (
		id INTEGER PRIMARY KEY,
		table_id INTEGER NOT NULL,
		customer_name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		reserved_at DATETIME NOT NULL,
		party_size INTEGER,
		notes TEXT,
		metadata TEXT,
		status INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE order_logs (
		id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		old_value TEXT,
		new_value TEXT,
		actor TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Open returns an isolated in-memory database with the floor schema.
// FOR UPDATE clauses are stripped before execution because sqlite has
// no row locks; a single connection keeps statements serialized.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	db.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", stripForUpdate)
	db.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", stripForUpdate)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range schema {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}
	return db
}
