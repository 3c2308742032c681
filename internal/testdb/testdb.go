// Package testdb opens databases for repository and workflow tests.
package testdb

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/config"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var sqliteSchema = []string{
	`CREATE TABLE products (
  product_id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_code TEXT NOT NULL UNIQUE,
  product_name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  status_code TEXT NOT NULL DEFAULT 'A',
  created_at DATETIME
)`,
	`CREATE TABLE inventory (
  inventory_id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL UNIQUE,
  quantity INTEGER NOT NULL DEFAULT 0,
  location TEXT,
  updated_at DATETIME
)`,
	`CREATE TABLE production_orders (
  order_id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_no TEXT NOT NULL UNIQUE,
  order_date DATETIME NOT NULL,
  notes TEXT,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME
)`,
	`CREATE TABLE order_details (
  detail_id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  unit_price NUMERIC NOT NULL,
  line_amount NUMERIC NOT NULL
)`,
	`CREATE TABLE product_documents (
  doc_id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL,
  doc_title TEXT NOT NULL,
  content TEXT,
  file_type TEXT,
  created_at DATETIME
)`,
	`CREATE TABLE product_specs (
  spec_id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL,
  spec_xml TEXT NOT NULL,
  version TEXT NOT NULL,
  created_at DATETIME
)`,
	`CREATE TABLE quality_inspections (
  inspection_id INTEGER PRIMARY KEY AUTOINCREMENT,
  inspection_date DATETIME NOT NULL,
  order_id INTEGER,
  product_id INTEGER NOT NULL,
  inspector TEXT NOT NULL,
  result TEXT NOT NULL,
  defect_count INTEGER NOT NULL DEFAULT 0,
  remarks TEXT,
  created_at DATETIME
)`,
	`CREATE TABLE production_history (
  history_id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  parent_history_id INTEGER,
  process_step TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  work_date DATETIME NOT NULL,
  notes TEXT
)`,
}

// SQLite opens a private in-memory database holding the MES tables. Routines,
// partitions and materialized views are Postgres-only and are not created.
func SQLite(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range sqliteSchema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create sqlite schema: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// Postgres opens the migrated database named by MES_DB_DSN and returns a
// transaction that is rolled back when the test ends. The test is skipped when
// the variable is unset.
func Postgres(t *testing.T) *gorm.DB {
	t.Helper()

	conn := openPostgres(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

// PostgresCommitted opens the migrated database without a wrapping
// transaction, for tests that need writes visible across connections. The
// test must remove what it commits.
func PostgresCommitted(t *testing.T) *gorm.DB {
	t.Helper()
	return openPostgres(t)
}

func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(config.EnvDBDSN)
	if dsn == "" {
		t.Skipf("%s is not set", config.EnvDBDSN)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Registered first so it runs after any rollback or row cleanup.
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// MustCreateProduct inserts a product priced at price.
func MustCreateProduct(t *testing.T, tx *gorm.DB, code, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ProductCode: code,
		ProductName: "Product " + code,
		UnitPrice:   decimal.RequireFromString(price),
		StatusCode:  "A",
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustCreateInventory inserts an inventory record for productID.
func MustCreateInventory(t *testing.T, tx *gorm.DB, productID int64, quantity int) *models.InventoryRecord {
	t.Helper()
	record := &models.InventoryRecord{ProductID: productID, Quantity: quantity}
	if err := tx.Create(record).Error; err != nil {
		t.Fatalf("create inventory: %v", err)
	}
	return record
}

// MustCreateOrder inserts an empty production order.
func MustCreateOrder(t *testing.T, tx *gorm.DB, orderNo string) *models.ProductionOrder {
	t.Helper()
	order := &models.ProductionOrder{OrderNo: orderNo, OrderDate: Today(), TotalAmount: decimal.Zero}
	if err := tx.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

// Today returns midnight UTC of the current date.
func Today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
