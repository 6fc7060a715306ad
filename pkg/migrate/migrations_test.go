package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/variant-catalog/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAttributeCatalogMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_attribute_catalog"), []string{
		"CREATE TABLE IF NOT EXISTS attributes",
		"CONSTRAINT uq_attributes_tenant_code UNIQUE (tenant_id, code)",
		"CONSTRAINT uq_attribute_values_normalized UNIQUE (tenant_id, attribute_id, normalized_value)",
		"DROP TABLE IF EXISTS attribute_values",
	})
}

func TestVariantMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_products_and_variants"), []string{
		"CONSTRAINT uq_product_attributes UNIQUE (tenant_id, product_id, attribute_id)",
		"CONSTRAINT uq_product_attribute_values UNIQUE (tenant_id, product_id, attribute_id, value_id)",
		"CONSTRAINT uq_variants_tenant_product_key UNIQUE (tenant_id, product_id, attrs_key)",
		"CONSTRAINT uq_variant_attribute_values UNIQUE (variant_id, attribute_id)",
		"DROP TABLE IF EXISTS variants",
	})
}

func TestStockLedgerMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_stock_ledger"), []string{
		"CONSTRAINT uq_stock_entries_key UNIQUE (tenant_id, variant_id, location_id)",
		"CHECK (reserved >= 0 AND reserved <= on_hand)",
		"CHECK (on_hand >= 0)",
		"DROP TABLE IF EXISTS stock_entries",
	})
}

func TestLegacyMigrationContainsMarkers(t *testing.T) {
	assertContains(t, readMigration(t, "create_legacy_tables"), []string{
		"CREATE TABLE IF NOT EXISTS legacy_stock ",
		"CONSTRAINT uq_legacy_stock_markers UNIQUE (tenant_id, legacy_row_id)",
	})
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations should validate: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Barcode Index")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_barcode_index.sql") {
		t.Fatalf("unexpected file name %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestCategoryAttributeMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_category_attributes"), []string{
		"CREATE TABLE IF NOT EXISTS category_attributes",
		"CONSTRAINT uq_category_attributes UNIQUE (tenant_id, category_id, attribute_id)",
		"DROP TABLE IF EXISTS category_attributes",
	})
}
