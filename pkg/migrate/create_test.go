package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAtSlugsAccentedNames(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	path, err := createAt(dir, "Índice de Códigos", now)
	require.NoError(t, err)
	assert.Equal(t, "20260302100000_indice_de_codigos.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))
}

func TestCreateAtOrdersAfterExistingVersions(t *testing.T) {
	dir := t.TempDir()
	shipped := filepath.Join(dir, "20260301090400_create_category_attributes.sql")
	require.NoError(t, os.WriteFile(shipped, []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	// clock behind the newest shipped migration
	path, err := createAt(dir, "add barcode index", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "20260301090401_add_barcode_index.sql", filepath.Base(path))

	got, err := versions(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260301090400", "20260301090401"}, got)
}

func TestCreateAtRejectsEmptyNames(t *testing.T) {
	_, err := createAt(t.TempDir(), "***", time.Now())
	require.Error(t, err)
	_, err = createAt("", "x", time.Now())
	require.Error(t, err)
}

func TestValidateDirReportsEverySectionProblem(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"20260301000000_swapped.sql":    "-- +goose Down\n-- +goose Up\n",
		"20260301000001_unbalanced.sql": "-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n",
		"20260301000002_no_down.sql":    "-- +goose Up\n",
		"20260301000003_fine.sql":       "-- +goose Up\n-- +goose StatementBegin\n-- +goose StatementEnd\n-- +goose Down\n",
		"notes.txt":                     "ignored",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	err := ValidateDir(dir)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "swapped.sql\" has its Down section before Up")
	assert.Contains(t, msg, "unbalanced.sql\" has 1 StatementBegin but 0 StatementEnd")
	assert.Contains(t, msg, "no_down.sql\" missing")
	assert.NotContains(t, msg, "fine.sql")
}
