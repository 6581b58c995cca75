package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rideinsights/backend/internal/dataset"
	"github.com/rideinsights/backend/internal/normalize"
	"github.com/rideinsights/backend/pkg/config"
	"github.com/rideinsights/backend/pkg/logger"
)

func writeRawFile(t *testing.T, path, content string) error {
	t.Helper()
	return os.WriteFile(path, []byte(content), 0o644)
}

// writeWorkbook creates a minimal booking workbook for loader tests.
func writeWorkbook(t *testing.T, path string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, cells := range rows {
		for j, cell := range cells {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, cell))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func newTestLoader(t *testing.T, cfg config.DataConfig) *Loader {
	t.Helper()
	return NewLoader(cfg, normalize.New(logger.Nop()), logger.Nop())
}

func TestLoad_PrefersCache(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.csv")
	require.NoError(t, writeRawFile(t, cachePath,
		"Booking_ID,Booking_Status\nCNR1,Success\n"))

	loader := newTestLoader(t, config.DataConfig{
		// Source deliberately missing: the cache alone must be enough
		SourcePath: filepath.Join(dir, "missing.xlsx"),
		CachePath:  cachePath,
	})

	got, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, 1, got.NumRows())
	assert.Equal(t, "CNR1", got.Rows[0].String(dataset.ColBookingID))
}

func TestLoad_CacheWinsOverNewerSourceByDefault(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.csv")
	sourcePath := filepath.Join(dir, "source.xlsx")

	require.NoError(t, writeRawFile(t, cachePath,
		"Booking_ID\nFROM_CACHE\n"))
	writeWorkbook(t, sourcePath, [][]string{
		{"Booking_ID"},
		{"FROM_SOURCE"},
	})

	// Make the source strictly newer than the cache
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(cachePath, old, old))

	loader := newTestLoader(t, config.DataConfig{
		SourcePath: sourcePath,
		CachePath:  cachePath,
	})

	got, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, 1, got.NumRows())

	// Path-keyed cache: staleness is invisible without CompareModTime
	assert.Equal(t, "FROM_CACHE", got.Rows[0].String(dataset.ColBookingID))
}

func TestLoad_CompareModTimeRebuildsStaleCache(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.csv")
	sourcePath := filepath.Join(dir, "source.xlsx")

	require.NoError(t, writeRawFile(t, cachePath,
		"Booking_ID\nFROM_CACHE\n"))
	writeWorkbook(t, sourcePath, [][]string{
		{"Booking_ID"},
		{"FROM_SOURCE"},
	})

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(cachePath, old, old))

	loader := newTestLoader(t, config.DataConfig{
		SourcePath:     sourcePath,
		CachePath:      cachePath,
		CompareModTime: true,
	})

	got, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, 1, got.NumRows())
	assert.Equal(t, "FROM_SOURCE", got.Rows[0].String(dataset.ColBookingID))

	// The rebuild rewrote the cache
	rewritten, err := ReadCSV(cachePath)
	require.NoError(t, err)
	assert.Equal(t, "FROM_SOURCE", rewritten.Rows[0].String(dataset.ColBookingID))
}

func TestLoad_NoCacheNoSource(t *testing.T) {
	dir := t.TempDir()

	loader := newTestLoader(t, config.DataConfig{
		SourcePath: filepath.Join(dir, "missing.xlsx"),
		CachePath:  filepath.Join(dir, "missing.csv"),
	})

	_, err := loader.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestRebuild_BypassesCache(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.csv")
	sourcePath := filepath.Join(dir, "source.xlsx")

	require.NoError(t, writeRawFile(t, cachePath,
		"Booking_ID\nFROM_CACHE\n"))
	writeWorkbook(t, sourcePath, [][]string{
		{"Booking_ID", "Payment_Method"},
		{"FROM_SOURCE", ""},
	})

	loader := newTestLoader(t, config.DataConfig{
		SourcePath: sourcePath,
		CachePath:  cachePath,
	})

	got, err := loader.Rebuild()
	require.NoError(t, err)
	require.Equal(t, 1, got.NumRows())
	assert.Equal(t, "FROM_SOURCE", got.Rows[0].String(dataset.ColBookingID))

	// The rebuild normalized before caching: the sentinel label is on disk
	rewritten, err := ReadCSV(cachePath)
	require.NoError(t, err)
	assert.Equal(t, dataset.SentinelPaymentMethod,
		rewritten.Rows[0].String(dataset.ColPaymentMethod))
}

func TestSourceNewerThanCache(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.csv")
	sourcePath := filepath.Join(dir, "source.xlsx")

	require.NoError(t, writeRawFile(t, cachePath, "Booking_ID\n"))
	writeWorkbook(t, sourcePath, [][]string{{"Booking_ID"}})

	loader := newTestLoader(t, config.DataConfig{
		SourcePath: sourcePath,
		CachePath:  cachePath,
	})

	// Cache fresher than source
	now := time.Now()
	require.NoError(t, os.Chtimes(sourcePath, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(cachePath, now, now))
	assert.False(t, loader.SourceNewerThanCache())

	// Source fresher than cache
	require.NoError(t, os.Chtimes(sourcePath, now.Add(time.Hour), now.Add(time.Hour)))
	assert.True(t, loader.SourceNewerThanCache())

	// Missing cache means nothing to compare
	require.NoError(t, os.Remove(cachePath))
	assert.False(t, loader.SourceNewerThanCache())
}

func TestReadWorkbook_HeadersAndPadding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.xlsx")
	writeWorkbook(t, path, [][]string{
		{"Booking_ID", "Vehicle_Type", "Booking_Status"},
		{"CNR1", "Mini"},
	})

	got, err := ReadWorkbook(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Booking_ID", "Vehicle_Type", "Booking_Status"}, got.Columns)
	require.Equal(t, 1, got.NumRows())
	assert.Equal(t, "CNR1", got.Rows[0].String("Booking_ID"))
	assert.Equal(t, "", got.Rows[0].String("Booking_Status"))
}
