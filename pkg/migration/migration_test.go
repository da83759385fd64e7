package migration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type createWidgetsTable struct{}

func (m *createWidgetsTable) Up(db *gorm.DB) error {
	return db.Exec("CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT)").Error
}

func (m *createWidgetsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("widgets")
}

type createGadgetsTable struct{}

func (m *createGadgetsTable) Up(db *gorm.DB) error {
	return db.Exec("CREATE TABLE gadgets (id INTEGER PRIMARY KEY)").Error
}

func (m *createGadgetsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("gadgets")
}

func testRunner(t *testing.T) *Runner {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return New(db)
}

func resetRegistry(t *testing.T) {
	t.Helper()
	old := registry
	registry = nil
	t.Cleanup(func() { registry = old })
}

func TestRunAppliesPendingInOneBatch(t *testing.T) {
	resetRegistry(t)
	Register("20260301000000_create_widgets_table", &createWidgetsTable{})
	Register("20260301000001_create_gadgets_table", &createGadgetsTable{})

	r := testRunner(t)
	require.NoError(t, r.Run())

	assert.True(t, r.db.Migrator().HasTable("widgets"))
	assert.True(t, r.db.Migrator().HasTable("gadgets"))

	var records []record
	require.NoError(t, r.db.Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Batch)
	assert.Equal(t, 1, records[1].Batch)

	// Second run has nothing to do.
	require.NoError(t, r.Run())
	require.NoError(t, r.db.Find(&records).Error)
	assert.Len(t, records, 2)
}

func TestRollbackReversesLastBatch(t *testing.T) {
	resetRegistry(t)
	Register("20260301000000_create_widgets_table", &createWidgetsTable{})

	r := testRunner(t)
	require.NoError(t, r.Run())

	// A later migration lands in batch 2.
	Register("20260301000001_create_gadgets_table", &createGadgetsTable{})
	require.NoError(t, r.Run())

	require.NoError(t, r.Rollback())
	assert.True(t, r.db.Migrator().HasTable("widgets"), "batch 1 untouched")
	assert.False(t, r.db.Migrator().HasTable("gadgets"), "batch 2 rolled back")

	require.NoError(t, r.Rollback())
	assert.False(t, r.db.Migrator().HasTable("widgets"))

	// Nothing left to roll back.
	require.NoError(t, r.Rollback())
}

func TestPendingOrdersByName(t *testing.T) {
	resetRegistry(t)
	Register("20260301000001_later", &createGadgetsTable{})
	Register("20260301000000_earlier", &createWidgetsTable{})

	r := testRunner(t)
	require.NoError(t, r.EnsureTable())

	pending, err := r.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "20260301000000_earlier", pending[0].name)
	assert.Equal(t, "20260301000001_later", pending[1].name)
}
