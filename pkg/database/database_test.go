package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRow struct {
	ID   uint `gorm:"primaryKey"`
	Tags StringArray
}

func TestNew_SQLiteRoundTripsStringArray(t *testing.T) {
	db, err := New(&Config{Driver: "sqlite", FilePath: "file:database_test?mode=memory&cache=shared", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db, &taggedRow{}))

	require.NoError(t, db.Create(&taggedRow{Tags: StringArray{"go", "redis"}}).Error)

	var got taggedRow
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, StringArray{"go", "redis"}, got.Tags)
}

func TestDialector_UnknownDriver(t *testing.T) {
	_, err := Dialector(&Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestStringArray_ScanPostgresLiteral(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan(`{go,"web dev"}`))
	assert.Equal(t, StringArray{"go", "web dev"}, a)

	require.NoError(t, a.Scan([]byte("{}")))
	assert.Empty(t, a)

	assert.Error(t, a.Scan(42))
}
