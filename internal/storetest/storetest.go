// Package storetest opens throwaway sqlite databases with the full schema.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/pkg/db"
)

const DSN = "file::memory:?_pragma=foreign_keys(1)"

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, DSN)
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.AllModels()...))

	t.Cleanup(func() { db.Close(gdb) })
	return gdb
}
