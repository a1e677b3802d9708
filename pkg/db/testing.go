package db

import (
	"fmt"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

// NewTest opens a fresh in-memory sqlite database for a single test.
// Each call gets its own shared-cache namespace so concurrent tests do
// not observe each other's tables.
func NewTest() (*gorm.DB, error) {
	n := testDBSeq.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
