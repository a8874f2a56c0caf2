package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/database"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

// setupTestDB opens an isolated in-memory sqlite database. A single
// connection keeps concurrent transactions queued instead of failing
// with SQLITE_BUSY.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedLibrary(t *testing.T, db *gorm.DB, name string) *models.Library {
	t.Helper()
	library := &models.Library{Name: name}
	require.NoError(t, db.Create(library).Error)
	return library
}

func seedBook(t *testing.T, db *gorm.DB, title, isbn string) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, Owned: true, ReadingStatus: models.ReadingToRead}
	if isbn != "" {
		book.ISBN = &isbn
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func seedCopy(t *testing.T, db *gorm.DB, bookID, libraryID int64, status string) *models.Copy {
	t.Helper()
	copy := &models.Copy{BookID: bookID, LibraryID: libraryID, Status: status}
	require.NoError(t, db.Create(copy).Error)
	return copy
}
