// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/pkg/database"
)

// NewDB opens a migrated in-memory sqlite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel:     "silent",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// User inserts a user with the given handle.
func User(t *testing.T, db *gorm.DB, username string) *domain.UserModel {
	t.Helper()
	u := &domain.UserModel{
		ID:       uuid.NewString(),
		Username: username,
		Name:     username,
		Role:     domain.RoleUser,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Snippet inserts a snippet owned by authorID.
func Snippet(t *testing.T, db *gorm.DB, authorID string, public bool) *domain.SnippetModel {
	t.Helper()
	m := &domain.SnippetModel{
		AuthorID: authorID,
		Title:    "snippet",
		Content:  "fmt.Println(1)",
		IsPublic: public,
	}
	require.NoError(t, repository.NewGormContentRepository(db).CreateSnippet(context.Background(), m))
	return m
}

// Bug inserts a bug owned by authorID that expires at expiresAt.
func Bug(t *testing.T, db *gorm.DB, authorID string, expiresAt time.Time) *domain.BugModel {
	t.Helper()
	m := &domain.BugModel{
		AuthorID:    authorID,
		Title:       "bug",
		Description: "it breaks",
		Content:     "panic: nil map",
		Severity:    "HIGH",
		Status:      domain.BugOpen,
		ExpiresAt:   expiresAt,
	}
	require.NoError(t, repository.NewGormContentRepository(db).CreateBug(context.Background(), m))
	return m
}
