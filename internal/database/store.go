package database

import (
	"errors"

	"go-sales-ledger/internal/apperror"

	"gorm.io/gorm"
)

// Store is the persistence handle shared by handlers and services.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for wiring and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// lookupErr maps a single-record lookup failure to an AppError.
func lookupErr(entity string, key any, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFound(entity, key)
	}
	return apperror.NewInternal(err)
}

// writeErr maps a write failure, turning unique violations into Conflict.
func writeErr(conflictMsg string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.NewConflict(conflictMsg).WithCause(err)
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewInternal(err)
}
