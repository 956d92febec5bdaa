package database

import (
	"context"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/models"

	"gorm.io/gorm"
)

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, lookupErr("user", username, err)
	}
	return &user, nil
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&users).Error; err != nil {
		return nil, apperror.NewInternal(err)
	}
	return users, nil
}

// ListSalespersons returns users with the SALESPERSON role.
func (s *Store) ListSalespersons(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleSalesperson).
		Order("name asc").
		Find(&users).Error
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return users, nil
}

func (s *Store) CountSalespersons(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleSalesperson).Count(&n).Error; err != nil {
		return 0, apperror.NewInternal(err)
	}
	return n, nil
}

// CreateUser inserts user; an existing username is a Conflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&n).Error; err != nil {
			return apperror.NewInternal(err)
		}
		if n > 0 {
			return apperror.NewConflict("Username already exists")
		}
		if err := tx.Create(user).Error; err != nil {
			return writeErr("Username already exists", err)
		}
		return nil
	})
}

// DeleteUser hard-deletes a user. Users who own recorded sales are kept so the
// ledger never points at a missing salesperson.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			return lookupErr("user", username, err)
		}

		var sales int64
		if err := tx.Model(&models.Sale{}).Where("sales_person_id = ?", user.ID).Count(&sales).Error; err != nil {
			return apperror.NewInternal(err)
		}
		if sales > 0 {
			return apperror.NewConflict("User has recorded sales and cannot be deleted").
				WithDetail("sales", sales)
		}

		if err := tx.Delete(&user).Error; err != nil {
			return apperror.NewInternal(err)
		}
		return nil
	})
}
