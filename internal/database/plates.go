package database

import (
	"context"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/models"
)

func (s *Store) PlateByID(ctx context.Context, id uint) (*models.PlateNumber, error) {
	var plate models.PlateNumber
	if err := s.db.WithContext(ctx).First(&plate, id).Error; err != nil {
		return nil, lookupErr("plate number", id, err)
	}
	return &plate, nil
}

// ListPlates returns plate numbers in the order they were registered.
func (s *Store) ListPlates(ctx context.Context) ([]models.PlateNumber, error) {
	var plates []models.PlateNumber
	if err := s.db.WithContext(ctx).Order("created_at asc, id asc").Find(&plates).Error; err != nil {
		return nil, apperror.NewInternal(err)
	}
	return plates, nil
}

func (s *Store) CreatePlate(ctx context.Context, plate *models.PlateNumber) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.PlateNumber{}).Where("plate = ?", plate.Plate).Count(&n).Error; err != nil {
		return apperror.NewInternal(err)
	}
	if n > 0 {
		return apperror.NewConflict("Plate number already exists")
	}
	if err := s.db.WithContext(ctx).Create(plate).Error; err != nil {
		return writeErr("Plate number already exists", err)
	}
	return nil
}
