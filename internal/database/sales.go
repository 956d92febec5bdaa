package database

import (
	"context"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lineBatchSize = 200

// CreateSale writes the header and every product line in one transaction.
// On any failure nothing is committed.
func (s *Store) CreateSale(ctx context.Context, sale *models.Sale) error {
	lines := sale.Products

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale.Products = nil
		if err := tx.Omit(clause.Associations).Create(sale).Error; err != nil {
			return err
		}

		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			lines[i].SaleID = sale.ID
		}
		return tx.CreateInBatches(&lines, lineBatchSize).Error
	})

	sale.Products = lines
	if err != nil {
		sale.ID = 0
		for i := range lines {
			lines[i].ID = 0
			lines[i].SaleID = 0
		}
		return apperror.NewInternal(err)
	}
	return nil
}

func (s *Store) withSaleRelations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("SalesPerson").
		Preload("PlateNumber").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		})
}

// ListSales returns every sale, most recent first, with salesperson, plate
// and product lines.
func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	if err := s.withSaleRelations(ctx).Order("date desc, id desc").Find(&sales).Error; err != nil {
		return nil, apperror.NewInternal(err)
	}
	return sales, nil
}

// RecentSales returns the n most recent sales by date.
func (s *Store) RecentSales(ctx context.Context, n int) ([]models.Sale, error) {
	var sales []models.Sale
	if n <= 0 {
		return sales, nil
	}
	if err := s.withSaleRelations(ctx).Order("date desc, id desc").Limit(n).Find(&sales).Error; err != nil {
		return nil, apperror.NewInternal(err)
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := s.withSaleRelations(ctx).First(&sale, id).Error; err != nil {
		return nil, lookupErr("sale", id, err)
	}
	return &sale, nil
}
