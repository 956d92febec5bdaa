package database

import (
	"context"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/models"

	"gorm.io/gorm"
)

// ListProducts returns the catalog ordered by id.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		return nil, apperror.NewInternal(err)
	}
	return products, nil
}

func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, apperror.NewInternal(err)
	}
	return n, nil
}

// UpsertProducts creates or updates each product by code in one transaction.
// The code itself is never changed.
func (s *Store) UpsertProducts(ctx context.Context, products []models.Product) ([]models.Product, error) {
	saved := make([]models.Product, 0, len(products))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range products {
			var existing models.Product
			res := tx.Where("product_code = ?", p.ProductCode).Limit(1).Find(&existing)
			if res.Error != nil {
				return res.Error
			}

			if res.RowsAffected == 0 {
				created := models.Product{ProductCode: p.ProductCode, ProductName: p.ProductName, Price: p.Price}
				if err := tx.Create(&created).Error; err != nil {
					return err
				}
				saved = append(saved, created)
				continue
			}

			err := tx.Model(&existing).Updates(map[string]any{
				"product_name": p.ProductName,
				"price":        p.Price,
			}).Error
			if err != nil {
				return err
			}
			existing.ProductName = p.ProductName
			existing.Price = p.Price
			saved = append(saved, existing)
		}
		return nil
	})
	if err != nil {
		return nil, writeErr("Product code already exists", err)
	}
	return saved, nil
}
