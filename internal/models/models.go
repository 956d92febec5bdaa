package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles a User can hold.
const (
	RoleAdmin       = "ADMIN"
	RoleSalesperson = "SALESPERSON"
)

// User - an administrator or a salesperson
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Name         string    `gorm:"size:120" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never return this in JSON
	Role         string    `gorm:"size:20;index;not null" json:"role"`
	PlateNumber  string    `gorm:"size:30" json:"plateNumber,omitempty"` // legacy free-text plate
	CreatedAt    time.Time `json:"createdAt"`
}

// Product - the sellable catalog, keyed by product code
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProductCode string          `gorm:"uniqueIndex;size:30;not null" json:"productCode"`
	ProductName string          `gorm:"size:120;not null" json:"productName"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

// PlateNumber - a delivery vehicle sales are recorded against
type PlateNumber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Plate     string    `gorm:"uniqueIndex;size:30;not null" json:"plate"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sale - one day's submission for a salesperson and vehicle. Append-only.
type Sale struct {
	ID            uint            `gorm:"primaryKey"`
	Date          time.Time       `gorm:"index;not null"`
	SalesPersonID uint            `gorm:"index;not null"`
	SalesPerson   User            `gorm:"foreignKey:SalesPersonID"`
	PlateNumberID *uint           `gorm:"index"`
	PlateNumber   *PlateNumber    `gorm:"foreignKey:PlateNumberID"`
	CashReceived  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CashDeposited decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Difference    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalSales    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CashMismatch  bool            `gorm:"not null;default:false"` // cash received differs from TotalSales
	CreatedAt     time.Time

	Products []SaleProductEntry `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleProductEntry - one product line of a Sale. Name and price are snapshots
// taken at submission time, never joined back to Product.
type SaleProductEntry struct {
	ID              uint            `gorm:"primaryKey"`
	SaleID          uint            `gorm:"index;not null"`
	ProductCode     string          `gorm:"size:30;not null"`
	ProductName     string          `gorm:"size:120"`
	Received        int             `gorm:"not null;default:0"`
	Sold            int             `gorm:"not null;default:0"`
	ProductReturned int             `gorm:"not null;default:0"`
	EmptyReturned   int             `gorm:"not null;default:0"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalSales      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&PlateNumber{},
		&Sale{},
		&SaleProductEntry{},
	}
}
