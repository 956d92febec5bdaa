// Package sales turns a salesperson's daily submission into a priced,
// reconciled Sale ready to be written as one unit.
package sales

import (
	"fmt"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// CashPolicy decides where a sale's cash received figure comes from.
type CashPolicy int

const (
	// CashManual keeps the entered figure and flags a mismatch with the total.
	CashManual CashPolicy = iota
	// CashAuto overwrites the entered figure with the computed total.
	CashAuto
)

// ParseCashPolicy maps the configuration value to a CashPolicy.
func ParseCashPolicy(s string) (CashPolicy, error) {
	switch s {
	case "", "manual":
		return CashManual, nil
	case "auto":
		return CashAuto, nil
	}
	return CashManual, fmt.Errorf("unknown cash policy %q", s)
}

func (p CashPolicy) String() string {
	if p == CashAuto {
		return "auto"
	}
	return "manual"
}

// LineInput is one product row as submitted. Quantities are stored as given.
type LineInput struct {
	ProductCode     string
	ProductName     string
	Received        int
	Sold            int
	ProductReturned int
	EmptyReturned   int
}

// PriceBook resolves product codes against a catalog snapshot.
type PriceBook struct {
	products map[string]models.Product
}

// NewPriceBook indexes products by code. Later duplicates win.
func NewPriceBook(products []models.Product) PriceBook {
	m := make(map[string]models.Product, len(products))
	for _, p := range products {
		m[p.ProductCode] = p
	}
	return PriceBook{products: m}
}

// PriceOf returns the unit price for code, or zero when the code is unknown.
func (b PriceBook) PriceOf(code string) decimal.Decimal {
	if p, ok := b.products[code]; ok {
		return p.Price
	}
	return decimal.Zero
}

// NameOf returns the catalog name for code, or fallback when the code is unknown.
func (b PriceBook) NameOf(code, fallback string) string {
	if p, ok := b.products[code]; ok && p.ProductName != "" {
		return p.ProductName
	}
	return fallback
}

// Known reports whether code is in the catalog.
func (b PriceBook) Known(code string) bool {
	_, ok := b.products[code]
	return ok
}

// ComputedSale holds the derived figures of a submission.
type ComputedSale struct {
	Lines         []models.SaleProductEntry
	TotalSales    decimal.Decimal
	CashReceived  decimal.Decimal
	CashDeposited decimal.Decimal
	Difference    decimal.Decimal
	CashMismatch  bool
	UnknownCodes  []string
}

// Compute prices every line, totals the sale and reconciles cash.
func Compute(lines []LineInput, book PriceBook, cashReceived, cashDeposited decimal.Decimal, policy CashPolicy) (*ComputedSale, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("at least one product line is required")
	}
	if cashReceived.IsNegative() {
		return nil, apperror.NewValidation("cash received cannot be negative")
	}
	if cashDeposited.IsNegative() {
		return nil, apperror.NewValidation("cash deposited cannot be negative")
	}

	out := &ComputedSale{
		Lines:         make([]models.SaleProductEntry, 0, len(lines)),
		TotalSales:    decimal.Zero,
		CashDeposited: cashDeposited,
	}

	for i, l := range lines {
		if err := validateLine(i, l); err != nil {
			return nil, err
		}

		price := book.PriceOf(l.ProductCode)
		if !book.Known(l.ProductCode) {
			out.UnknownCodes = append(out.UnknownCodes, l.ProductCode)
		}
		total := price.Mul(decimal.NewFromInt(int64(l.Sold)))

		out.Lines = append(out.Lines, models.SaleProductEntry{
			ProductCode:     l.ProductCode,
			ProductName:     book.NameOf(l.ProductCode, l.ProductName),
			Received:        l.Received,
			Sold:            l.Sold,
			ProductReturned: l.ProductReturned,
			EmptyReturned:   l.EmptyReturned,
			Price:           price,
			TotalSales:      total,
		})
		out.TotalSales = out.TotalSales.Add(total)
	}

	switch policy {
	case CashAuto:
		out.CashReceived = out.TotalSales
	default:
		out.CashReceived = cashReceived
		out.CashMismatch = !cashReceived.Equal(out.TotalSales)
	}
	out.Difference = out.CashReceived.Sub(out.CashDeposited)

	return out, nil
}

func validateLine(i int, l LineInput) error {
	if l.ProductCode == "" {
		return apperror.NewValidation("product code is required").WithDetail("line", i)
	}
	fields := []struct {
		name  string
		value int
	}{
		{"received", l.Received},
		{"sold", l.Sold},
		{"productReturned", l.ProductReturned},
		{"emptyReturned", l.EmptyReturned},
	}
	for _, f := range fields {
		if f.value < 0 {
			return apperror.NewValidation(fmt.Sprintf("%s cannot be negative", f.name)).
				WithDetail("line", i).
				WithDetail("productCode", l.ProductCode)
		}
	}
	return nil
}
