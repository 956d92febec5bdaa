package database

import (
	"context"
	"time"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// DateRange bounds a report by sale date. Nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// SalesTotals holds the summed figures of every sale in a range.
type SalesTotals struct {
	SumTotalSales    decimal.Decimal `json:"sumTotalSales"`
	SumCashReceived  decimal.Decimal `json:"sumCashReceived"`
	SumCashDeposited decimal.Decimal `json:"sumCashDeposited"`
	SumDifference    decimal.Decimal `json:"sumDifference"`
	Count            int64           `json:"count"`
}

// AggregateTotals sums sales within r.
func (s *Store) AggregateTotals(ctx context.Context, r DateRange) (*SalesTotals, error) {
	q := s.db.WithContext(ctx).Model(&models.Sale{})
	if r.From != nil {
		q = q.Where("date >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where("date <= ?", *r.To)
	}

	// COALESCE gives 0 instead of NULL when no sales exist
	var row struct {
		SumTotalSales    decimal.Decimal
		SumCashReceived  decimal.Decimal
		SumCashDeposited decimal.Decimal
		SumDifference    decimal.Decimal
		Count            int64
	}
	err := q.Select(
		"COALESCE(SUM(total_sales), 0) AS sum_total_sales, " +
			"COALESCE(SUM(cash_received), 0) AS sum_cash_received, " +
			"COALESCE(SUM(cash_deposited), 0) AS sum_cash_deposited, " +
			"COALESCE(SUM(difference), 0) AS sum_difference, " +
			"COUNT(*) AS count",
	).Scan(&row).Error
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &SalesTotals{
		SumTotalSales:    row.SumTotalSales.Round(2),
		SumCashReceived:  row.SumCashReceived.Round(2),
		SumCashDeposited: row.SumCashDeposited.Round(2),
		SumDifference:    row.SumDifference.Round(2),
		Count:            row.Count,
	}, nil
}
