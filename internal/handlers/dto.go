package handlers

import (
	"time"

	"go-sales-ledger/internal/database"
	"go-sales-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// --- Requests ---

type saleLineRequest struct {
	ProductCode     string `json:"productCode"`
	ProductName     string `json:"productName"`
	Received        int    `json:"received"`
	Sold            int    `json:"sold"`
	ProductReturned int    `json:"productReturned"`
	EmptyReturned   int    `json:"emptyReturned"`
}

// createSaleRequest is the submission body. A client-sent "difference" is
// ignored; it is always recomputed.
type createSaleRequest struct {
	Date          string            `json:"date"`
	SalesPerson   string            `json:"salesPerson"`
	PlateNumberID *uint             `json:"plateNumberId"`
	Products      []saleLineRequest `json:"products"`
	CashReceived  decimal.Decimal   `json:"cashReceived"`
	CashDeposited decimal.Decimal   `json:"cashDeposited"`
}

type productRequest struct {
	ProductCode string          `json:"productCode"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Password    string `json:"password" binding:"required"`
	PlateNumber string `json:"plateNumber"`
}

type createPlateRequest struct {
	Plate string `json:"plate" binding:"required"`
}

// --- Responses ---

type personRef struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type plateRef struct {
	ID    uint   `json:"id"`
	Plate string `json:"plate"`
}

type saleLineResponse struct {
	ID              uint            `json:"id"`
	ProductCode     string          `json:"productCode"`
	ProductName     string          `json:"productName"`
	Received        int             `json:"received"`
	Sold            int             `json:"sold"`
	ProductReturned int             `json:"productReturned"`
	EmptyReturned   int             `json:"emptyReturned"`
	Price           decimal.Decimal `json:"price"`
	TotalSales      decimal.Decimal `json:"totalSales"`
}

type saleResponse struct {
	ID            uint               `json:"id"`
	Date          time.Time          `json:"date"`
	SalesPersonID uint               `json:"salesPersonId"`
	SalesPerson   personRef          `json:"salesPerson"`
	PlateNumberID *uint              `json:"plateNumberId"`
	PlateNumber   *plateRef          `json:"plateNumber"`
	CashReceived  decimal.Decimal    `json:"cashReceived"`
	CashDeposited decimal.Decimal    `json:"cashDeposited"`
	Difference    decimal.Decimal    `json:"difference"`
	TotalSales    decimal.Decimal    `json:"totalSales"`
	CashMismatch  bool               `json:"cashMismatch"`
	CreatedAt     time.Time          `json:"createdAt"`
	Products      []saleLineResponse `json:"products"`
}

type dashboardResponse struct {
	Totals       *database.SalesTotals `json:"totals"`
	Salespersons int64                 `json:"salespersons"`
	Products     int64                 `json:"products"`
	RecentSales  []saleResponse        `json:"recentSales"`
}

func toSaleResponse(s models.Sale) saleResponse {
	resp := saleResponse{
		ID:            s.ID,
		Date:          s.Date,
		SalesPersonID: s.SalesPersonID,
		SalesPerson:   personRef{Name: s.SalesPerson.Name, Username: s.SalesPerson.Username},
		PlateNumberID: s.PlateNumberID,
		CashReceived:  s.CashReceived,
		CashDeposited: s.CashDeposited,
		Difference:    s.Difference,
		TotalSales:    s.TotalSales,
		CashMismatch:  s.CashMismatch,
		CreatedAt:     s.CreatedAt,
		Products:      make([]saleLineResponse, 0, len(s.Products)),
	}
	if s.PlateNumber != nil {
		resp.PlateNumber = &plateRef{ID: s.PlateNumber.ID, Plate: s.PlateNumber.Plate}
	}
	for _, l := range s.Products {
		resp.Products = append(resp.Products, saleLineResponse{
			ID:              l.ID,
			ProductCode:     l.ProductCode,
			ProductName:     l.ProductName,
			Received:        l.Received,
			Sold:            l.Sold,
			ProductReturned: l.ProductReturned,
			EmptyReturned:   l.EmptyReturned,
			Price:           l.Price,
			TotalSales:      l.TotalSales,
		})
	}
	return resp
}

func toSaleResponses(sales []models.Sale) []saleResponse {
	out := make([]saleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	return out
}
