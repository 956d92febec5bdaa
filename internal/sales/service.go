package sales

import (
	"context"
	"strings"
	"time"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/logger"
	"go-sales-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Directory resolves the people and vehicles a sale refers to.
// Missing records are reported as apperror NotFound.
type Directory interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	PlateByID(ctx context.Context, id uint) (*models.PlateNumber, error)
}

// Catalog provides the current product list.
type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Ledger persists a sale header and its lines as one unit.
type Ledger interface {
	CreateSale(ctx context.Context, sale *models.Sale) error
}

// Submission is a salesperson's daily report as received from the client.
type Submission struct {
	Date          time.Time // zero means now
	SalesPerson   string
	PlateNumberID *uint
	Products      []LineInput
	CashReceived  decimal.Decimal
	CashDeposited decimal.Decimal
}

// Options tune submission policies.
type Options struct {
	CashPolicy   CashPolicy
	RequirePlate bool
}

type Service struct {
	dir     Directory
	catalog Catalog
	ledger  Ledger
	opts    Options
	log     *logger.Logger
	now     func() time.Time
}

func NewService(dir Directory, catalog Catalog, ledger Ledger, opts Options, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		dir:     dir,
		catalog: catalog,
		ledger:  ledger,
		opts:    opts,
		log:     log.WithComponent("sales"),
		now:     time.Now,
	}
}

// Submit resolves, prices and records a submission. Nothing is written unless
// every step succeeds.
func (s *Service) Submit(ctx context.Context, sub Submission) (*models.Sale, error) {
	username := strings.TrimSpace(sub.SalesPerson)
	if username == "" {
		return nil, apperror.NewValidation("salesPerson is required")
	}

	user, err := s.dir.UserByUsername(ctx, username)
	if err != nil {
		return nil, asAppError(err)
	}

	var plate *models.PlateNumber
	switch {
	case sub.PlateNumberID != nil:
		plate, err = s.dir.PlateByID(ctx, *sub.PlateNumberID)
		if err != nil {
			return nil, asAppError(err)
		}
	case s.opts.RequirePlate:
		return nil, apperror.NewValidation("plateNumberId is required")
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, asAppError(err)
	}

	computed, err := Compute(sub.Products, NewPriceBook(products), sub.CashReceived, sub.CashDeposited, s.opts.CashPolicy)
	if err != nil {
		return nil, err
	}

	log := s.log.WithContext(ctx).With("salesperson", user.Username)
	if len(computed.UnknownCodes) > 0 {
		log.Warnw("unknown product codes priced at zero", "codes", computed.UnknownCodes)
	}
	if computed.CashMismatch {
		log.Warnw("cash received does not match total sales",
			"cash_received", computed.CashReceived.StringFixed(2),
			"total_sales", computed.TotalSales.StringFixed(2),
		)
	}

	date := sub.Date
	if date.IsZero() {
		date = s.now()
	}

	sale := &models.Sale{
		Date:          date,
		SalesPersonID: user.ID,
		CashReceived:  computed.CashReceived,
		CashDeposited: computed.CashDeposited,
		Difference:    computed.Difference,
		TotalSales:    computed.TotalSales,
		CashMismatch:  computed.CashMismatch,
		Products:      computed.Lines,
	}
	if plate != nil {
		sale.PlateNumberID = &plate.ID
	}

	if err := s.ledger.CreateSale(ctx, sale); err != nil {
		return nil, asAppError(err)
	}

	sale.SalesPerson = *user
	sale.PlateNumber = plate

	log.Infow("sale recorded",
		"sale_id", sale.ID,
		"lines", len(sale.Products),
		"total_sales", sale.TotalSales.StringFixed(2),
	)
	return sale, nil
}

func asAppError(err error) error {
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewInternal(err)
}
