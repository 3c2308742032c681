package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/metrics"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Service defines production order operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.ProductionOrder, error)
	GetOrder(ctx context.Context, orderID int64) (*models.ProductionOrder, error)
	ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error)
	RecalculateTotal(ctx context.Context, orderID int64) (decimal.Decimal, error)
	SearchByDateRange(ctx context.Context, startDate, endDate string) ([]OrderSummaryRow, error)
}

// Options tune the order workflow.
type Options struct {
	// StrictStockCheck makes the inventory decrement conditional on the
	// remaining quantity; a refused decrement fails the order.
	StrictStockCheck bool
	Metrics          *metrics.OrderMetrics
	Logger           *logger.Logger
	// Now defaults to time.Now and sets the order date.
	Now func() time.Time
}

type service struct {
	repo      Repository
	tx        txRunner
	products  ProductLookup
	inventory InventoryStore
	oracle    AvailabilityOracle
	totals    TotalCalculator
	strict    bool
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the order service with the required collaborators.
func NewService(repo Repository, tx txRunner, products ProductLookup, inventory InventoryStore, oracle AvailabilityOracle, totals TotalCalculator, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory store required")
	}
	if oracle == nil {
		return nil, fmt.Errorf("availability oracle required")
	}
	if totals == nil {
		return nil, fmt.Errorf("total calculator required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      repo,
		tx:        tx,
		products:  products,
		inventory: inventory,
		oracle:    oracle,
		totals:    totals,
		strict:    opts.StrictStockCheck,
		metrics:   opts.Metrics,
		logg:      opts.Logger,
		now:       now,
	}, nil
}

// CreateOrder persists the order shell, then each line item in request order,
// and finally asks the total calculator to recompute the total. Everything
// runs in one transaction. The returned order carries the total as it was
// before recalculation.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.ProductionOrder, error) {
	input.OrderNo = strings.TrimSpace(input.OrderNo)
	if err := validateCreateOrder(input); err != nil {
		return nil, err
	}

	started := time.Now()
	var created *models.ProductionOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.CreateOrder(ctx, &models.ProductionOrder{
			OrderNo:     input.OrderNo,
			OrderDate:   dateOnly(s.now()),
			Notes:       input.Notes,
			TotalAmount: decimal.Zero,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already exists").
					WithDetails(map[string]any{"order_no": input.OrderNo})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		details := make([]models.OrderDetail, 0, len(input.Items))
		for _, item := range input.Items {
			detail, err := s.addLineItem(ctx, tx, repo, order.OrderID, item)
			if err != nil {
				return err
			}
			details = append(details, *detail)
		}

		if len(input.Items) > 0 {
			if _, err := s.totals.RecalculateTotal(ctx, tx, order.OrderID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recalculate order total")
			}
		}

		order.Details = details
		created = order
		return nil
	})
	if err != nil {
		s.metrics.IncFailure(string(errorCode(err)))
		return nil, err
	}

	s.metrics.ObserveCreated(len(created.Details), time.Since(started))
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithOrderNo(ctx, created.OrderNo), map[string]any{
			"order_id":   created.OrderID,
			"line_items": len(created.Details),
		})
		s.logg.Info(logCtx, "production order created")
	}
	return created, nil
}

func (s *service) addLineItem(ctx context.Context, tx *gorm.DB, repo Repository, orderID int64, item LineItemInput) (*models.OrderDetail, error) {
	product, err := s.products.FindProduct(ctx, tx, item.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("product", item.ProductID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	availability, err := s.oracle.CheckAvailable(ctx, tx, item.ProductID, item.Quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product availability")
	}
	if availability == inventory.AvailabilityUnavailable {
		return nil, insufficientInventory(item, nil)
	}

	detail, err := repo.CreateDetail(ctx, &models.OrderDetail{
		OrderID:    orderID,
		ProductID:  product.ProductID,
		Quantity:   item.Quantity,
		UnitPrice:  product.UnitPrice,
		LineAmount: lineAmount(product.UnitPrice, item.Quantity),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order detail")
	}

	record, err := s.inventory.FindRecord(ctx, tx, item.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	if record == nil {
		return detail, nil
	}

	updated, err := s.inventory.Decrement(ctx, tx, item.ProductID, item.Quantity, s.strict)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement inventory")
	}
	if s.strict && updated == 0 {
		available := record.Quantity
		return nil, insufficientInventory(item, &available)
	}
	return detail, nil
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (*models.ProductionOrder, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("order", orderID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListOrders(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page, next := pagination.Trim(rows, params.Limit, func(o models.ProductionOrder) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.OrderID}
	})
	return &OrderList{Orders: page, NextCursor: next}, nil
}

func (s *service) RecalculateTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		value, err := s.totals.RecalculateTotal(ctx, tx, orderID)
		if err != nil {
			return err
		}
		total = value
		return nil
	})
	if err != nil {
		if db.IsNoDataFound(err) {
			return decimal.Zero, pkgerrors.NotFound("order", orderID)
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recalculate order total")
	}
	return total, nil
}

func (s *service) SearchByDateRange(ctx context.Context, startDate, endDate string) ([]OrderSummaryRow, error) {
	start, err := time.Parse(dateLayout, strings.TrimSpace(startDate))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(endDate))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endDate must not precede startDate")
	}

	rows, err := s.repo.FindByDateRange(ctx, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search orders by date range")
	}
	return rows, nil
}

func validateCreateOrder(input CreateOrderInput) error {
	if input.OrderNo == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	for i, item := range input.Items {
		if item.ProductID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required").
				WithDetails(map[string]any{"item": i})
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"item": i, "product_id": item.ProductID})
		}
	}
	return nil
}

func insufficientInventory(item LineItemInput, available *int) error {
	details := map[string]any{
		"product_id": item.ProductID,
		"requested":  item.Quantity,
	}
	if available != nil {
		details["available"] = *available
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientInventory, fmt.Sprintf("insufficient inventory for product %d", item.ProductID)).
		WithDetails(details)
}

func lineAmount(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func errorCode(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}
