package orders

import (
	"context"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	product "github.com/dongkoo81/oracle-postgresql-migration/internal/products"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productLookup struct {
	repo *product.Repository
}

// NewProductLookup adapts the product repository for the order workflow.
func NewProductLookup(repo *product.Repository) ProductLookup {
	return productLookup{repo: repo}
}

func (p productLookup) FindProduct(ctx context.Context, tx *gorm.DB, productID int64) (*models.Product, error) {
	return p.repo.WithTx(tx).FindByID(ctx, productID)
}

type inventoryStore struct {
	repo *inventory.Repository
}

// NewInventoryStore adapts the inventory repository for the order workflow.
func NewInventoryStore(repo *inventory.Repository) InventoryStore {
	return inventoryStore{repo: repo}
}

func (s inventoryStore) FindRecord(ctx context.Context, tx *gorm.DB, productID int64) (*models.InventoryRecord, error) {
	record, err := s.repo.WithTx(tx).FindByProductID(ctx, productID)
	if db.IsNotFound(err) {
		return nil, nil
	}
	return record, err
}

func (s inventoryStore) Decrement(ctx context.Context, tx *gorm.DB, productID int64, quantity int, conditional bool) (int64, error) {
	return s.repo.WithTx(tx).Decrement(ctx, productID, quantity, conditional)
}

type routineOracle struct {
	repo *inventory.Repository
}

// NewAvailabilityOracle asks the check_product_available routine.
func NewAvailabilityOracle(repo *inventory.Repository) AvailabilityOracle {
	return routineOracle{repo: repo}
}

func (o routineOracle) CheckAvailable(ctx context.Context, tx *gorm.DB, productID int64, quantity int) (inventory.Availability, error) {
	return o.repo.WithTx(tx).CheckAvailable(ctx, productID, quantity)
}

type procedureTotalCalculator struct{}

// NewProcedureTotalCalculator calls the calculate_order_total procedure, which
// writes the total back to the order and returns it through its INOUT
// parameter.
func NewProcedureTotalCalculator() TotalCalculator {
	return procedureTotalCalculator{}
}

func (procedureTotalCalculator) RecalculateTotal(ctx context.Context, tx *gorm.DB, orderID int64) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := tx.WithContext(ctx).Raw("CALL calculate_order_total(?, NULL)", orderID).Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
