package repository

import (
	"context"

	"vendimax/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products and variants.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory fakes.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	CreateVariante(ctx context.Context, v *model.Variante) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Producto, error)
	FindVarianteByID(ctx context.Context, id uuid.UUID) (*model.Variante, error)

	// Used inside transactions; callers must pass the tx instance.
	// Rows come back locked FOR UPDATE, ordered by id so that concurrent
	// carts always lock in the same order.
	LockProductosTx(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Producto, error)
	LockVariantesTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Variante, error)

	// DescontarStockTx fails with ErrStockConcurrente instead of going negative.
	DescontarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int) error
	DescontarStockVarianteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int) error
	RestaurarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int) error
	RestaurarStockVarianteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int) error
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) CreateVariante(ctx context.Context, v *model.Variante) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *productoRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) FindVarianteByID(ctx context.Context, id uuid.UUID) (*model.Variante, error) {
	var v model.Variante
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *productoRepo) LockProductosTx(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	err := conn(ctx, r.db, tx).Clauses(forUpdate).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("id").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) LockVariantesTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Variante, error) {
	var variantes []model.Variante
	err := conn(ctx, r.db, tx).Clauses(forUpdate).
		Where("id IN ?", ids).
		Order("id").
		Find(&variantes).Error
	return variantes, err
}

func (r *productoRepo) DescontarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return descontar(conn(ctx, r.db, tx).Model(&model.Producto{}), id, cantidad)
}

func (r *productoRepo) DescontarStockVarianteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return descontar(conn(ctx, r.db, tx).Model(&model.Variante{}), id, cantidad)
}

func (r *productoRepo) RestaurarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return conn(ctx, r.db, tx).Model(&model.Producto{}).Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", cantidad)).Error
}

func (r *productoRepo) RestaurarStockVarianteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return conn(ctx, r.db, tx).Model(&model.Variante{}).Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", cantidad)).Error
}

// descontar is a guarded decrement: the WHERE clause re-checks availability
// at write time, so a stale read can never drive stock below zero.
func descontar(q *gorm.DB, id uuid.UUID, cantidad int) error {
	res := q.Where("id = ? AND stock_actual >= ?", id, cantidad).
		Update("stock_actual", gorm.Expr("stock_actual - ?", cantidad))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockConcurrente
	}
	return nil
}
