package repository

import (
	"context"

	"vendimax/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Cliente, error)
	// LockClienteTx reads the credit account FOR UPDATE so the debt increment
	// and the status evaluation see the same balance.
	LockClienteTx(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID) (*model.Cliente, error)
	// UpdateCuentaTx persists deuda_actual, estado and ultima_compra.
	UpdateCuentaTx(ctx context.Context, tx *gorm.DB, c *model.Cliente) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clienteRepo) LockClienteTx(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := conn(ctx, r.db, tx).Clauses(forUpdate).
		Where("tenant_id = ?", tenantID).
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clienteRepo) UpdateCuentaTx(ctx context.Context, tx *gorm.DB, c *model.Cliente) error {
	return conn(ctx, r.db, tx).Model(&model.Cliente{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"deuda_actual":  c.DeudaActual,
		"estado":        c.Estado,
		"ultima_compra": c.UltimaCompra,
	}).Error
}
