package repository

import (
	"context"
	"time"

	"vendimax/internal/dto"
	"vendimax/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// LockTicketsTx serializes ticket assignment for one operator until the
	// transaction ends. Ticket numbers are per operator, so operators never
	// wait on each other.
	LockTicketsTx(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) error
	// NextTicketNumber returns 1 + the operator's highest ticket (0 when none).
	NextTicketNumber(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) (int, error)

	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Venta, error)
	LockVentaTx(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID) (*model.Venta, error)
	UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string, motivo *string) error
	CreateDevolucion(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error

	// Shift aggregation reads. Only COMPLETADO and ANULADO sales are returned.
	ListBySesion(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) ([]model.Venta, error)
	ListDevolucionesBySesion(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) ([]model.Devolucion, error)

	List(ctx context.Context, tenantID uuid.UUID, filter dto.VentaFilter) ([]model.Venta, int64, error)
	CountDesde(ctx context.Context, tenantID uuid.UUID, desde time.Time) (int64, error)
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) LockTicketsTx(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) error {
	return advisoryXactLock(ctx, tx, "ticket:"+usuarioID.String())
}

func (r *ventaRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) (int, error) {
	var max int
	err := conn(ctx, r.db, tx).Model(&model.Venta{}).
		Where("usuario_id = ?", usuarioID).
		Select("COALESCE(MAX(numero_ticket), 0)").
		Scan(&max).Error
	return max + 1, err
}

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return conn(ctx, r.db, tx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items.Producto").Preload("Pagos").
		Where("tenant_id = ?", tenantID).
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) LockVentaTx(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := conn(ctx, r.db, tx).Clauses(forUpdate).
		Preload("Items").Preload("Pagos").
		Where("tenant_id = ?", tenantID).
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string, motivo *string) error {
	return conn(ctx, r.db, tx).Model(&model.Venta{}).Where("id = ?", id).Updates(map[string]interface{}{
		"estado":           estado,
		"motivo_anulacion": motivo,
	}).Error
}

func (r *ventaRepo) CreateDevolucion(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error {
	return conn(ctx, r.db, tx).Create(d).Error
}

func (r *ventaRepo) ListBySesion(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	err := conn(ctx, r.db, tx).Preload("Pagos").
		Where("sesion_caja_id = ? AND estado IN ?", sesionID, []string{model.VentaCompletada, model.VentaAnulada}).
		Order("numero_ticket ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ListDevolucionesBySesion(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) ([]model.Devolucion, error) {
	var devs []model.Devolucion
	err := conn(ctx, r.db, tx).Where("sesion_caja_id = ?", sesionID).Order("created_at ASC").Find(&devs).Error
	return devs, err
}

func (r *ventaRepo) List(ctx context.Context, tenantID uuid.UUID, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{}).Where("tenant_id = ?", tenantID)

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else {
		// Default: today
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Producto").Preload("Pagos").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) CountDesde(ctx context.Context, tenantID uuid.UUID, desde time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("tenant_id = ? AND created_at >= ? AND estado <> ?", tenantID, desde, model.VentaAnulada).
		Count(&n).Error
	return n, err
}
