package repository

import (
	"context"
	"errors"

	"vendimax/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CajaRepository interface {
	// LockOperadorTx serializes shift opening for one operator.
	LockOperadorTx(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) error
	CreateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error
	// FindSesionAbierta returns (nil, nil) when the operator has no open shift.
	FindSesionAbierta(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error)
	// FindSesionAbiertaForShare is FindSesionAbierta holding a share lock, so a
	// concurrent close waits for the sale that links to the shift.
	FindSesionAbiertaForShare(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error)
	LockSesionTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	UpdateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error
	ListSesiones(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.SesionCaja, int64, error)

	// Movements are immutable: no Update/Delete.
	CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, tx *gorm.DB, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) LockOperadorTx(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) error {
	return advisoryXactLock(ctx, tx, "caja:"+usuarioID.String())
}

func (r *cajaRepo) CreateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error {
	return conn(ctx, r.db, tx).Create(s).Error
}

func (r *cajaRepo) FindSesionAbierta(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	return firstOrNil(conn(ctx, r.db, tx).
		Where("usuario_id = ? AND estado = ?", usuarioID, model.CajaAbierta))
}

func (r *cajaRepo) FindSesionAbiertaForShare(ctx context.Context, tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	return firstOrNil(conn(ctx, r.db, tx).Clauses(forShare).
		Where("usuario_id = ? AND estado = ?", usuarioID, model.CajaAbierta))
}

func (r *cajaRepo) LockSesionTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := conn(ctx, r.db, tx).Clauses(forUpdate).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Usuario").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error {
	return conn(ctx, r.db, tx).Omit("Usuario", "Movimientos").Save(s).Error
}

func (r *cajaRepo) ListSesiones(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{}).
		Where("tenant_id = ? AND estado = ?", tenantID, model.CajaCerrada)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Usuario").
		Order("closed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error {
	return conn(ctx, r.db, tx).Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, tx *gorm.DB, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := conn(ctx, r.db, tx).Where("sesion_caja_id = ?", sesionCajaID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func firstOrNil(q *gorm.DB) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := q.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
