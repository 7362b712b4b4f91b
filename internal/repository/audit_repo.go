package repository

import (
	"context"

	"vendimax/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, a *model.AuditLog) error
	ListByEntidad(ctx context.Context, entidadID uuid.UUID) ([]model.AuditLog, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) CreateTx(ctx context.Context, tx *gorm.DB, a *model.AuditLog) error {
	return conn(ctx, r.db, tx).Create(a).Error
}

func (r *auditRepo) ListByEntidad(ctx context.Context, entidadID uuid.UUID) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).Where("entidad_id = ?", entidadID).Order("created_at ASC").Find(&logs).Error
	return logs, err
}
