package repository

import (
	"context"

	"vendimax/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SuscripcionRepository interface {
	FindActiva(ctx context.Context, tenantID uuid.UUID) (*model.Suscripcion, error)
}

type suscripcionRepo struct{ db *gorm.DB }

func NewSuscripcionRepository(db *gorm.DB) SuscripcionRepository { return &suscripcionRepo{db: db} }

func (r *suscripcionRepo) FindActiva(ctx context.Context, tenantID uuid.UUID) (*model.Suscripcion, error) {
	var s model.Suscripcion
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND activa = true", tenantID).First(&s).Error
	return &s, err
}
