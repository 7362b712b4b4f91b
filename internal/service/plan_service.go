package service

import (
	"context"
	"errors"
	"time"

	"vendimax/internal/apierror"
	"vendimax/internal/cache"
	"vendimax/internal/model"
	"vendimax/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Features gated by plan.
const (
	FeatureVentas = "ventas"
	FeatureCaja   = "caja"
)

// PlanService answers "may this tenant use this feature right now".
// Both checks return nil or a LIMITE_PLAN rejection.
type PlanService interface {
	Verificar(ctx context.Context, tenantID uuid.UUID, feature string) error
	// VerificarCupoVentas gates only the creation of sales against the
	// monthly quota; listing and cancelling never consume it.
	VerificarCupoVentas(ctx context.Context, tenantID uuid.UUID) error
	Invalidar(ctx context.Context, tenantID uuid.UUID) error
}

type planService struct {
	repo   repository.SuscripcionRepository
	ventas repository.VentaRepository
	cache  cache.PlanCache
	now    func() time.Time
}

func NewPlanService(repo repository.SuscripcionRepository, ventas repository.VentaRepository, c cache.PlanCache) PlanService {
	if c == nil {
		c = cache.NoopPlanCache{}
	}
	return &planService{repo: repo, ventas: ventas, cache: c, now: time.Now}
}

func (s *planService) Verificar(ctx context.Context, tenantID uuid.UUID, feature string) error {
	plan, err := s.plan(ctx, tenantID)
	if err != nil {
		return err
	}
	if !plan.Features[feature] {
		return apierror.LimitePlan("feature_no_incluida", "el plan %s no incluye %s", plan.Nombre, feature).
			With("feature", feature).
			With("plan", plan.Nombre)
	}
	return nil
}

func (s *planService) VerificarCupoVentas(ctx context.Context, tenantID uuid.UUID) error {
	plan, err := s.plan(ctx, tenantID)
	if err != nil || plan.MaxVentasMes <= 0 {
		return err
	}
	now := s.now()
	inicioMes := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	n, err := s.ventas.CountDesde(ctx, tenantID, inicioMes)
	if err != nil {
		return err
	}
	if n >= int64(plan.MaxVentasMes) {
		return apierror.LimitePlan("limite_ventas_mes", "el plan %s permite %d ventas por mes", plan.Nombre, plan.MaxVentasMes).
			With("actual", n).
			With("limite", plan.MaxVentasMes)
	}
	return nil
}

func (s *planService) Invalidar(ctx context.Context, tenantID uuid.UUID) error {
	return s.cache.Invalidate(ctx, tenantID)
}

// plan reads through the cache. A cache failure degrades to a DB read.
// Expiry is checked on every call, cached or not.
func (s *planService) plan(ctx context.Context, tenantID uuid.UUID) (*cache.Plan, error) {
	p, ok, err := s.cache.Get(ctx, tenantID)
	if err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("cache de planes no disponible")
	}
	if !ok {
		sus, err := s.repo.FindActiva(ctx, tenantID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.LimitePlan("sin_suscripcion", "el comercio no tiene una suscripcion activa")
		}
		if err != nil {
			return nil, err
		}
		p = planFromModel(sus)
		if err := s.cache.Set(ctx, tenantID, p); err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("no se pudo cachear el plan")
		}
	}
	if p.VenceAt != nil && !s.now().Before(*p.VenceAt) {
		return nil, apierror.LimitePlan("suscripcion_vencida", "la suscripcion %s vencio", p.Nombre).
			With("vence_at", p.VenceAt.Format(time.RFC3339))
	}
	return p, nil
}

func planFromModel(s *model.Suscripcion) *cache.Plan {
	features := make(map[string]bool, len(s.Features))
	for k, v := range s.Features {
		if b, ok := v.(bool); ok {
			features[k] = b
		}
	}
	return &cache.Plan{Nombre: s.Plan, Features: features, MaxVentasMes: s.MaxVentasMes, VenceAt: s.VenceAt}
}
