package middleware

import (
	"context"
	"net/http"

	"vendimax/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlanChecker is satisfied by service.PlanService.
type PlanChecker interface {
	Verificar(ctx context.Context, tenantID uuid.UUID, feature string) error
}

// CupoChecker is satisfied by service.PlanService.
type CupoChecker interface {
	VerificarCupoVentas(ctx context.Context, tenantID uuid.UUID) error
}

// RequirePlanFeature vetoes the route when the tenant's plan does not include
// feature. Must run after JWTAuth.
func RequirePlanFeature(checker PlanChecker, feature string) gin.HandlerFunc {
	return planGate(func(ctx context.Context, tenantID uuid.UUID) error {
		return checker.Verificar(ctx, tenantID, feature)
	})
}

// RequireCupoVentas vetoes sale creation once the monthly quota is used up.
// Only the create route carries it. Must run after JWTAuth.
func RequireCupoVentas(checker CupoChecker) gin.HandlerFunc {
	return planGate(checker.VerificarCupoVentas)
}

func planGate(check func(ctx context.Context, tenantID uuid.UUID) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}
		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}
		if err := check(c.Request.Context(), tenantID); err != nil {
			if e, ok := apierror.As(err); ok {
				c.AbortWithStatusJSON(apierror.Status(e.Code), e.Envelope())
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
