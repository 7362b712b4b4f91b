package handler

import (
	"net/http"

	"vendimax/internal/service"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct{ svc service.PlanService }

func NewPlanHandler(svc service.PlanService) *PlanHandler { return &PlanHandler{svc: svc} }

// Invalidar godoc
// @Summary Descarta el plan cacheado del comercio tras un cambio de suscripcion
// @Tags plan
// @Security BearerAuth
// @Success 204
// @Router /v1/plan/invalidar [post]
func (h *PlanHandler) Invalidar(c *gin.Context) {
	op, ok := operador(c)
	if !ok {
		return
	}
	if err := h.svc.Invalidar(c.Request.Context(), op.TenantID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
