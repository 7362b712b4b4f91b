package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vendimax/internal/dto"
	"vendimax/internal/infra"
	"vendimax/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.SesionCajaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := operador(c)
	if !ok {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), op, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Activa godoc
// @Summary Retorna la caja abierta del operador con su resumen parcial
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SesionCajaResponse
// @Success 204
// @Router /v1/caja/activa [get]
func (h *CajaHandler) Activa(c *gin.Context) {
	op, ok := operador(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetActiva(c.Request.Context(), op)
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra la sesion de caja con el efectivo declarado
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Declaracion de cierre"
// @Success 200 {object} dto.CerrarCajaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := operador(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), op, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimiento godoc
// @Summary Registra un ingreso o egreso manual en la caja abierta
// @Tags caja
// @Accept json
// @Security BearerAuth
// @Param body body dto.MovimientoManualRequest true "Movimiento"
// @Success 201
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/movimiento [post]
func (h *CajaHandler) Movimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := operador(c)
	if !ok {
		return
	}
	if err := h.svc.RegistrarMovimiento(c.Request.Context(), op, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// Reporte godoc
// @Summary Reporte de una sesion de caja
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} dto.SesionCajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/{id}/reporte [get]
func (h *CajaHandler) Reporte(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	op, ok := operador(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerReporte(c.Request.Context(), op, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Historial paginado de cierres de caja del comercio
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina (default 1)"
// @Param limit query int false "Registros por pagina (default 20, max 200)"
// @Success 200 {object} dto.HistorialCajaResponse
// @Router /v1/caja/historial [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	op, ok := operador(c)
	if !ok {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), op, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportarHistorial godoc
// @Summary Exporta el historial de cierres como planilla XLSX
// @Tags caja
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /v1/caja/historial/export [get]
func (h *CajaHandler) ExportarHistorial(c *gin.Context) {
	op, ok := operador(c)
	if !ok {
		return
	}
	rows, err := h.svc.ExportarHistorial(c.Request.Context(), op)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("cierres_caja_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := infra.WriteHistorialCajaXLSX(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}
