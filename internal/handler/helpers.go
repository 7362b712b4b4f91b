package handler

import (
	"net/http"

	"vendimax/internal/apierror"
	"vendimax/internal/dto"
	"vendimax/internal/middleware"
	"vendimax/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := dto.Validate(req); err != nil {
		fields := dto.FieldErrors(err)
		if fields == nil {
			fields = map[string]string{"_": err.Error()}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError writes service rejections with their own status. Anything
// else is handed to middleware.ErrorHandler, which logs it and answers 500.
func respondError(c *gin.Context, err error) {
	if e, ok := apierror.As(err); ok {
		c.JSON(apierror.Status(e.Code), e.Envelope())
		return
	}
	_ = c.Error(err)
}

// operador builds the acting operator from the JWT claims.
func operador(c *gin.Context) (service.Operador, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return service.Operador{}, false
	}
	uid, err1 := uuid.Parse(claims.UserID)
	tid, err2 := uuid.Parse(claims.TenantID)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
		return service.Operador{}, false
	}
	return service.Operador{UsuarioID: uid, TenantID: tid, Rol: claims.Rol}, true
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}
