package service

import (
	"vendimax/internal/model"

	"github.com/shopspring/decimal"
)

// EvaluarEstadoCredito is the only place where a client's status is derived
// from its balance. It must be called with the post-increment debt, inside
// the transaction that performed the increment.
//
// Only ACTIVO moves (to MOROSO, once debt exceeds the limit). Every other
// status is manual and passes through untouched.
func EvaluarEstadoCredito(deuda, limite decimal.Decimal, estado string) string {
	if estado == model.ClienteActivo && deuda.GreaterThan(limite) {
		return model.ClienteMoroso
	}
	return estado
}
