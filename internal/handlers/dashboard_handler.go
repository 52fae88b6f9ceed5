package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/wtaconnect/backoffice/internal/period"
	"github.com/wtaconnect/backoffice/internal/validation"
)

// RegisterDashboardRoutes registers GET /dashboard.
func RegisterDashboardRoutes(rg *gin.RouterGroup, cfg HandlerConfig, v *validatorv10.Validate) {
	rg.GET("/dashboard", func(c *gin.Context) {
		user, found := tenantOf(c)
		if !found {
			return
		}
		var q validation.DashboardQuery
		if err := validation.BindQueryAndValidate(c, &q, v); err != nil {
			return
		}
		p, err := period.ParsePeriod(q.Period)
		if err != nil {
			fail(c, http.StatusBadRequest, "Período inválido", err.Error())
			return
		}

		res, err := cfg.Dashboard.Compute(c.Request.Context(), user.TenantID, p)
		if err != nil {
			respondError(c, cfg.Logger, "Erro ao calcular o dashboard", err)
			return
		}
		ok(c, "Dashboard calculado com sucesso", res)
	})
}
