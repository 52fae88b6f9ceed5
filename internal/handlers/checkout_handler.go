package handlers

import (
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/wtaconnect/backoffice/internal/validation"
)

// RegisterCheckoutRoutes registers POST /checkout/nfe.
func RegisterCheckoutRoutes(rg *gin.RouterGroup, cfg HandlerConfig, v *validatorv10.Validate) {
	rg.POST("/checkout/nfe", func(c *gin.Context) {
		user, found := tenantOf(c)
		if !found {
			return
		}
		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		res, err := cfg.Checkout.Confirm(c.Request.Context(), user.TenantID, req.ChaveAcesso, user.DisplayName())
		if err != nil {
			respondError(c, cfg.Logger, "Erro ao conferir NFe", err)
			return
		}
		ok(c, "NFe conferida com sucesso", res)
	})
}
