package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/wtaconnect/backoffice/internal/tenants"
	"github.com/wtaconnect/backoffice/internal/validation"
)

type tenantView struct {
	ID              int64 `json:"id_tenant"`
	ValidarEtapa    bool  `json:"wta_validar_etapa"`
	ValidarEstoque  bool  `json:"wta_validar_estoque"`
	ReprocessarHora bool  `json:"wta_reprocessar_hora"`
	TotvsConfigured bool  `json:"totvs_configurado"`
}

func viewOf(t *tenants.Tenant) tenantView {
	return tenantView{
		ID:              t.ID,
		ValidarEtapa:    bool(t.ValidarEtapa),
		ValidarEstoque:  bool(t.ValidarEstoque),
		ReprocessarHora: bool(t.ReprocessarHora),
		TotvsConfigured: t.TotvsHost != "" && t.TotvsPort != "" && t.TotvsLogin != "" && t.TotvsUsuario != "",
	}
}

// RegisterTenantRoutes registers the tenant configuration routes.
func RegisterTenantRoutes(rg *gin.RouterGroup, cfg HandlerConfig, v *validatorv10.Validate) {
	rg.GET("/tenant/config", func(c *gin.Context) {
		user, found := tenantOf(c)
		if !found {
			return
		}
		t, err := cfg.Tenants.Get(c.Request.Context(), user.TenantID)
		if err != nil {
			respondError(c, cfg.Logger, "Erro ao buscar configuração", err)
			return
		}
		if t == nil {
			fail(c, http.StatusNotFound, "Configuração não encontrada para o tenant", "Registro de tenant ausente")
			return
		}
		ok(c, "Configuração obtida com sucesso", viewOf(t))
	})

	rg.PUT("/tenant/config", func(c *gin.Context) {
		user, found := tenantOf(c)
		if !found {
			return
		}
		var req validation.TenantFlagsRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		t, err := cfg.Tenants.SetFlags(c.Request.Context(), user.TenantID, tenants.FlagsUpdate{
			ValidarEtapa:    req.ValidarEtapa,
			ValidarEstoque:  req.ValidarEstoque,
			ReprocessarHora: req.ReprocessarHora,
		})
		if err != nil {
			respondError(c, cfg.Logger, "Erro ao salvar configuração", err)
			return
		}
		ok(c, "Configuração salva com sucesso", viewOf(t))
	})
}
