package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/wtaconnect/backoffice/internal/orders"
	"github.com/wtaconnect/backoffice/internal/period"
	"github.com/wtaconnect/backoffice/internal/validation"
)

// RegisterOrdersRoutes registers the order listing, deletion and invoice routes.
func RegisterOrdersRoutes(rg *gin.RouterGroup, cfg HandlerConfig, v *validatorv10.Validate) {
	rg.GET("/orders", func(c *gin.Context) {
		user, found := tenantOf(c)
		if !found {
			return
		}
		var q validation.ListOrdersQuery
		if err := validation.BindQueryAndValidate(c, &q, v); err != nil {
			return
		}

		f, err := toFilters(q)
		if err != nil {
			fail(c, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		list, err := cfg.Orders.List(c.Request.Context(), user.TenantID, f)
		if err != nil {
			respondError(c, cfg.Logger, "Erro ao buscar pedidos", err)
			return
		}
		ok(c, "Pedidos obtidos com sucesso", list)
	})

	rg.DELETE("/orders/:id", func(c *gin.Context) {
		user, found := tenantOf(c)
		if !found {
			return
		}
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "Id de pedido inválido", err.Error())
			return
		}

		res, err := cfg.Deleter.Delete(c.Request.Context(), user.TenantID, id)
		if err != nil {
			respondError(c, cfg.Logger, "Erro ao excluir pedido", err)
			return
		}
		ok(c, res.Message, res)
	})

	rg.GET("/orders/:orderId/invoice-xml", func(c *gin.Context) {
		user, found := tenantOf(c)
		if !found {
			return
		}
		inv, err := cfg.Invoices.InvoiceXML(c.Request.Context(), user.TenantID, c.Param("orderId"))
		if err != nil {
			respondError(c, cfg.Logger, "Erro ao buscar XML da nota fiscal", err)
			return
		}
		ok(c, "XML da nota fiscal obtido com sucesso", inv)
	})
}

func toFilters(q validation.ListOrdersQuery) (orders.Filters, error) {
	f := orders.Filters{
		Status:          q.Status,
		EcommerceNumber: q.EcommerceNumber,
		OrderID:         q.OrderID,
	}
	if q.StartDate != "" {
		t, err := period.ParseDate(q.StartDate)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	if q.EndDate != "" {
		t, err := period.ParseDate(q.EndDate)
		if err != nil {
			return f, err
		}
		f.EndDate = &t
	}
	if q.Numero != "" {
		n, err := strconv.ParseInt(q.Numero, 10, 64)
		if err != nil {
			return f, err
		}
		f.Numero = n
	}
	return f, nil
}
