package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wtaconnect/backoffice/internal/logger"
	"github.com/wtaconnect/backoffice/internal/orders"
	"github.com/wtaconnect/backoffice/internal/session"
	"github.com/wtaconnect/backoffice/internal/tenants"
	"github.com/wtaconnect/backoffice/internal/winthor"
)

// Response is the envelope of every API answer.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message, detail string) {
	c.JSON(status, Response{Success: false, Message: message, Error: detail})
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, log logger.Logger, message string, err error) {
	var (
		guard     *orders.GuardError
		cfgErr    *winthor.ConfigError
		transport *winthor.TransportError
		content   *winthor.ContentError
	)
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		fail(c, http.StatusUnauthorized, session.ErrUnauthenticated.Error(), err.Error())
	case errors.As(err, &guard):
		fail(c, http.StatusConflict, guard.Reason, guard.Reason)
	case errors.Is(err, orders.ErrAlreadyCheckedOut):
		fail(c, http.StatusConflict, "NFe já conferida", err.Error())
	case errors.Is(err, orders.ErrNFeNotFound):
		fail(c, http.StatusNotFound, "NFe não encontrada", err.Error())
	case errors.Is(err, tenants.ErrNotFound):
		fail(c, http.StatusNotFound, "Tenant não encontrado", err.Error())
	case errors.Is(err, orders.ErrInvalidAccessKey), errors.Is(err, winthor.ErrOrderIDRequired):
		fail(c, http.StatusBadRequest, message, err.Error())
	case errors.As(err, &cfgErr):
		fail(c, http.StatusPreconditionFailed, "Configuração TOTVS incompleta", cfgErr.Error())
	case winthor.IsTimeout(err):
		log.Warnf(c.Request.Context(), "[api] %s: %v", message, err)
		fail(c, http.StatusGatewayTimeout, message, err.Error())
	case errors.As(err, &transport):
		log.Warnf(c.Request.Context(), "[api] %s: %v", message, err)
		fail(c, http.StatusBadGateway, message, transport.Error())
	case errors.As(err, &content):
		log.Warnf(c.Request.Context(), "[api] %s: %v", message, err)
		fail(c, http.StatusBadGateway, message, content.Error())
	default:
		log.Errorf(c.Request.Context(), "[api] %s: %v", message, err)
		fail(c, http.StatusInternalServerError, message, err.Error())
	}
}

// tenantOf returns the session user or writes a 401.
func tenantOf(c *gin.Context) (*session.User, bool) {
	u, found := session.CurrentUser(c)
	if !found || u.TenantID == 0 {
		fail(c, http.StatusUnauthorized, session.ErrUnauthenticated.Error(), "Usuário inválido")
		return nil, false
	}
	return u, true
}
