package winthor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

const invoicePath = "/winthor/fiscal/v1/documentosfiscais/nfe/invoiceDocument"

// ErrOrderIDRequired is returned before any I/O when no order id is given.
var ErrOrderIDRequired = errors.New("orderId é obrigatório")

// Invoice is an NFe document as returned by the fiscal API.
type Invoice struct {
	InvoiceXML string `json:"invoiceXml"` // base64
	XMLContent string `json:"xmlContent"`
}

// InvoiceXML fetches the NFe XML of an ERP order through the auth retry protocol.
func (c *Client) InvoiceXML(ctx context.Context, tenantID int64, orderID string) (*Invoice, error) {
	if orderID == "" {
		return nil, ErrOrderIDRequired
	}
	cfg, err := c.config(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("orderId", orderID)
	q.Set("returnBase64", "true")
	target := baseURL(cfg) + invoicePath + "?" + q.Encode()

	retried := false
	resp, err := WithAuthRetry(ctx, c, tenantID, func(ctx context.Context, token string) (*Response, error) {
		if retried {
			c.count(ctx, "WinthorAuthRetry", tenantKey(tenantID))
		}
		retried = true
		status, body, err := c.send(ctx, http.MethodGet, target, token, nil)
		if err != nil {
			return nil, &TransportError{Op: "invoice", Err: err}
		}
		return &Response{Status: status, Body: body}, nil
	})
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, &TransportError{Op: "invoice", Status: resp.Status, Body: string(resp.Body)}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &ContentError{Op: "invoice", Reason: "resposta não é JSON"}
	}
	encoded, _ := payload["invoiceXml"].(string)
	if encoded == "" {
		return nil, &ContentError{Op: "invoice", Reason: "campo invoiceXml ausente ou vazio", Fields: fieldNames(payload)}
	}
	xml, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &ContentError{Op: "invoice", Reason: "invoiceXml não é base64 válido", Fields: fieldNames(payload)}
	}
	return &Invoice{InvoiceXML: encoded, XMLContent: string(xml)}, nil
}
