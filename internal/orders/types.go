package orders

import (
	"strings"
	"time"

	"github.com/wtaconnect/backoffice/internal/regions"
)

// Order status codes. The set is closed; any other value renders as unknown.
const (
	StatusProcessing  = 1
	StatusAwaitingNFe = 2
	StatusNFeIssued   = 3
	StatusError       = 500
)

var statusLabels = map[int]string{
	StatusProcessing:  "Em processamento",
	StatusAwaitingNFe: "Aguardando NFe",
	StatusNFeIssued:   "NFe emitida",
	StatusError:       "Processado com erro",
}

// StatusToString returns the display label of a status code.
func StatusToString(code int) string {
	if s, ok := statusLabels[code]; ok {
		return s
	}
	return "Status desconhecido"
}

// StatusToCode resolves a display label back to its code. Unknown labels return 0.
func StatusToCode(label string) int {
	for code, s := range statusLabels {
		if s == label {
			return code
		}
	}
	return 0
}

// pending reports whether an order is still open on the marketplace side
// (processing, awaiting invoice or failed). Only these can be deleted.
func pending(status StatusCode) bool {
	return status == StatusProcessing || status == StatusAwaitingNFe || status == StatusError
}

// Cliente is the buyer block of a pedido.
type Cliente struct {
	Nome string `dynamodbav:"nome"`
	UF   string `dynamodbav:"uf"`
}

type Ecommerce struct {
	NomeEcommerce string `dynamodbav:"nomeEcommerce"`
}

// Pedido is the marketplace order detail nested in a Record.
type Pedido struct {
	ID              Text      `dynamodbav:"id"`
	Numero          Text      `dynamodbav:"numero"`
	NumeroEcommerce Text      `dynamodbav:"numero_ecommerce"`
	DataPedido      string    `dynamodbav:"data_pedido"`
	TotalPedido     Amount    `dynamodbav:"total_pedido"`
	Cliente         Cliente   `dynamodbav:"cliente"`
	Ecommerce       Ecommerce `dynamodbav:"ecommerce"`
}

// WTAMessageDetail is one entry of the integration error trail.
type WTAMessageDetail struct {
	Code            Text `dynamodbav:"code"`
	Message         Text `dynamodbav:"message"`
	DetailedMessage Text `dynamodbav:"detailedMessage"`
}

// WTAMessage is the diagnostic payload the ingestion process attaches to failed orders.
type WTAMessage struct {
	Code            Text               `dynamodbav:"code"`
	DetailedMessage Text               `dynamodbav:"detailedMessage"`
	Details         []WTAMessageDetail `dynamodbav:"details"`
}

// Trail renders the message as the text appended to the status label.
func (m *WTAMessage) Trail() string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	if m.DetailedMessage != "" {
		b.WriteString("Código: " + string(m.Code) + "\n")
		b.WriteString("Mensagem: " + string(m.DetailedMessage) + "\n")
	}
	for _, d := range m.Details {
		b.WriteString(" Código: " + string(d.Code) + "\n")
		b.WriteString("Mensagem: " + string(d.Message) + "\n")
		b.WriteString("Mensagem detalhada: " + string(d.DetailedMessage))
	}
	return b.String()
}

// Record is an order document as stored in the order table.
// dt_movto and data_envio_nfe are epoch milliseconds.
type Record struct {
	TenantID        int64       `dynamodbav:"idtenant"` // PK
	ID              int64       `dynamodbav:"id"`       // SK
	Numero          int64       `dynamodbav:"numero,omitempty"`
	NumeroEcommerce string      `dynamodbav:"numero_ecommerce,omitempty"`
	DataPedido      string      `dynamodbav:"data_pedido,omitempty"`
	DtMovto         int64       `dynamodbav:"dt_movto"`
	Status          StatusCode  `dynamodbav:"status"`
	OrderID         Text        `dynamodbav:"orderId,omitempty"`
	Pedido          Pedido      `dynamodbav:"pedido"`
	WTAMessage      *WTAMessage `dynamodbav:"wta_message,omitempty"`
	DataEnvioNFe    int64       `dynamodbav:"data_envio_nfe,omitempty"`

	ChaveAcesso    string `dynamodbav:"chave_acesso,omitempty"`
	CheckoutData   string `dynamodbav:"checkout_data,omitempty"`
	CheckoutStatus int    `dynamodbav:"checkout_status,omitempty"`
	CheckoutUser   string `dynamodbav:"checkout_user,omitempty"`
}

// Linked reports whether the order already exists in the ERP. A NULL or
// empty orderId counts as unlinked; DeletePending's condition agrees.
func (r Record) Linked() bool { return r.OrderID != "" }

// TrendDate is the raw display date used to bucket the trend series.
func (r Record) TrendDate() string {
	if r.DataPedido != "" {
		return r.DataPedido
	}
	return r.Pedido.DataPedido
}

// ProcessingHours is the distance between dt_movto and data_envio_nfe.
// ok is false when either timestamp is missing.
func (r Record) ProcessingHours() (float64, bool) {
	if r.DtMovto == 0 || r.DataEnvioNFe == 0 {
		return 0, false
	}
	d := time.Duration(r.DataEnvioNFe-r.DtMovto) * time.Millisecond
	if d < 0 {
		d = -d
	}
	return d.Hours(), true
}

// Millis converts t to the stored epoch-millisecond representation.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// Order is the presentation shape shared by the dashboard and the listing.
type Order struct {
	ID              string         `json:"id"`
	Numero          string         `json:"numero"`
	NumeroEcommerce string         `json:"numero_ecommerce"`
	NomeEcommerce   string         `json:"nome_ecommerce"`
	Date            string         `json:"date"`
	Status          string         `json:"status"`
	Value           Amount         `json:"value"`
	Region          regions.Region `json:"region"`
	Nome            string         `json:"nome"`
	StatusProcesso  int            `json:"status_processo"`
	OrderID         string         `json:"orderId,omitempty"`
}
