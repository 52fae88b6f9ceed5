package orders

import "github.com/wtaconnect/backoffice/internal/regions"

// Project maps a stored record into the presentation shape.
func Project(r Record) Order {
	return Order{
		ID:              string(r.Pedido.ID),
		Numero:          string(r.Pedido.Numero),
		NumeroEcommerce: string(r.Pedido.NumeroEcommerce),
		NomeEcommerce:   r.Pedido.Ecommerce.NomeEcommerce,
		Date:            r.Pedido.DataPedido,
		Status:          StatusToString(int(r.Status)) + "\n " + r.WTAMessage.Trail(),
		Value:           r.Pedido.TotalPedido,
		Region:          regions.ClassifyOrUnknown(r.Pedido.Cliente.UF),
		Nome:            r.Pedido.Cliente.Nome,
		StatusProcesso:  int(r.Status),
		OrderID:         string(r.OrderID),
	}
}

// ProjectAll projects records preserving store order. The result is never nil.
func ProjectAll(rs []Record) []Order {
	out := make([]Order, 0, len(rs))
	for _, r := range rs {
		out = append(out, Project(r))
	}
	return out
}
