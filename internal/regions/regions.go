// Package regions maps Brazilian state codes (UF) to their macro-region.
package regions

// Region is one of the five IBGE macro-regions.
type Region string

const (
	Norte       Region = "Norte"
	Nordeste    Region = "Nordeste"
	CentroOeste Region = "Centro-Oeste"
	Sudeste     Region = "Sudeste"
	Sul         Region = "Sul"

	// Unknown buckets orders whose UF is missing or not a valid state code.
	Unknown Region = "Desconhecido"
)

var byUF = map[string]Region{
	"AC": Norte, "AP": Norte, "AM": Norte, "PA": Norte, "RO": Norte, "RR": Norte, "TO": Norte,
	"AL": Nordeste, "BA": Nordeste, "CE": Nordeste, "MA": Nordeste, "PB": Nordeste,
	"PE": Nordeste, "PI": Nordeste, "RN": Nordeste, "SE": Nordeste,
	"DF": CentroOeste, "GO": CentroOeste, "MT": CentroOeste, "MS": CentroOeste,
	"ES": Sudeste, "MG": Sudeste, "RJ": Sudeste, "SP": Sudeste,
	"PR": Sul, "RS": Sul, "SC": Sul,
}

// Classify returns the region of uf. The lookup is exact: "sp" or " SP" are not recognised.
func Classify(uf string) (Region, bool) {
	r, ok := byUF[uf]
	return r, ok
}

// ClassifyOrUnknown is Classify with unrecognised codes folded into Unknown.
func ClassifyOrUnknown(uf string) Region {
	if r, ok := Classify(uf); ok {
		return r
	}
	return Unknown
}

// All returns the five regions in report order.
func All() []Region {
	return []Region{Norte, Nordeste, CentroOeste, Sudeste, Sul}
}
