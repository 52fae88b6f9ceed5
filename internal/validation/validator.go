package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/wtaconnect/backoffice/internal/period"
)

// New returns a configured validator with the custom tags and struct-level rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// filterdate accepts the formats period.ParseDate understands.
	_ = v.RegisterValidation("filterdate", func(fl validatorv10.FieldLevel) bool {
		_, err := period.ParseDate(fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(listOrdersStructValidation, ListOrdersQuery{})
	v.RegisterStructValidation(tenantFlagsStructValidation, TenantFlagsRequest{})

	return v
}

// listOrdersStructValidation rejects a range whose end is before its start.
func listOrdersStructValidation(sl validatorv10.StructLevel) {
	q := sl.Current().Interface().(ListOrdersQuery)
	if q.StartDate == "" || q.EndDate == "" {
		return
	}
	start, err1 := period.ParseDate(q.StartDate)
	end, err2 := period.ParseDate(q.EndDate)
	if err1 != nil || err2 != nil {
		return // reported by the field tags
	}
	if period.DayEnd(end).Before(period.DayStart(start)) {
		sl.ReportError(q.EndDate, "endDate", "EndDate", "date_range", fmt.Sprintf("endDate %s is before startDate %s", q.EndDate, q.StartDate))
	}
}

// tenantFlagsStructValidation requires at least one flag.
func tenantFlagsStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(TenantFlagsRequest)
	if req.ValidarEtapa == nil && req.ValidarEstoque == nil && req.ReprocessarHora == nil {
		sl.ReportError(req, "flags", "Flags", "required_one", "at least one flag is required")
	}
}
