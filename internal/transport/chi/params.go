package chi

import (
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/aaisp/internal/domain/unit"
)

// precision beyond this is meaningless for float64 byte counts
const maxPrecision = 12

// LineParams are the query parameters of GET /lines and GET /lines/{id} (see api/openapi.yaml).
type LineParams struct {
	RateUnit  *string `form:"rate_unit,omitempty" json:"rate_unit,omitempty"`
	QuotaUnit *string `form:"quota_unit,omitempty" json:"quota_unit,omitempty"`
	Precision *int    `form:"precision,omitempty" json:"precision,omitempty"`
	Refresh   *bool   `form:"refresh,omitempty" json:"refresh,omitempty"`
}

// bindLineParams decodes the query string with form style, explode=true, as in the API document.
func bindLineParams(r *http.Request) (LineParams, error) {
	var p LineParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "rate_unit", q, &p.RateUnit); err != nil {
		return LineParams{}, fmt.Errorf("invalid format for parameter rate_unit: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "quota_unit", q, &p.QuotaUnit); err != nil {
		return LineParams{}, fmt.Errorf("invalid format for parameter quota_unit: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "precision", q, &p.Precision); err != nil {
		return LineParams{}, fmt.Errorf("invalid format for parameter precision: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "refresh", q, &p.Refresh); err != nil {
		return LineParams{}, fmt.Errorf("invalid format for parameter refresh: %w", err)
	}
	return p, nil
}

// bindServiceID decodes the {id} path parameter.
func bindServiceID(r *http.Request) (int, error) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return 0, fmt.Errorf("invalid format for parameter id: %w", err)
	}
	return id, nil
}

// display applies the parameters over the server defaults.
func (p LineParams) display(defaults Display) (Display, error) {
	d := defaults
	if p.RateUnit != nil {
		f, err := unit.ParseFormat(*p.RateUnit)
		if err != nil {
			return Display{}, fmt.Errorf("invalid rate_unit: %s", *p.RateUnit)
		}
		d.RateUnit = f
	}
	if p.QuotaUnit != nil {
		f, err := unit.ParseFormat(*p.QuotaUnit)
		if err != nil {
			return Display{}, fmt.Errorf("invalid quota_unit: %s", *p.QuotaUnit)
		}
		d.QuotaUnit = f
	}
	if p.Precision != nil {
		if *p.Precision < -maxPrecision || *p.Precision > maxPrecision {
			return Display{}, fmt.Errorf("invalid precision: %d", *p.Precision)
		}
		d.Precision = *p.Precision
	}
	return d, nil
}
