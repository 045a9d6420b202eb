package render

import (
	jsoniter "github.com/json-iterator/go"

	"block_metrics/internal/app/port"
	"block_metrics/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonReport struct {
	Metrics []entity.Metric `json:"metrics"`
}

// JSONRenderer renders metrics as {"metrics":[...]}.
type JSONRenderer struct{}

var _ port.Renderer = JSONRenderer{}

// NewJSONRenderer returns the JSON report renderer.
func NewJSONRenderer() JSONRenderer {
	return JSONRenderer{}
}

// Render implements port.Renderer. A nil slice renders as an empty list.
func (JSONRenderer) Render(metrics []entity.Metric) []byte {
	if metrics == nil {
		metrics = []entity.Metric{}
	}
	out, err := json.Marshal(jsonReport{Metrics: metrics})
	if err != nil {
		// string-only structs always marshal
		return []byte(`{"metrics":[]}`)
	}
	return out
}

// ContentType implements port.Renderer.
func (JSONRenderer) ContentType() string {
	return "application/json; charset=utf-8"
}
