package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/carebridge/portal/internal/appointments"
	"github.com/carebridge/portal/internal/observability/metrics"
	"github.com/carebridge/portal/pkg/logging"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer executes the embedded page templates. Pages render into a buffer
// first so a template error never leaks a half-written body.
type Renderer struct {
	tmpl    *template.Template
	logger  *logging.Logger
	metrics *metrics.PortalMetrics
}

func NewRenderer(logger *logging.Logger, m *metrics.PortalMetrics) (*Renderer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	funcs := template.FuncMap{
		"statusLabel": func(s appointments.Status) string { return s.Label() },
	}
	tmpl, err := template.New("portal").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, logger: logger, metrics: m}, nil
}

// Render writes the named page with the given HTTP status.
func (rn *Renderer) Render(w http.ResponseWriter, name string, status int, data any) {
	var buf bytes.Buffer
	if err := rn.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		rn.logger.Error("template execution failed", "template", name, "error", err)
		rn.metrics.ObservePageRender(name, "error")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	rn.metrics.ObservePageRender(name, "ok")
}
