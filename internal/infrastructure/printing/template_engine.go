package printing

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// TemplateEngine executes the embedded document templates
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses every embedded template with the formatting helpers
func NewTemplateEngine() (*TemplateEngine, error) {
	tmpl, err := template.New("documents").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse templates", err)
	}
	return &TemplateEngine{templates: tmpl}, nil
}

// Render executes the template called name, e.g. "invoice.html.tmpl"
func (e *TemplateEngine) Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to execute template "+name, err)
	}
	return buf.Bytes(), nil
}

// FuncMap returns the helpers available to document templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":   formatMoney,
		"label":   formatLabel,
		"date":    formatDate,
		"dateptr": formatDatePtr,
		"inc":     func(i int) int { return i + 1 },
		"upper":   strings.ToUpper,
	}
}

// formatLabel turns enum values such as "cash_on_delivery" into "Cash On Delivery".
// Casers keep state, so each call gets its own.
func formatLabel(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// formatMoney renders d as dollars with thousands separators: 1234.5 -> "$1,234.50"
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}
