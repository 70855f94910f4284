package printing

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// chileanSpanish drives number grouping and title casing in documents
var chileanSpanish = language.MustParse("es-CL")

// TemplateEngine renders HTML templates with Chilean formatting helpers
type TemplateEngine struct {
	funcMap template.FuncMap
	printer *message.Printer
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		printer: message.NewPrinter(chileanSpanish),
	}
	e.funcMap = template.FuncMap{
		"formatCLP":     e.FormatCLP,
		"formatNumber":  e.FormatNumber,
		"formatPercent": formatPercent,
		"formatDate":    formatDate,
		"title":         e.Title,
		"upper":         strings.ToUpper,
		"default":       defaultFunc,
	}
	return e
}

// Parse compiles a named template with the engine's functions
func (e *TemplateEngine) Parse(name, content string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse template "+name, err)
	}
	return tmpl, nil
}

// Execute renders a compiled template to a string
func (e *TemplateEngine) Execute(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template "+tmpl.Name(), err)
	}
	return buf.String(), nil
}

// FormatCLP formats an amount in Chilean pesos, which have no minor unit.
// Example: 1234567 -> "$1.234.567"
func (e *TemplateEngine) FormatCLP(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	if n < 0 {
		return "-$" + e.printer.Sprintf("%d", -n)
	}
	return "$" + e.printer.Sprintf("%d", n)
}

// FormatNumber formats an integer with thousands separators
func (e *TemplateEngine) FormatNumber(n int) string {
	return e.printer.Sprintf("%d", n)
}

// Title capitalizes each word. Casers hold state, so one is built per call.
func (e *TemplateEngine) Title(s string) string {
	return cases.Title(chileanSpanish).String(strings.ToLower(s))
}

// formatPercent prints a percentage without trailing zeros.
// Example: 12.50 -> "12,5%"
func formatPercent(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1) + "%"
}

// formatDate formats a date as dd-mm-yyyy
func formatDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02-01-2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("02-01-2006")
	}
	return ""
}

func defaultFunc(def, v string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
