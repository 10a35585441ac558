// Package render writes command results as json, yaml or aligned tables.
//
// Without --format, a terminal gets tables and anything else gets json.
// An unknown --format is an error. --no-color only affects table headings;
// the TUI keeps its own styling.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat maps a --format value to a Format. Empty input returns an
// empty Format so the caller can pick a default.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "", FormatJSON, FormatTable, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %q (must be json, table, or yaml)", s)
}

// Renderer writes values in one format to one writer.
type Renderer struct {
	format  Format
	noColor bool
	out     io.Writer
	heading lipgloss.Style
}

// NewRenderer creates a renderer over the app writer from CLI context.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}

	if format == "" {
		format = FormatJSON
		if f, ok := out.(*os.File); ok && IsTTY(f) {
			format = FormatTable
		}
	}

	return NewRendererWithWriter(format, c.Bool("no-color"), out), nil
}

// NewRendererWithWriter creates a renderer over out.
func NewRendererWithWriter(format Format, noColor bool, out io.Writer) *Renderer {
	heading := lipgloss.NewStyle()
	if !noColor {
		heading = heading.Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	}
	return &Renderer{
		format:  format,
		noColor: noColor,
		out:     out,
		heading: heading,
	}
}

// Format returns the selected output format.
func (r *Renderer) Format() Format { return r.format }

// Render writes data in the renderer's format.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(data)
	case FormatTable:
		return r.renderTable(data)
	case FormatYAML:
		return r.renderYAML(data)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

func (r *Renderer) renderJSON(data any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (r *Renderer) renderYAML(data any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func (r *Renderer) title(s string) string {
	return r.heading.Render(s)
}

// renderFields prints a struct or map as aligned "key: value" lines. Map
// keys are sorted.
func (r *Renderer) renderFields(data any) error {
	w := newTabWriter(r.out)

	v := reflect.Indirect(reflect.ValueOf(data))
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() {
				fmt.Fprintf(w, "%s:\t%s\n", fieldName(f), formatValue(v.Field(i)))
			}
		}
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			fmt.Fprintf(w, "%v:\t%s\n", k.Interface(), formatValue(v.MapIndex(k)))
		}
	default:
		fmt.Fprintf(w, "%v\n", data)
	}
	return w.Flush()
}

// fieldName prefers the json tag name.
func fieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return strings.ToLower(f.Name)
}

// inlineLimit is the longest string slice printed in full.
const inlineLimit = 3

func formatValue(v reflect.Value) string {
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return ""
	}
	v = reflect.Indirect(v)
	if !v.IsValid() {
		return ""
	}

	switch x := v.Interface().(type) {
	case time.Time:
		if x.IsZero() {
			return "-"
		}
		return x.UTC().Format(time.RFC3339)
	case []string:
		if len(x) <= inlineLimit {
			return "[" + strings.Join(x, ", ") + "]"
		}
		return fmt.Sprintf("[%d items]", len(x))
	case fmt.Stringer:
		return x.String()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		return fmt.Sprintf("{%d keys}", v.Len())
	case reflect.Struct:
		return "{...}"
	default:
		return fmt.Sprint(v.Interface())
	}
}

// IsTTY reports whether f is a character device.
func IsTTY(f *os.File) bool {
	if info, err := f.Stat(); err == nil {
		return info.Mode()&os.ModeCharDevice != 0
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
