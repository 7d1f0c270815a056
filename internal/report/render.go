package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rypi-dev/photos-stats/internal/utils"
)

const statsSeparator = "===================="

// Format of the export document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepte json, yaml ou yml (insensible à la casse)
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// WriteOverview writes "Total assets: N"
func WriteOverview(w io.Writer, o LibraryOverview) error {
	_, err := fmt.Fprintf(w, "Total assets: %d\n", o.TotalAssets)
	return err
}

// WriteStats writes each column framed by separator lines, one "value, count"
// line per group and a blank line after the group.
func WriteStats(w io.Writer, stats []GroupedStat) error {
	for _, s := range stats {
		if _, err := fmt.Fprintf(w, "%s\n%s\n%s\n", statsSeparator, s.Column, statsSeparator); err != nil {
			return err
		}
		for _, g := range s.Groups {
			if _, err := fmt.Fprintf(w, "%s, %d\n", utils.FormatValue(g.Value), g.Count); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// EncodeExport writes the document. JSON is compact unless pretty is set.
func EncodeExport(w io.Writer, doc *ExportDocument, format Format, pretty bool) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown export format %q", format)
}
