package library

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Column is an allow-listed column of the zextendedattributes table.
// Only Column constants are ever interpolated into SQL text.
type Column string

const (
	ColumnCameraModel  Column = "zcameramodel"
	ColumnCameraMake   Column = "zcameramake"
	ColumnLensModel    Column = "zlensmodel"
	ColumnFocalLength  Column = "zfocallength"
	ColumnISO          Column = "ziso"
	ColumnAperture     Column = "zaperture"
	ColumnShutterSpeed Column = "zshutterspeed"
)

// Set of accepted names, lowercased (column identifiers and short aliases)
var allowedColumns = map[string]Column{
	"zcameramodel":  ColumnCameraModel,
	"zcameramake":   ColumnCameraMake,
	"zlensmodel":    ColumnLensModel,
	"zfocallength":  ColumnFocalLength,
	"ziso":          ColumnISO,
	"zaperture":     ColumnAperture,
	"zshutterspeed": ColumnShutterSpeed,

	"camera":       ColumnCameraModel,
	"make":         ColumnCameraMake,
	"lens":         ColumnLensModel,
	"focallength":  ColumnFocalLength,
	"iso":          ColumnISO,
	"aperture":     ColumnAperture,
	"shutterspeed": ColumnShutterSpeed,
}

var columnAliases = map[Column]string{
	ColumnCameraModel:  "camera",
	ColumnCameraMake:   "make",
	ColumnLensModel:    "lens",
	ColumnFocalLength:  "focallength",
	ColumnISO:          "iso",
	ColumnAperture:     "aperture",
	ColumnShutterSpeed: "shutterspeed",
}

// IsValidColumn checks if the name is a known column or alias
func IsValidColumn(name string) bool {
	_, ok := allowedColumns[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// NormalizeColumn resolves aliases and case. Unknown names come back lowercased
// and fail IsValidColumn.
func NormalizeColumn(name string) Column {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := allowedColumns[key]; ok {
		return c
	}
	return Column(key)
}

// ParseColumns validates user supplied names. Entries may be comma separated.
// An empty input yields AllColumns().
func ParseColumns(names []string) ([]Column, error) {
	var cols []Column
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			if !IsValidColumn(name) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, name)
			}
			cols = append(cols, NormalizeColumn(name))
		}
	}
	if len(cols) == 0 {
		return AllColumns(), nil
	}
	return cols, nil
}

// AllColumns returns the default stats columns, in report order
func AllColumns() []Column {
	return []Column{
		ColumnCameraModel,
		ColumnCameraMake,
		ColumnLensModel,
		ColumnFocalLength,
		ColumnISO,
		ColumnAperture,
		ColumnShutterSpeed,
	}
}

// Alias returns the short name accepted on the command line
func (c Column) Alias() string {
	return columnAliases[c]
}

// String implements fmt.Stringer
func (c Column) String() string {
	return string(c)
}

// MarshalJSON ensures the column is marshaled as string
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(c))
}

// UnmarshalJSON enforces the allow-list during parsing
func (c *Column) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !IsValidColumn(raw) {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, raw)
	}
	*c = NormalizeColumn(raw)
	return nil
}
