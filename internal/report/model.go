package report

import (
	"context"

	"github.com/rypi-dev/photos-stats/internal/library"
)

// Source is the read side the reports are built from. *library.Library implements it.
type Source interface {
	CountAssets(ctx context.Context) (int64, error)
	GroupCounts(ctx context.Context, c library.Column) ([]library.GroupCount, error)
	Totals(ctx context.Context) (library.Totals, error)
	Buckets(ctx context.Context, g library.Granularity) ([]library.Bucket, error)
	Usage(ctx context.Context, d library.Dimension) ([]library.UsageRow, error)
}

// LibraryOverview is the result of the overview report.
type LibraryOverview struct {
	TotalAssets int64 `json:"total_assets" yaml:"total_assets"`
}

// Group is one (value, count) pair. Value is nil for NULL.
type Group struct {
	Value any
	Count int64
}

// GroupedStat holds the groups of one column, ascending with NULL first.
type GroupedStat struct {
	Column library.Column
	Groups []Group
}

// Total returns the sum of the group counts
func (s GroupedStat) Total() int64 {
	var n int64
	for _, g := range s.Groups {
		n += g.Count
	}
	return n
}

// CameraEntry aggregates the non trashed photos of one camera model.
//
// example:
//
//	{"name": "X100V", "make": "Fujifilm", "first": "2024-03-01 09:12:44",
//	 "last": "2024-03-02 17:01:03", "count": 2, "lenses": ["23mm f/2"]}
type CameraEntry struct {
	Name   *string  `json:"name" yaml:"name"`
	Make   *string  `json:"make" yaml:"make"`
	First  *string  `json:"first" yaml:"first"`
	Last   *string  `json:"last" yaml:"last"`
	Count  int64    `json:"count" yaml:"count"`
	Lenses []string `json:"lenses" yaml:"lenses"`
}

// UsageEntry aggregates the non trashed photos of one lens or one make,
// with the camera models seen alongside.
type UsageEntry struct {
	Name    *string  `json:"name" yaml:"name"`
	First   *string  `json:"first" yaml:"first"`
	Last    *string  `json:"last" yaml:"last"`
	Count   int64    `json:"count" yaml:"count"`
	Cameras []string `json:"cameras" yaml:"cameras"`
}

// ExportDocument is the full export, meant to be redirected to a file.
type ExportDocument struct {
	TotalPhotos int64   `json:"total_photos" yaml:"total_photos"`
	FirstPhoto  *string `json:"first_photo" yaml:"first_photo"`
	LastPhoto   *string `json:"last_photo" yaml:"last_photo"`

	// Clés "YYYY-MM-DD", triées par encoding/json
	PhotosPerDay   map[string]int64 `json:"photos_per_day" yaml:"photos_per_day"`
	PhotosPerMonth map[string]int64 `json:"photos_per_month" yaml:"photos_per_month"`
	PhotosPerYear  map[string]int64 `json:"photos_per_year" yaml:"photos_per_year"`

	Makes   []UsageEntry  `json:"makes" yaml:"makes"`
	Cameras []CameraEntry `json:"cameras" yaml:"cameras"`
	Lenses  []UsageEntry  `json:"lenses" yaml:"lenses"`
}

func newExportDocument() *ExportDocument {
	return &ExportDocument{
		PhotosPerDay:   make(map[string]int64),
		PhotosPerMonth: make(map[string]int64),
		PhotosPerYear:  make(map[string]int64),
		Makes:          []UsageEntry{},
		Cameras:        []CameraEntry{},
		Lenses:         []UsageEntry{},
	}
}
