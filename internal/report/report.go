package report

import (
	"context"
	"fmt"

	"github.com/rypi-dev/photos-stats/internal/library"
	"github.com/rypi-dev/photos-stats/internal/utils"
)

// Overview counts the assets that are not in the trash.
func Overview(ctx context.Context, src Source) (LibraryOverview, error) {
	n, err := src.CountAssets(ctx)
	if err != nil {
		return LibraryOverview{}, err
	}
	return LibraryOverview{TotalAssets: n}, nil
}

// Stats runs one grouped count per column. Columns are checked against the
// allow-list before the first query.
func Stats(ctx context.Context, src Source, columns []library.Column) ([]GroupedStat, error) {
	if len(columns) == 0 {
		columns = library.AllColumns()
	}
	for _, c := range columns {
		if !library.IsValidColumn(string(c)) {
			return nil, fmt.Errorf("%w: %q", library.ErrInvalidColumn, string(c))
		}
	}

	stats := make([]GroupedStat, 0, len(columns))
	for _, c := range columns {
		rows, err := src.GroupCounts(ctx, c)
		if err != nil {
			return nil, err
		}

		stat := GroupedStat{Column: library.NormalizeColumn(string(c)), Groups: make([]Group, 0, len(rows))}
		for _, r := range rows {
			stat.Groups = append(stat.Groups, Group{Value: r.Value, Count: r.Count})
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

var granularities = []library.Granularity{
	library.GranularityDay,
	library.GranularityMonth,
	library.GranularityYear,
}

// Export builds the full export document.
func Export(ctx context.Context, src Source) (*ExportDocument, error) {
	doc := newExportDocument()

	totals, err := src.Totals(ctx)
	if err != nil {
		return nil, err
	}
	doc.TotalPhotos = totals.Count
	doc.FirstPhoto = utils.NullStringPtr(totals.First)
	doc.LastPhoto = utils.NullStringPtr(totals.Last)

	for _, g := range granularities {
		buckets, err := src.Buckets(ctx, g)
		if err != nil {
			return nil, err
		}

		target := doc.bucketsFor(g)
		for _, b := range buckets {
			// Une date NULL est regroupée sous la clé vide
			target[b.Date.String] += b.Count
		}
	}

	makes, err := src.Usage(ctx, library.DimensionMake)
	if err != nil {
		return nil, err
	}
	for _, u := range makes {
		doc.Makes = append(doc.Makes, toUsageEntry(u))
	}

	cameras, err := src.Usage(ctx, library.DimensionCamera)
	if err != nil {
		return nil, err
	}
	for _, u := range cameras {
		doc.Cameras = append(doc.Cameras, CameraEntry{
			Name:   utils.NullStringPtr(u.Name),
			Make:   utils.NullStringPtr(u.Make),
			First:  utils.NullStringPtr(u.First),
			Last:   utils.NullStringPtr(u.Last),
			Count:  u.Count,
			Lenses: u.Related,
		})
	}

	lenses, err := src.Usage(ctx, library.DimensionLens)
	if err != nil {
		return nil, err
	}
	for _, u := range lenses {
		doc.Lenses = append(doc.Lenses, toUsageEntry(u))
	}

	return doc, nil
}

func (d *ExportDocument) bucketsFor(g library.Granularity) map[string]int64 {
	switch g {
	case library.GranularityDay:
		return d.PhotosPerDay
	case library.GranularityYear:
		return d.PhotosPerYear
	default:
		return d.PhotosPerMonth
	}
}

func toUsageEntry(u library.UsageRow) UsageEntry {
	return UsageEntry{
		Name:    utils.NullStringPtr(u.Name),
		First:   utils.NullStringPtr(u.First),
		Last:    utils.NullStringPtr(u.Last),
		Count:   u.Count,
		Cameras: u.Related,
	}
}
