package library

import (
	"fmt"

	"github.com/rypi-dev/photos-stats/internal/utils"
)

// Granularity of the photos_per_* buckets
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

var granularityModifiers = map[Granularity]string{
	GranularityDay:   "'start of day'",
	GranularityMonth: "'start of month'",
	GranularityYear:  "'start of year'",
}

// Dimension selects the grouping of a usage aggregation
type Dimension string

const (
	DimensionCamera Dimension = "camera"
	DimensionLens   Dimension = "lens"
	DimensionMake   Dimension = "make"
)

type usageShape struct {
	group   Column
	related Column
	// withMake ajoute la marque (cameras uniquement)
	withMake bool
}

var usageShapes = map[Dimension]usageShape{
	DimensionCamera: {group: ColumnCameraModel, related: ColumnLensModel, withMake: true},
	DimensionLens:   {group: ColumnLensModel, related: ColumnCameraModel},
	DimensionMake:   {group: ColumnCameraMake, related: ColumnCameraModel},
}

const countAssetsQuery = `SELECT count(*) FROM zasset WHERE ztrasheddate IS NULL`

const probeQuery = `SELECT count(*) FROM sqlite_master`

// adjusted convertit une expression Core Data en argument de date()/datetime()
func adjusted(expr, modifiers string) string {
	return fmt.Sprintf("%s + %d, 'unixepoch'%s", expr, utils.CoreDataEpochOffset, modifiers)
}

func groupCountsQuery(c Column) string {
	return fmt.Sprintf(
		`SELECT %[1]s, count(*) FROM zextendedattributes GROUP BY %[1]s ORDER BY %[1]s ASC`,
		c,
	)
}

func totalsQuery(modifiers string) string {
	return fmt.Sprintf(`
	SELECT count(*),
		datetime(%s),
		datetime(%s)
	FROM zasset
	WHERE ztrasheddate IS NULL`,
		adjusted("min(zdatecreated)", modifiers),
		adjusted("max(zdatecreated)", modifiers),
	)
}

func bucketQuery(g Granularity, modifiers string) (string, error) {
	start, ok := granularityModifiers[g]
	if !ok {
		return "", fmt.Errorf("unknown granularity %q", g)
	}
	return fmt.Sprintf(`
	SELECT date(%s, %s) AS d, count(*)
	FROM zasset
	WHERE ztrasheddate IS NULL
	GROUP BY d
	ORDER BY d ASC`,
		adjusted("zdatecreated", modifiers), start,
	), nil
}

func usageQuery(d Dimension, modifiers string) (string, error) {
	u, ok := usageShapes[d]
	if !ok {
		return "", fmt.Errorf("unknown dimension %q", d)
	}

	makeExpr := "NULL"
	if u.withMake {
		makeExpr = "max(e." + string(ColumnCameraMake) + ")"
	}

	return fmt.Sprintf(`
	SELECT e.%[1]s,
		%[2]s,
		datetime(%[3]s),
		datetime(%[4]s),
		count(*),
		group_concat(e.%[5]s, char(31))
	FROM zextendedattributes e
	JOIN zasset a ON e.zasset = a.z_pk
	WHERE a.ztrasheddate IS NULL
	GROUP BY e.%[1]s
	ORDER BY e.%[1]s ASC`,
		u.group,
		makeExpr,
		adjusted("min(a.zdatecreated)", modifiers),
		adjusted("max(a.zdatecreated)", modifiers),
		u.related,
	), nil
}
