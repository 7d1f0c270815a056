package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rypi-dev/photos-stats/internal/utils"

	_ "github.com/mattn/go-sqlite3"
)

// Recorder reçoit la durée et l'issue de chaque requête
type Recorder interface {
	ObserveQuery(name string, d time.Duration, err error)
}

// Options configure the reader. The zero value reads UTC dates with no metrics.
type Options struct {
	LocalTime bool
	Recorder  Recorder
	Logger    *zap.Logger
}

type GroupCount struct {
	Value any // nil pour NULL
	Count int64
}

type Totals struct {
	Count int64
	First sql.NullString
	Last  sql.NullString
}

type Bucket struct {
	Date  sql.NullString
	Count int64
}

type UsageRow struct {
	Name    sql.NullString
	Make    sql.NullString
	First   sql.NullString
	Last    sql.NullString
	Count   int64
	Related []string
}

// Library is a read-only handle on a Photos library database.
type Library struct {
	db        *sql.DB
	path      string
	modifiers string
	recorder  Recorder
	logger    *zap.Logger
}

var pathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// Open ouvre la base en lecture seule et vérifie qu'il s'agit bien d'une base SQLite.
// Toute erreur à ce stade est ErrDatabaseUnavailable.
func Open(ctx context.Context, path string, opts Options) (*Library, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, unavailable(path, err)
	}
	if info.IsDir() {
		return nil, unavailable(path, errors.New("is a directory"))
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_query_only=true", pathEscaper.Replace(path))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, unavailable(path, err)
	}

	// Une seule connexion par invocation
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	var n int64
	if err := db.QueryRowContext(ctx, probeQuery).Scan(&n); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var modifiers string
	if opts.LocalTime {
		modifiers = ", 'localtime'"
	}

	logger.Debug("library opened", zap.String("path", path), zap.Bool("local_time", opts.LocalTime))

	return &Library{
		db:        db,
		path:      path,
		modifiers: modifiers,
		recorder:  opts.Recorder,
		logger:    logger,
	}, nil
}

// Path returns the database file the library was opened from
func (l *Library) Path() string {
	return l.path
}

func (l *Library) observe(name string, start time.Time, err error) {
	d := time.Since(start)
	if l.recorder != nil {
		l.recorder.ObserveQuery(name, d, err)
	}
	if err != nil {
		l.logger.Debug("query failed", zap.String("query", name), zap.Duration("duration", d), zap.Error(err))
		return
	}
	l.logger.Debug("query done", zap.String("query", name), zap.Duration("duration", d))
}

// CountAssets counts assets that are not in the trash.
func (l *Library) CountAssets(ctx context.Context) (n int64, err error) {
	const name = "count_assets"
	start := time.Now()
	defer func() { l.observe(name, start, err) }()

	if err = l.db.QueryRowContext(ctx, countAssetsQuery).Scan(&n); err != nil {
		return 0, queryError(name, err)
	}
	return n, nil
}

// GroupCounts groups the extended attributes table by c, ascending, NULL first.
// Trashed assets are included: the table carries no trash marker.
func (l *Library) GroupCounts(ctx context.Context, c Column) (groups []GroupCount, err error) {
	name := "group_counts_" + string(c)
	start := time.Now()
	defer func() { l.observe(name, start, err) }()

	if !IsValidColumn(string(c)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, string(c))
	}
	c = NormalizeColumn(string(c))

	rows, err := l.db.QueryContext(ctx, groupCountsQuery(c))
	if err != nil {
		return nil, queryError(name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var g GroupCount
		if err = rows.Scan(&g.Value, &g.Count); err != nil {
			return nil, queryError(name, err)
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, queryError(name, err)
	}
	return groups, nil
}

// Totals returns the count and the first/last creation date of non trashed assets.
func (l *Library) Totals(ctx context.Context) (t Totals, err error) {
	const name = "totals"
	start := time.Now()
	defer func() { l.observe(name, start, err) }()

	if err = l.db.QueryRowContext(ctx, totalsQuery(l.modifiers)).Scan(&t.Count, &t.First, &t.Last); err != nil {
		return Totals{}, queryError(name, err)
	}
	return t, nil
}

// Buckets counts non trashed assets per day, month or year start.
func (l *Library) Buckets(ctx context.Context, g Granularity) (buckets []Bucket, err error) {
	name := "buckets_" + string(g)
	start := time.Now()
	defer func() { l.observe(name, start, err) }()

	query, err := bucketQuery(g, l.modifiers)
	if err != nil {
		return nil, queryError(name, err)
	}

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, queryError(name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var b Bucket
		if err = rows.Scan(&b.Date, &b.Count); err != nil {
			return nil, queryError(name, err)
		}
		buckets = append(buckets, b)
	}
	if err = rows.Err(); err != nil {
		return nil, queryError(name, err)
	}
	return buckets, nil
}

// Usage aggregates non trashed assets by camera, lens or make, with the
// co-occurring lenses (for cameras) or cameras (for lenses and makes).
func (l *Library) Usage(ctx context.Context, d Dimension) (usage []UsageRow, err error) {
	name := "usage_" + string(d)
	start := time.Now()
	defer func() { l.observe(name, start, err) }()

	query, err := usageQuery(d, l.modifiers)
	if err != nil {
		return nil, queryError(name, err)
	}

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, queryError(name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u      UsageRow
			concat sql.NullString
		)
		if err = rows.Scan(&u.Name, &u.Make, &u.First, &u.Last, &u.Count, &concat); err != nil {
			return nil, queryError(name, err)
		}
		u.Related = utils.SplitCoOccurrence(concat)
		usage = append(usage, u)
	}
	if err = rows.Err(); err != nil {
		return nil, queryError(name, err)
	}
	return usage, nil
}

func (l *Library) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
