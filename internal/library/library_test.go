package library_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rypi-dev/photos-stats/internal/library"
	"github.com/rypi-dev/photos-stats/internal/testfixture"
)

type queryRecord struct {
	name string
	err  error
}

type mockRecorder struct {
	queries []queryRecord
}

func (m *mockRecorder) ObserveQuery(name string, d time.Duration, err error) {
	m.queries = append(m.queries, queryRecord{name: name, err: err})
}

func openSample(t *testing.T, opts library.Options) *library.Library {
	t.Helper()
	path := testfixture.New(t, testfixture.Sample()...)

	lib, err := library.Open(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib
}

func strp(s string) *string { return &s }

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	}
	return fmt.Sprintf("%v", v)
}

func dump(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func nullOrValue(valid bool, s string) *string {
	if !valid {
		return nil
	}
	return &s
}

func TestOpen_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sqlite")

	_, err := library.Open(context.Background(), path, library.Options{})
	if !errors.Is(err, library.ErrDatabaseUnavailable) {
		t.Fatalf("expected ErrDatabaseUnavailable, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("Open must not create the database file")
	}
}

func TestOpen_Directory(t *testing.T) {
	_, err := library.Open(context.Background(), t.TempDir(), library.Options{})
	if !errors.Is(err, library.ErrDatabaseUnavailable) {
		t.Fatalf("expected ErrDatabaseUnavailable, got %v", err)
	}
}

func TestOpen_NotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Photos.sqlite")
	if err := os.WriteFile(path, []byte(strings.Repeat("not a sqlite database\n", 64)), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := library.Open(context.Background(), path, library.Options{})
	if !errors.Is(err, library.ErrDatabaseUnavailable) {
		t.Fatalf("expected ErrDatabaseUnavailable, got %v", err)
	}
}

func TestLibrary_IsReadOnly(t *testing.T) {
	path := testfixture.New(t, testfixture.Sample()...)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	lib, err := library.Open(context.Background(), path, library.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.CountAssets(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := lib.Close(); err != nil {
		t.Fatal(err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("database file was modified by a read")
	}
}

func TestCountAssets_ExcludesTrashed(t *testing.T) {
	rec := &mockRecorder{}
	lib := openSample(t, library.Options{Recorder: rec})

	n, err := lib.CountAssets(context.Background())
	if err != nil {
		t.Fatalf("CountAssets failed: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6 non trashed assets, got %d", n)
	}

	if len(rec.queries) != 1 || rec.queries[0].name != "count_assets" || rec.queries[0].err != nil {
		t.Errorf("unexpected recorded queries: %+v", rec.queries)
	}
}

func TestGroupCounts_NullsFirstAndAscending(t *testing.T) {
	lib := openSample(t, library.Options{})

	groups, err := lib.GroupCounts(context.Background(), library.ColumnLensModel)
	if err != nil {
		t.Fatalf("GroupCounts failed: %v", err)
	}

	wantValues := []any{nil, "18.3mm", "23mm f/2", "XF56mmF1.2"}
	wantCounts := []int64{1, 1, 3, 1}

	if len(groups) != len(wantValues) {
		t.Fatalf("expected %d groups, got %d: %+v", len(wantValues), len(groups), groups)
	}

	var total int64
	for i, g := range groups {
		total += g.Count
		if wantValues[i] == nil {
			if g.Value != nil {
				t.Errorf("group %d: expected NULL, got %#v", i, g.Value)
			}
		} else if got := asString(g.Value); got != wantValues[i] {
			t.Errorf("group %d: value = %q; want %q", i, got, wantValues[i])
		}
		if g.Count != wantCounts[i] {
			t.Errorf("group %d: count = %d; want %d", i, g.Count, wantCounts[i])
		}
	}

	// La table d'attributs n'est pas filtrée sur la corbeille
	if total != 6 {
		t.Errorf("sum of counts = %d; want 6 rows", total)
	}
}

func TestGroupCounts_SumMatchesRowCountForEveryColumn(t *testing.T) {
	lib := openSample(t, library.Options{})

	for _, c := range library.AllColumns() {
		groups, err := lib.GroupCounts(context.Background(), c)
		if err != nil {
			t.Fatalf("GroupCounts(%s) failed: %v", c, err)
		}
		var total int64
		for _, g := range groups {
			total += g.Count
		}
		if total != 6 {
			t.Errorf("GroupCounts(%s) sum = %d; want 6", c, total)
		}
	}
}

func TestGroupCounts_RejectsUnknownColumn(t *testing.T) {
	lib := openSample(t, library.Options{})

	_, err := lib.GroupCounts(context.Background(), library.Column("zcameramodel; DROP TABLE zasset"))
	if !errors.Is(err, library.ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	lib := openSample(t, library.Options{})

	totals, err := lib.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals.Count != 6 {
		t.Errorf("count = %d; want 6", totals.Count)
	}
	if !totals.First.Valid || totals.First.String != "2023-12-31 12:00:00" {
		t.Errorf("first = %+v; want 2023-12-31 12:00:00", totals.First)
	}
	if !totals.Last.Valid || totals.Last.String != "2024-06-01 12:00:00" {
		t.Errorf("last = %+v; want 2024-06-01 12:00:00", totals.Last)
	}
}

func TestTotals_EmptyLibrary(t *testing.T) {
	path := testfixture.New(t)
	lib, err := library.Open(context.Background(), path, library.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer lib.Close()

	totals, err := lib.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals.Count != 0 || totals.First.Valid || totals.Last.Valid {
		t.Errorf("expected empty totals, got %+v", totals)
	}
}

func TestBuckets(t *testing.T) {
	lib := openSample(t, library.Options{})

	tests := []struct {
		granularity library.Granularity
		want        map[string]int64
	}{
		{library.GranularityDay, map[string]int64{
			"2023-12-31": 1, "2024-03-01": 1, "2024-03-02": 2, "2024-04-15": 1, "2024-06-01": 1,
		}},
		{library.GranularityMonth, map[string]int64{
			"2023-12-01": 1, "2024-03-01": 3, "2024-04-01": 1, "2024-06-01": 1,
		}},
		{library.GranularityYear, map[string]int64{
			"2023-01-01": 1, "2024-01-01": 5,
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.granularity), func(t *testing.T) {
			buckets, err := lib.Buckets(context.Background(), tt.granularity)
			if err != nil {
				t.Fatalf("Buckets failed: %v", err)
			}

			got := make(map[string]int64)
			var prev string
			var total int64
			for _, b := range buckets {
				if b.Date.String < prev {
					t.Errorf("buckets not ascending: %q after %q", b.Date.String, prev)
				}
				prev = b.Date.String
				got[b.Date.String] = b.Count
				total += b.Count
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buckets = %v; want %v", got, tt.want)
			}
			if total != 6 {
				t.Errorf("sum of buckets = %d; want 6", total)
			}
		})
	}
}

func TestLocalTime_ShiftsTotalsAndBuckets(t *testing.T) {
	if _, err := time.LoadLocation("America/Los_Angeles"); err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	// SQLite lit TZ via localtime_r
	t.Setenv("TZ", "America/Los_Angeles")

	path := testfixture.New(t,
		testfixture.Asset{Created: time.Date(2024, time.January, 1, 3, 0, 0, 0, time.UTC)},
		testfixture.Asset{Created: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)},
	)
	lib, err := library.Open(context.Background(), path, library.Options{LocalTime: true})
	if err != nil {
		t.Fatal(err)
	}
	defer lib.Close()

	totals, err := lib.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals.First.String != "2023-12-31 19:00:00" || totals.Last.String != "2024-03-01 04:00:00" {
		t.Errorf("first = %q last = %q; want local times", totals.First.String, totals.Last.String)
	}

	tests := []struct {
		granularity library.Granularity
		want        map[string]int64
	}{
		{library.GranularityDay, map[string]int64{"2023-12-31": 1, "2024-03-01": 1}},
		{library.GranularityMonth, map[string]int64{"2023-12-01": 1, "2024-03-01": 1}},
		{library.GranularityYear, map[string]int64{"2023-01-01": 1, "2024-01-01": 1}},
	}
	for _, tt := range tests {
		buckets, err := lib.Buckets(context.Background(), tt.granularity)
		if err != nil {
			t.Fatalf("Buckets(%s) failed: %v", tt.granularity, err)
		}
		got := make(map[string]int64)
		var sum int64
		for _, b := range buckets {
			got[b.Date.String] = b.Count
			sum += b.Count
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Buckets(%s) = %v; want %v", tt.granularity, got, tt.want)
		}
		if sum != totals.Count {
			t.Errorf("Buckets(%s) sum = %d; want %d", tt.granularity, sum, totals.Count)
		}
	}

	// Sans LocalTime, la même base reste en UTC
	utc, err := library.Open(context.Background(), path, library.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer utc.Close()

	utcTotals, err := utc.Totals(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if utcTotals.First.String != "2024-01-01 03:00:00" {
		t.Errorf("UTC first = %q; want 2024-01-01 03:00:00", utcTotals.First.String)
	}
}

func TestBuckets_UnknownGranularity(t *testing.T) {
	lib := openSample(t, library.Options{})

	_, err := lib.Buckets(context.Background(), library.Granularity("week"))
	if !errors.Is(err, library.ErrQueryFailure) {
		t.Fatalf("expected ErrQueryFailure, got %v", err)
	}
}

func TestUsage_Cameras(t *testing.T) {
	lib := openSample(t, library.Options{})

	rows, err := lib.Usage(context.Background(), library.DimensionCamera)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}

	type entry struct {
		Name, Make, First, Last *string
		Count                   int64
		Related                 []string
	}
	want := []entry{
		{strp("X-T5"), strp("Fujifilm"), strp("2024-03-02 12:00:00"), strp("2024-03-02 12:00:00"), 2, []string{"23mm f/2", "XF56mmF1.2"}},
		{strp("X100V"), strp("Fujifilm"), strp("2023-12-31 12:00:00"), strp("2024-03-01 12:00:00"), 2, []string{"23mm f/2"}},
		{strp("iPhone 15 Pro"), strp("Apple"), strp("2024-04-15 12:00:00"), strp("2024-04-15 12:00:00"), 1, nil},
	}

	var got []entry
	for _, r := range rows {
		got = append(got, entry{
			Name:    nullOrValue(r.Name.Valid, r.Name.String),
			Make:    nullOrValue(r.Make.Valid, r.Make.String),
			First:   nullOrValue(r.First.Valid, r.First.String),
			Last:    nullOrValue(r.Last.Valid, r.Last.String),
			Count:   r.Count,
			Related: r.Related,
		})
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("camera usage mismatch\n got: %s\nwant: %s", dump(got), dump(want))
	}
}

func TestUsage_LensesIncludeNullGroup(t *testing.T) {
	lib := openSample(t, library.Options{})

	rows, err := lib.Usage(context.Background(), library.DimensionLens)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 lens groups, got %d", len(rows))
	}

	if rows[0].Name.Valid {
		t.Errorf("expected NULL lens group first, got %q", rows[0].Name.String)
	}
	if !reflect.DeepEqual(rows[0].Related, []string{"iPhone 15 Pro"}) {
		t.Errorf("NULL lens cameras = %v", rows[0].Related)
	}
	if rows[0].Make.Valid {
		t.Error("lens rows must not carry a make")
	}
	if rows[1].Name.String != "23mm f/2" || rows[1].Count != 3 {
		t.Errorf("unexpected second lens row: %+v", rows[1])
	}
	if !reflect.DeepEqual(rows[1].Related, []string{"X-T5", "X100V"}) {
		t.Errorf("23mm cameras = %v", rows[1].Related)
	}
}

func TestUsage_Makes(t *testing.T) {
	lib := openSample(t, library.Options{})

	rows, err := lib.Usage(context.Background(), library.DimensionMake)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 makes (trashed Ricoh excluded), got %d", len(rows))
	}
	if rows[0].Name.String != "Apple" || rows[1].Name.String != "Fujifilm" || rows[1].Count != 4 {
		t.Errorf("unexpected makes: %+v", rows)
	}
}

func TestUsage_UnknownDimension(t *testing.T) {
	lib := openSample(t, library.Options{})

	if _, err := lib.Usage(context.Background(), library.Dimension("unknown")); !errors.Is(err, library.ErrQueryFailure) {
		t.Errorf("expected ErrQueryFailure for unknown dimension, got %v", err)
	}
}

func TestQueries_MissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.sqlite")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &mockRecorder{}
	lib, err := library.Open(context.Background(), path, library.Options{Recorder: rec})
	if err != nil {
		t.Fatalf("an empty file is a valid SQLite database: %v", err)
	}
	defer lib.Close()

	_, err = lib.CountAssets(context.Background())
	if !errors.Is(err, library.ErrQueryFailure) {
		t.Fatalf("expected ErrQueryFailure, got %v", err)
	}
	if len(rec.queries) != 1 || rec.queries[0].err == nil {
		t.Errorf("failed query should be recorded with its error: %+v", rec.queries)
	}
}

func TestLibrary_CloseIsSafeTwice(t *testing.T) {
	path := testfixture.New(t)
	lib, err := library.Open(context.Background(), path, library.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := lib.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
	if err := lib.Close(); err != nil {
		t.Errorf("Second Close error: %v", err)
	}
}
