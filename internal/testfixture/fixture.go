// Package testfixture builds small SQLite files shaped like a Photos library
// (zasset + zextendedattributes) for tests and demos.
package testfixture

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rypi-dev/photos-stats/internal/utils"

	_ "github.com/mattn/go-sqlite3"
)

// Attributes is one zextendedattributes row. Nil fields are stored as NULL.
type Attributes struct {
	CameraModel  *string
	CameraMake   *string
	LensModel    *string
	FocalLength  any
	ISO          any
	Aperture     any
	ShutterSpeed any
}

// Asset is one zasset row. Attrs == nil means no extended attributes row.
type Asset struct {
	Created time.Time
	Trashed bool
	Attrs   *Attributes
}

// S returns a pointer to s, for Attributes literals
func S(s string) *string {
	return &s
}

const schema = `
CREATE TABLE zasset (
	z_pk INTEGER PRIMARY KEY,
	zdatecreated TIMESTAMP,
	ztrasheddate TIMESTAMP
);
CREATE TABLE zextendedattributes (
	z_pk INTEGER PRIMARY KEY,
	zasset INTEGER,
	zcameramodel VARCHAR,
	zcameramake VARCHAR,
	zlensmodel VARCHAR,
	zfocallength FLOAT,
	ziso INTEGER,
	zaperture FLOAT,
	zshutterspeed FLOAT
);
CREATE INDEX zextendedattributes_zasset ON zextendedattributes(zasset);
`

// Build crée la base à path et insère les assets dans l'ordre
func Build(path string, assets []Asset) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	assetStmt, err := tx.Prepare(`INSERT INTO zasset(z_pk, zdatecreated, ztrasheddate) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer assetStmt.Close()

	attrStmt, err := tx.Prepare(`
	INSERT INTO zextendedattributes(zasset, zcameramodel, zcameramake, zlensmodel, zfocallength, ziso, zaperture, zshutterspeed)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer attrStmt.Close()

	for i, a := range assets {
		pk := int64(i + 1)

		var trashed any
		if a.Trashed {
			trashed = utils.ToCoreData(a.Created.Add(24 * time.Hour))
		}

		if _, err := assetStmt.Exec(pk, utils.ToCoreData(a.Created), trashed); err != nil {
			return fmt.Errorf("insert asset %d: %w", pk, err)
		}

		if a.Attrs == nil {
			continue
		}
		at := a.Attrs
		if _, err := attrStmt.Exec(pk, at.CameraModel, at.CameraMake, at.LensModel, at.FocalLength, at.ISO, at.Aperture, at.ShutterSpeed); err != nil {
			return fmt.Errorf("insert attributes %d: %w", pk, err)
		}
	}

	return tx.Commit()
}

// TB is the subset of testing.TB used by New (fixturegen n'importe pas testing).
type TB interface {
	Helper()
	TempDir() string
	Fatalf(format string, args ...any)
}

// New builds a library in t.TempDir() and returns its path.
func New(t TB, assets ...Asset) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "Photos.sqlite")
	if err := Build(path, assets); err != nil {
		t.Fatalf("build fixture library: %v", err)
	}
	return path
}

// Day returns midday UTC on the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// Sample returns a small mixed library: two cameras sharing a lens, one
// asset without lens, one trashed asset and one asset without attributes.
func Sample() []Asset {
	return []Asset{
		{Created: Day(2023, time.December, 31), Attrs: &Attributes{
			CameraModel: S("X100V"), CameraMake: S("Fujifilm"), LensModel: S("23mm f/2"),
			FocalLength: 23.0, ISO: int64(200), Aperture: 2.0, ShutterSpeed: 0.004,
		}},
		{Created: Day(2024, time.March, 1), Attrs: &Attributes{
			CameraModel: S("X100V"), CameraMake: S("Fujifilm"), LensModel: S("23mm f/2"),
			FocalLength: 23.0, ISO: int64(400), Aperture: 2.0, ShutterSpeed: 0.008,
		}},
		{Created: Day(2024, time.March, 2), Attrs: &Attributes{
			CameraModel: S("X-T5"), CameraMake: S("Fujifilm"), LensModel: S("23mm f/2"),
			FocalLength: 23.0, ISO: int64(400), Aperture: 2.8,
		}},
		{Created: Day(2024, time.March, 2), Attrs: &Attributes{
			CameraModel: S("X-T5"), CameraMake: S("Fujifilm"), LensModel: S("XF56mmF1.2"),
			FocalLength: 56.0, ISO: int64(800), Aperture: 1.2,
		}},
		{Created: Day(2024, time.April, 15), Attrs: &Attributes{
			CameraModel: S("iPhone 15 Pro"), CameraMake: S("Apple"),
		}},
		{Created: Day(2024, time.May, 5), Trashed: true, Attrs: &Attributes{
			CameraModel: S("GR III"), CameraMake: S("Ricoh"), LensModel: S("18.3mm"),
		}},
		{Created: Day(2024, time.June, 1)},
	}
}
