package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rypi-dev/photos-stats/internal/testfixture"
)

type kit struct {
	make   string
	model  string
	lenses []string
}

var kits = []kit{
	{"Fujifilm", "X100V", []string{"23mm f/2"}},
	{"Fujifilm", "X-T5", []string{"XF16-55mmF2.8 R LM WR", "XF56mmF1.2 R WR", "XF23mmF1.4 R LM WR"}},
	{"Apple", "iPhone 15 Pro", []string{"iPhone 15 Pro back triple camera 6.86mm f/1.78", "iPhone 15 Pro front camera 2.69mm f/1.9"}},
	{"Ricoh", "GR III", []string{"18.3mm f/2.8"}},
	{"SONY", "ILCE-7M4", []string{"FE 35mm F1.8", "FE 24-105mm F4 G OSS"}},
}

var (
	isos      = []int64{64, 100, 200, 400, 800, 1600, 3200}
	apertures = []float64{1.2, 1.4, 1.78, 2, 2.8, 4, 5.6, 8}
	shutters  = []float64{1.0 / 4000, 1.0 / 1000, 1.0 / 250, 1.0 / 60, 1.0 / 15}
)

func randomAsset(r *rand.Rand, from time.Time, span time.Duration, trashRate float64) testfixture.Asset {
	a := testfixture.Asset{
		Created: from.Add(time.Duration(r.Int63n(int64(span)))),
		Trashed: r.Float64() < trashRate,
	}

	// Quelques assets sans attributs étendus (captures d'écran, imports)
	if r.Intn(20) == 0 {
		return a
	}

	k := kits[r.Intn(len(kits))]
	attrs := &testfixture.Attributes{
		CameraModel:  testfixture.S(k.model),
		CameraMake:   testfixture.S(k.make),
		ISO:          isos[r.Intn(len(isos))],
		Aperture:     apertures[r.Intn(len(apertures))],
		ShutterSpeed: shutters[r.Intn(len(shutters))],
	}
	if r.Intn(10) != 0 {
		attrs.LensModel = testfixture.S(k.lenses[r.Intn(len(k.lenses))])
		attrs.FocalLength = float64(10 + r.Intn(100))
	}
	a.Attrs = attrs
	return a
}

func main() {
	out := flag.String("out", "Photos.sqlite", "Output SQLite file (must not exist)")
	count := flag.Int("count", 1000, "Number of assets to generate")
	years := flag.Int("years", 3, "Spread the photos over the last N years")
	trash := flag.Float64("trash", 0.02, "Fraction of trashed assets")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	if _, err := os.Stat(*out); err == nil {
		fmt.Printf("Refusing to overwrite existing file %s\n", *out)
		os.Exit(1)
	}

	r := rand.New(rand.NewSource(*seed))
	now := time.Now().UTC()
	span := time.Duration(*years) * 365 * 24 * time.Hour
	from := now.Add(-span)

	assets := make([]testfixture.Asset, 0, *count)
	for i := 0; i < *count; i++ {
		assets = append(assets, randomAsset(r, from, span, *trash))
	}

	if err := testfixture.Build(*out, assets); err != nil {
		fmt.Printf("Error building library: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d assets in %s (seed %d)\n", *count, *out, *seed)
}
