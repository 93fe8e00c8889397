// Command render-square renders the topographic map of a National Grid
// square or area to a PNG file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mholden/osmaps/internal/cache"
	"github.com/mholden/osmaps/internal/grid"
	"github.com/mholden/osmaps/internal/log"
	"github.com/mholden/osmaps/internal/render"
	"github.com/mholden/osmaps/internal/terrain"
	"github.com/mholden/osmaps/internal/water"
)

func main() {
	dataDir := flag.String("data", "", "Root of the unzipped terr50_gagg_gb distribution")
	square := flag.String("square", "", "100 km square (NY) or 10x10 km tile (NY12) at the south-west corner")
	dims := flag.String("dims", "", "Area extent in units of the named square, e.g. 3x2 (default 1x1)")
	schemeName := flag.String("scheme", render.DefaultScheme, "Colour scheme: "+strings.Join(render.SchemeNames(), ", "))
	cacheDir := flag.String("cache", "", "Directory for cached mosaics (optional)")
	out := flag.String("out", "", "Output PNG path (default <area>.png)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if *dataDir == "" || *square == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := log.Init(*debug, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*dataDir, *square, *dims, *schemeName, *cacheDir, *out); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(dataDir, square, dims, schemeName, cacheDir, out string) error {
	area, err := grid.ResolveArea(square, dims)
	if err != nil {
		return err
	}

	source, err := terrain.NewSource(dataDir)
	if err != nil {
		return err
	}

	var mosaicCache *cache.Cache
	if cacheDir != "" {
		if mosaicCache, err = cache.New(cacheDir); err != nil {
			return err
		}
	}

	logger := log.GetSugaredLogger()
	m, hit, err := mosaicCache.Load(source, area, logger)
	if err != nil {
		return err
	}
	if hit {
		log.Debugf("loaded %s from the mosaic cache", area.Label())
	}
	if !m.HasLand {
		return fmt.Errorf("area %s contains no GB land", area.Label())
	}

	scheme, err := render.NewScheme(schemeName, m.MaxAlt)
	if err != nil {
		return err
	}

	img := render.Image(m, water.Classify(m), scheme)
	if out == "" {
		out = strings.ReplaceAll(area.Label(), " ", "_") + ".png"
	}
	if err := render.WritePNG(out, img); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d, altitudes %.1f to %.1f m)\n", out, m.Cols(), m.Rows(), m.MinAlt, m.MaxAlt)
	return nil
}
