package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"election-market-lab/internal/domain"
)

// Generator writes rendered CSV files under outputDir/<slug>/.
type Generator struct {
	outputDir string
}

// NewGenerator creates a new Generator rooted at outputDir.
func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// WriteOdds writes one market's odds series to <slug>/odds_<marketID>.csv.
func (g *Generator) WriteOdds(slug, marketID string, points []*domain.OddsPoint) error {
	name := fmt.Sprintf("odds_%s.csv", marketID)
	return g.write(slug, name, RenderOddsCSV(points))
}

// WritePeriodSeries writes one donation ratio series to
// <slug>/donations_<granularity>_<variant>.csv.
func (g *Generator) WritePeriodSeries(slug string, gran domain.Granularity, v domain.Variant, points []*domain.PeriodPoint) error {
	name := fmt.Sprintf("donations_%s_%s.csv", gran, v)
	return g.write(slug, name, RenderPeriodCSV(points))
}

// WriteAligned writes the aligned summary to <slug>/aligned_<granularity>.csv.
func (g *Generator) WriteAligned(slug string, gran domain.Granularity, rows []*domain.AlignedRow, winningSideDem *bool) error {
	name := fmt.Sprintf("aligned_%s.csv", gran)
	return g.write(slug, name, RenderAlignedCSV(rows, winningSideDem))
}

func (g *Generator) write(slug, name, content string) error {
	dir := filepath.Join(g.outputDir, slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
