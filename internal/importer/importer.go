package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Importer converts content from a Source into an overlay file.
type Importer struct {
	source Source
	out    io.Writer
}

// New constructs an Importer backed by source, reporting progress to out.
//
// Precondition: source and out must be non-nil.
func New(source Source, out io.Writer) *Importer {
	return &Importer{source: source, out: out}
}

// Run loads records from sourcePath, checks that every geometry decodes, and
// writes them as one YAML overlay file to outputPath.
//
// Postcondition: outputPath holds a loadable overlay file, or an error is
// returned and nothing is written.
func (imp *Importer) Run(sourcePath, outputPath string) error {
	overall := time.Now()

	t0 := time.Now()
	recs, err := imp.source.Load(sourcePath)
	if err != nil {
		return fmt.Errorf("loading source: %w", err)
	}
	fmt.Fprintf(imp.out, "load    %d room(s) in %s\n", len(recs), time.Since(t0).Round(time.Millisecond))

	for _, r := range recs {
		if r.Geometry == nil {
			continue
		}
		if _, err := r.Geometry.Decode(); err != nil {
			return fmt.Errorf("room %d failed validation: %w", r.Room, err)
		}
	}

	data, err := yaml.Marshal(recs)
	if err != nil {
		return fmt.Errorf("serialising records: %w", err)
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	fmt.Fprintf(imp.out, "wrote   %s  (%d rooms)\n", outputPath, len(recs))
	fmt.Fprintf(imp.out, "total   %s\n", time.Since(overall).Round(time.Millisecond))
	return nil
}
