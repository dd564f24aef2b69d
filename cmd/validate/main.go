// Command validate checks the pipeline's configuration tables for
// consistency before a run: the authoritative jurisdiction set, the per-file
// column mappings, and the scoring rule table. With -input it also verifies
// that every discovered source file has a mapping.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -jurisdictions configs/jurisdictions.yaml \
//	  -mappings configs/mappings.yaml \
//	  -scoring configs/scoring.yaml \
//	  -input data/sources
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawatlas/disaster-law-etl/internal/adapter/ingest"
	"github.com/lawatlas/disaster-law-etl/internal/config"
	"github.com/lawatlas/disaster-law-etl/internal/domain"
)

// expectedJurisdictions is 50 states + D.C. + 5 inhabited territories.
const expectedJurisdictions = 56

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	jurisdictionsPath := flag.String("jurisdictions", "configs/jurisdictions.yaml", "authoritative jurisdiction set")
	mappingsPath := flag.String("mappings", "configs/mappings.yaml", "per-file column mapping table")
	scoringPath := flag.String("scoring", "configs/scoring.yaml", "scoring rule table")
	inputDir := flag.String("input", "", "source directory to check against the mappings (optional)")
	flag.Parse()

	phases := []*phase{
		checkJurisdictions(*jurisdictionsPath),
		checkMappings(*mappingsPath),
		checkScoring(*scoringPath),
	}
	if *inputDir != "" {
		phases = append(phases, checkSources(*inputDir, *mappingsPath))
	}

	failed := 0
	for _, p := range phases {
		if len(p.errors) == 0 {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      - %s\n", e)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d validation phases failed", failed, len(phases))
	}
	fmt.Printf("all %d validation phases passed\n", len(phases))
	return nil
}

func checkJurisdictions(path string) *phase {
	p := &phase{name: "jurisdiction set"}
	set, err := config.LoadJurisdictions(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if set.Len() != expectedJurisdictions {
		p.errorf("expected %d entries (50 states + DC + 5 territories), found %d", expectedJurisdictions, set.Len())
	}
	for _, id := range []string{"DC", "PR", "GU", "VI", "AS", "MP"} {
		if !set.Contains(id) {
			p.errorf("missing required entry %q", id)
		}
	}
	return p
}

func checkMappings(path string) *phase {
	p := &phase{name: "column mappings"}
	table, err := config.LoadMappings(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	// Every priority pattern should correspond to a declared file mapping,
	// otherwise the precedence rule can never fire.
	for _, pattern := range table.SourcePriority {
		if _, ok := table.ForFile(pattern); !ok {
			p.errorf("source_priority pattern %q matches no file mapping", pattern)
		}
	}
	return p
}

func checkScoring(path string) *phase {
	p := &phase{name: "scoring rules"}
	table, err := config.LoadScoring(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	covered := make(map[string]bool, len(table.Components))
	for _, c := range table.Components {
		covered[c.Field] = true
	}
	for _, f := range domain.CanonicalFields {
		if !covered[f] {
			p.errorf("canonical field %q feeds no scoring component", f)
		}
	}
	return p
}

func checkSources(dir, mappingsPath string) *phase {
	p := &phase{name: "source files"}
	table, err := config.LoadMappings(mappingsPath)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	sources, err := ingest.Discover(dir)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if len(sources) == 0 {
		p.errorf("no source files in %s", dir)
	}
	for _, src := range sources {
		if _, ok := table.ForFile(src.Name()); !ok {
			p.errorf("no column mapping for %s", src.Name())
		}
	}
	return p
}
