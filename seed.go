package crowdfund

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	log "github.com/sirupsen/logrus"
)

// SeedPaths locates the sections of a seed document. An empty path skips the section.
type SeedPaths struct {
	Categories string
	Projects   string
	Rewards    string
}

// DefaultSeedPaths reads a document shaped like
//
//	{"categories": [...], "projects": [...], "rewards": [...]}
var DefaultSeedPaths = SeedPaths{
	Categories: "$.categories",
	Projects:   "$.projects",
	Rewards:    "$.rewards",
}

// SeedReport counts the records created by ImportSeed.
type SeedReport struct {
	Categories int
	Projects   int
	Rewards    int
}

// ImportSeed creates the categories, projects and reward tiers described by a
// JSON document. Each section is selected with a jsonpath expression and
// holds records in their persisted format.
//
// Import stops at the first record that cannot be created; records created
// before it are kept.
func ImportSeed(r io.Reader, catalog *Catalog, registry *Registry, paths SeedPaths) (SeedReport, error) {
	var report SeedReport
	data, err := io.ReadAll(r)
	if err != nil {
		return report, fmt.Errorf("cannot read seed: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber() // keep amounts exact
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return report, fmt.Errorf("seed is not a valid json document: %w", err)
	}

	categories, err := seedSection[Category](doc, paths.Categories)
	if err != nil {
		return report, err
	}
	for _, c := range categories {
		if _, err := catalog.AddCategory(c); err != nil {
			return report, fmt.Errorf("cannot import category %q: %w", c.Name, err)
		}
		report.Categories++
	}

	projects, err := seedSection[Project](doc, paths.Projects)
	if err != nil {
		return report, err
	}
	for _, p := range projects {
		if _, err := catalog.AddProject(p); err != nil {
			return report, fmt.Errorf("cannot import project %q: %w", p.ID, err)
		}
		report.Projects++
	}

	tiers, err := seedSection[RewardTier](doc, paths.Rewards)
	if err != nil {
		return report, err
	}
	for _, t := range tiers {
		_, ok, err := catalog.Get(t.ProjectID)
		if err != nil {
			return report, err
		}
		if !ok {
			return report, fmt.Errorf("cannot import reward tier %q: %w: %q", t.Name, ErrProjectNotFound, t.ProjectID)
		}
		if _, err := registry.Add(t); err != nil {
			return report, fmt.Errorf("cannot import reward tier %q: %w", t.Name, err)
		}
		report.Rewards++
	}
	return report, nil
}

// seedSection extracts the records found at path in doc.
func seedSection[R any](doc any, path string) ([]R, error) {
	if path == "" {
		return nil, nil
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		log.WithField("path", path).Warnf("seed section skipped: %v", err)
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}

	records := make([]R, 0, len(items))
	var errs error
	for i, item := range items {
		// Round trip through json to reuse the record decoders.
		raw, err := json.Marshal(item)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s[%d]: %w", path, i, err))
			continue
		}
		var rec R
		if err := json.Unmarshal(raw, &rec); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s[%d]: %w", path, i, err))
			continue
		}
		records = append(records, rec)
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid seed section %q: %w", path, errs)
	}
	return records, nil
}
