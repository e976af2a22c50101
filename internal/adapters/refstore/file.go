package refstore

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/scorekeep/scorekeep/internal/domain/refdata"
)

// File shape for competition reference data, e.g.:
//
//	categories:
//	  - id: sprint
//	    name: Sprint
//	    direction: ascending
//	    metrics: [run1, run2]
//	    rules: [require-all-metrics]
//	divisions:
//	  - id: open
//	    name: Open
//	    players: []          # empty = everyone eligible
//	    categories:
//	      - id: sprint
//	        depth: 3
//	        order: 1
type refFile struct {
	Categories []categoryEntry `koanf:"categories"`
	Divisions  []divisionEntry `koanf:"divisions"`
}

type categoryEntry struct {
	ID        string   `koanf:"id"`
	Name      string   `koanf:"name"`
	Direction string   `koanf:"direction"`
	Metrics   []string `koanf:"metrics"`
	Rules     []string `koanf:"rules"`
}

type divisionEntry struct {
	ID         string      `koanf:"id"`
	Name       string      `koanf:"name"`
	Players    []string    `koanf:"players"`
	Categories []linkEntry `koanf:"categories"`
}

type linkEntry struct {
	ID    string `koanf:"id"`
	Depth int    `koanf:"depth"`
	Order int    `koanf:"order"`
}

// LoadFile reads reference data from a YAML file and resolves division
// category links against the declared categories.
func LoadFile(path string) ([]refdata.Division, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load reference data %q: %w", path, err)
	}
	var rf refFile
	if err := k.UnmarshalWithConf("", &rf, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("parse reference data %q: %w", path, err)
	}

	categories := make(map[string]refdata.Category, len(rf.Categories))
	for _, c := range rf.Categories {
		direction := refdata.Direction(c.Direction)
		switch direction {
		case refdata.Ascending, refdata.Descending:
		default:
			return nil, fmt.Errorf("category %q: unknown direction %q", c.ID, c.Direction)
		}
		categories[c.ID] = refdata.Category{
			ID:        c.ID,
			Name:      c.Name,
			Direction: direction,
			MetricIDs: c.Metrics,
			Rules:     c.Rules,
		}
	}

	divisions := make([]refdata.Division, 0, len(rf.Divisions))
	for _, d := range rf.Divisions {
		div := refdata.Division{
			ID:              d.ID,
			Name:            d.Name,
			EligiblePlayers: d.Players,
		}
		for _, link := range d.Categories {
			cat, ok := categories[link.ID]
			if !ok {
				return nil, fmt.Errorf("division %q: unknown category %q", d.ID, link.ID)
			}
			div.Categories = append(div.Categories, refdata.CategoryLink{
				Category: cat,
				Depth:    link.Depth,
				Order:    link.Order,
			})
		}
		divisions = append(divisions, div)
	}
	return divisions, nil
}
