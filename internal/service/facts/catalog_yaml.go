// internal/service/facts/catalog_yaml.go

package facts

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"isstrack/internal/domain/fact"
)

// catalogYAML is the on-disk shape of a region catalog override
type catalogYAML struct {
	Regions []regionYAML `yaml:"regions"`
}

type regionYAML struct {
	ID        string    `yaml:"id"`
	Region    string    `yaml:"region"`
	Latitude  []float64 `yaml:"latitude"`
	Longitude []float64 `yaml:"longitude"`
	Fact      string    `yaml:"fact"`
	Source    string    `yaml:"source,omitempty"`
}

// LoadCatalogFile reads a YAML region table. Entries keep file order.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	return ParseCatalog(f)
}

// ParseCatalog decodes a YAML region table from r
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var doc catalogYAML
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	entries := make([]fact.RegionFact, 0, len(doc.Regions))
	for i, r := range doc.Regions {
		if len(r.Latitude) != 2 || len(r.Longitude) != 2 {
			return nil, fmt.Errorf("entry %d (%s): latitude and longitude must be [min, max] pairs", i, r.ID)
		}
		entries = append(entries, fact.RegionFact{
			ID:        r.ID,
			Region:    r.Region,
			Latitude:  fact.Range{r.Latitude[0], r.Latitude[1]},
			Longitude: fact.Range{r.Longitude[0], r.Longitude[1]},
			Fact:      r.Fact,
			Source:    r.Source,
		})
	}

	return NewCatalog(entries)
}
