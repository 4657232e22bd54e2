// internal/service/facts/catalog.go

package facts

import (
	"fmt"
	"math/rand"

	"isstrack/internal/domain/fact"
	"isstrack/internal/domain/tracking"
)

// defaultRegionFacts is the built-in region table. Order is significant: several
// boxes overlap and Match returns the first entry that contains the point.
// Europe sits ahead of the Atlantic box so the British Isles and Iberia resolve
// to land rather than ocean.
var defaultRegionFacts = []fact.RegionFact{
	// Oceans
	{
		ID:        "pacific-ocean",
		Region:    "Pacific Ocean",
		Latitude:  fact.Range{-60, 60},
		Longitude: fact.Range{-180, -120},
		Fact:      "The Pacific Ocean is the largest and deepest ocean on Earth, containing more than half of the free water on Earth and covering an area larger than all land masses combined.",
		Source:    "National Geographic",
	},
	{
		ID:        "europe",
		Region:    "Europe",
		Latitude:  fact.Range{35, 70},
		Longitude: fact.Range{-10, 40},
		Fact:      "Europe is the only continent without a desert and has more navigable rivers than any other continent in the world.",
		Source:    "European Environment Agency",
	},
	{
		ID:        "atlantic-ocean",
		Region:    "Atlantic Ocean",
		Latitude:  fact.Range{-60, 60},
		Longitude: fact.Range{-70, 0},
		Fact:      "The Atlantic Ocean is the second-largest ocean and contains the Puerto Rico Trench, which reaches depths of 8,376 meters.",
		Source:    "NOAA",
	},
	{
		ID:        "indian-ocean",
		Region:    "Indian Ocean",
		Latitude:  fact.Range{-60, 30},
		Longitude: fact.Range{40, 120},
		Fact:      "The Indian Ocean is the warmest ocean in the world and is home to 40% of the world's offshore oil production.",
		Source:    "World Ocean Review",
	},

	// Continents and major regions
	{
		ID:        "amazon-rainforest",
		Region:    "Amazon Rainforest",
		Latitude:  fact.Range{-10, 5},
		Longitude: fact.Range{-75, -50},
		Fact:      "The Amazon Rainforest produces about 20% of Earth's oxygen and is home to 10% of the world's known species.",
		Source:    "World Wildlife Fund",
	},
	{
		ID:        "sahara-desert",
		Region:    "Sahara Desert",
		Latitude:  fact.Range{15, 30},
		Longitude: fact.Range{-15, 30},
		Fact:      "The Sahara is the largest hot desert in the world, covering about 3.6 million square miles, roughly the size of the United States.",
		Source:    "NASA Earth Observatory",
	},
	{
		ID:        "himalayas",
		Region:    "Himalayan Mountains",
		Latitude:  fact.Range{27, 35},
		Longitude: fact.Range{70, 95},
		Fact:      "The Himalayas contain 9 of the 10 highest peaks on Earth, including Mount Everest, and the range is still growing about 5mm per year due to tectonic activity.",
		Source:    "National Geographic",
	},
	{
		ID:        "antarctica",
		Region:    "Antarctica",
		Latitude:  fact.Range{-90, -60},
		Longitude: fact.Range{-180, 180},
		Fact:      "Antarctica is the coldest, windiest, and driest continent. About 90% of the world's ice is in Antarctica, representing about 70% of the world's fresh water.",
		Source:    "British Antarctic Survey",
	},

	// Countries
	{
		ID:        "japan",
		Region:    "Japan",
		Latitude:  fact.Range{30, 45},
		Longitude: fact.Range{130, 145},
		Fact:      "Japan consists of 6,852 islands and experiences about 1,500 earthquakes each year due to its location along the \"Ring of Fire.\"",
		Source:    "Japan National Tourism Organization",
	},
	{
		ID:        "australia",
		Region:    "Australia",
		Latitude:  fact.Range{-40, -10},
		Longitude: fact.Range{110, 155},
		Fact:      "Australia is the only nation to govern an entire continent and is home to 80% of species that cannot be found anywhere else in the world.",
		Source:    "Australian Government",
	},
	{
		ID:        "great-barrier-reef",
		Region:    "Great Barrier Reef",
		Latitude:  fact.Range{-24, -10},
		Longitude: fact.Range{142, 154},
		Fact:      "The Great Barrier Reef is the world's largest coral reef system, composed of over 2,900 individual reefs and visible from space.",
		Source:    "Great Barrier Reef Marine Park Authority",
	},
	{
		ID:        "north-america",
		Region:    "North America",
		Latitude:  fact.Range{15, 70},
		Longitude: fact.Range{-170, -50},
		Fact:      "North America contains the Great Lakes, which form the largest surface freshwater system on Earth, containing 21% of the world's surface fresh water by volume.",
		Source:    "EPA",
	},
	{
		ID:        "africa",
		Region:    "Africa",
		Latitude:  fact.Range{-35, 35},
		Longitude: fact.Range{-20, 50},
		Fact:      "Africa is the second largest continent and contains the world's longest river (the Nile), the largest hot desert (the Sahara), and over 3,000 distinct ethnic groups.",
		Source:    "United Nations",
	},
	{
		ID:        "south-america",
		Region:    "South America",
		Latitude:  fact.Range{-55, 15},
		Longitude: fact.Range{-80, -35},
		Fact:      "South America is home to the world's highest waterfall (Angel Falls), the largest rainforest (Amazon), and the driest place on Earth (Atacama Desert).",
		Source:    "UNESCO",
	},
	{
		ID:        "asia",
		Region:    "Asia",
		Latitude:  fact.Range{0, 75},
		Longitude: fact.Range{40, 180},
		Fact:      "Asia is the largest continent, covering about 30% of Earth's total land area, and is home to about 60% of the world's population.",
		Source:    "United Nations",
	},
}

// Catalog is an immutable, ordered table of region facts
type Catalog struct {
	entries []fact.RegionFact
	intn    func(n int) int
}

// NewCatalog validates entries and builds a catalog preserving their order
func NewCatalog(entries []fact.RegionFact) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one region fact")
	}

	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d: id is required", i)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = struct{}{}

		if e.Fact == "" {
			return nil, fmt.Errorf("entry %q: fact text is required", e.ID)
		}
		if e.Latitude[0] > e.Latitude[1] || e.Latitude[0] < -90 || e.Latitude[1] > 90 {
			return nil, fmt.Errorf("entry %q: invalid latitude range %v", e.ID, e.Latitude)
		}
		if e.Longitude[0] > e.Longitude[1] || e.Longitude[0] < -180 || e.Longitude[1] > 180 {
			return nil, fmt.Errorf("entry %q: invalid longitude range %v", e.ID, e.Longitude)
		}
	}

	copied := make([]fact.RegionFact, len(entries))
	copy(copied, entries)

	return &Catalog{
		entries: copied,
		intn:    rand.Intn,
	}, nil
}

// DefaultCatalog returns the built-in region table
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultRegionFacts)
	if err != nil {
		panic(fmt.Sprintf("built-in region catalog is invalid: %v", err))
	}
	return c
}

// Match returns the first entry whose box contains the point
func (c *Catalog) Match(latitude, longitude float64) (fact.RegionFact, bool) {
	lon := tracking.NormalizeLongitude(longitude)
	for _, e := range c.entries {
		if e.Latitude.Contains(latitude) && e.Longitude.Contains(lon) {
			return e, true
		}
	}
	return fact.RegionFact{}, false
}

// Random returns a uniformly chosen entry
func (c *Catalog) Random() fact.RegionFact {
	return c.entries[c.intn(len(c.entries))]
}

// Entries returns a copy of the table in match order
func (c *Catalog) Entries() []fact.RegionFact {
	out := make([]fact.RegionFact, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.entries)
}
