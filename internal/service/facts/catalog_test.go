package facts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isstrack/internal/domain/fact"
)

func TestCatalogMatch(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		wantID    string
		wantMatch bool
	}{
		{name: "single box", latitude: 0, longitude: -150, wantID: "pacific-ocean", wantMatch: true},
		{name: "overlap resolves to earlier entry", latitude: 40, longitude: -150, wantID: "pacific-ocean", wantMatch: true},
		{name: "london resolves to europe", latitude: 51.5, longitude: -0.1, wantID: "europe", wantMatch: true},
		{name: "mid atlantic", latitude: 10, longitude: -30, wantID: "atlantic-ocean", wantMatch: true},
		{name: "antarctica spans all longitudes", latitude: -75, longitude: 100, wantID: "antarctica", wantMatch: true},
		{name: "inclusive bounds", latitude: 60, longitude: -120, wantID: "pacific-ocean", wantMatch: true},
		{name: "longitude is normalized", latitude: 0, longitude: 190, wantID: "pacific-ocean", wantMatch: true},
		{name: "southern ocean gap", latitude: -50, longitude: 20, wantMatch: false},
		{name: "high arctic", latitude: 80, longitude: 0, wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := catalog.Match(tt.latitude, tt.longitude)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestCatalogMatchIsDeterministic(t *testing.T) {
	catalog := DefaultCatalog()

	first, ok := catalog.Match(40, -150)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, _ := catalog.Match(40, -150)
		assert.Equal(t, first, again)
	}
}

func TestNewCatalogValidation(t *testing.T) {
	valid := fact.RegionFact{
		ID:        "a",
		Region:    "A",
		Latitude:  fact.Range{-10, 10},
		Longitude: fact.Range{-10, 10},
		Fact:      "A fact.",
	}

	t.Run("empty", func(t *testing.T) {
		_, err := NewCatalog(nil)
		assert.Error(t, err)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := NewCatalog([]fact.RegionFact{valid, valid})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("missing text", func(t *testing.T) {
		e := valid
		e.Fact = ""
		_, err := NewCatalog([]fact.RegionFact{e})
		assert.Error(t, err)
	})

	t.Run("inverted range", func(t *testing.T) {
		e := valid
		e.Latitude = fact.Range{10, -10}
		_, err := NewCatalog([]fact.RegionFact{e})
		assert.Error(t, err)
	})

	t.Run("out of bounds", func(t *testing.T) {
		e := valid
		e.Longitude = fact.Range{0, 200}
		_, err := NewCatalog([]fact.RegionFact{e})
		assert.Error(t, err)
	})

	t.Run("copies entries", func(t *testing.T) {
		entries := []fact.RegionFact{valid}
		c, err := NewCatalog(entries)
		require.NoError(t, err)
		entries[0].Fact = "changed"
		assert.Equal(t, "A fact.", c.Entries()[0].Fact)
	})
}

func TestCatalogRandom(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.intn = func(n int) int { return n - 1 }

	assert.Equal(t, "asia", catalog.Random().ID)
	assert.Equal(t, len(defaultRegionFacts), catalog.Len())
}

func TestParseCatalog(t *testing.T) {
	doc := `
regions:
  - id: north-sea
    region: North Sea
    latitude: [51, 61]
    longitude: [-4, 9]
    fact: The North Sea is a shallow sea on the European continental shelf.
    source: Test Atlas
  - id: everything
    region: Everywhere
    latitude: [-90, 90]
    longitude: [-180, 180]
    fact: Catch-all entry.
`
	catalog, err := ParseCatalog(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())

	got, ok := catalog.Match(55, 3)
	require.True(t, ok)
	assert.Equal(t, "north-sea", got.ID)
	assert.Equal(t, "Test Atlas", got.Source)

	got, ok = catalog.Match(-50, 20)
	require.True(t, ok)
	assert.Equal(t, "everything", got.ID)
}

func TestParseCatalogRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"unknown field": "regions:\n  - id: a\n    fact: x\n    latitude: [0, 1]\n    longitude: [0, 1]\n    colour: red\n",
		"short range":   "regions:\n  - id: a\n    fact: x\n    latitude: [0]\n    longitude: [0, 1]\n",
		"no entries":    "regions: []\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLondonResolvesToEuropeFact(t *testing.T) {
	got, ok := DefaultCatalog().Match(51.5, -0.1)
	require.True(t, ok)
	assert.Equal(t, "Europe", got.Region)
	assert.True(t, strings.HasPrefix(got.Fact, "Europe is the only continent without a desert"))
}
