// internal/service/facts/synthesizer.go

package facts

import (
	"fmt"
	"math/rand"

	"isstrack/internal/domain/tracking"
)

// Region labels produced by RegionName
const (
	RegionArctic        = "Arctic Region"
	RegionAntarctic     = "Antarctic Region"
	RegionPacific       = "Pacific Ocean"
	RegionAtlantic      = "Atlantic Ocean"
	RegionIndian        = "Indian Ocean"
	RegionNorthAmerica  = "North America"
	RegionSouthAmerica  = "South America"
	RegionEurope        = "Europe"
	RegionAfrica        = "Africa"
	RegionAsia          = "Asia"
	RegionAustralia     = "Australia"
	RegionUnknown       = "Unknown Region"
	synthesizedSource   = "Local Data"
	polarCircleLatitude = 66.5
)

var regionTemplates = map[string][]string{
	RegionPacific: {
		"The Pacific Ocean covers more than 30% of Earth's surface.",
		"The Pacific Ocean contains the Mariana Trench, the deepest point on Earth at nearly 11,000 meters.",
		"The Pacific Ocean is home to thousands of islands, including Hawaii and Fiji.",
	},
	RegionAtlantic: {
		"The Atlantic Ocean is the second-largest ocean and is named after Atlas from Greek mythology.",
		"The Atlantic Ocean has an average depth of 3,646 meters (11,962 feet).",
		"The Atlantic Ocean is crossed by the Mid-Atlantic Ridge, the longest mountain range in the world.",
	},
	RegionIndian: {
		"The Indian Ocean is the warmest ocean in the world.",
		"The Indian Ocean is home to many endangered marine species, including sea turtles and dugongs.",
		"The Indian Ocean has the fewest marginal seas of all major oceans.",
	},
	RegionArctic: {
		"The Arctic is warming twice as fast as the global average due to climate change.",
		"The Arctic Ocean is the smallest and shallowest of the world's five oceans.",
		"During winter, much of the Arctic Ocean surface freezes, with the ice pack doubling the size of the Arctic's land area.",
	},
	RegionAntarctic: {
		"Antarctica is the coldest, windiest, and driest continent on Earth.",
		"Antarctica contains about 90% of the world's ice, representing about 70% of Earth's fresh water.",
		"Antarctica has no permanent human residents, only research stations with rotating staff.",
	},
	RegionNorthAmerica: {
		"North America is the third-largest continent by area and has diverse ecosystems from arctic tundra to tropical rainforest.",
		"North America contains the Great Lakes, which form the largest surface freshwater system on Earth.",
		"North America is home to the Grand Canyon, one of the most spectacular natural formations on the planet.",
	},
	RegionSouthAmerica: {
		"South America is home to the Amazon Rainforest, which produces about 20% of Earth's oxygen.",
		"South America contains the Andes, the world's longest continental mountain range.",
		"South America has the world's highest waterfall, Angel Falls in Venezuela, with a height of 979 meters.",
	},
	RegionEurope: {
		"Europe is the only continent without a desert.",
		"Europe has more navigable rivers than any other continent in the world.",
		"Europe is the second-smallest continent but has the third-largest population.",
	},
	RegionAfrica: {
		"Africa is the second-largest continent and contains the world's longest river, the Nile.",
		"Africa has the largest hot desert in the world, the Sahara, covering about 9.2 million square kilometers.",
		"Africa is home to more than 3,000 distinct ethnic groups and over 2,000 languages.",
	},
	RegionAsia: {
		"Asia is the largest continent, covering about 30% of Earth's total land area.",
		"Asia is home to about 60% of the world's population.",
		"Asia contains both the highest point on Earth (Mount Everest) and the lowest point (Dead Sea).",
	},
	RegionAustralia: {
		"Australia is the only nation to govern an entire continent.",
		"Australia is home to unique wildlife found nowhere else, including kangaroos, koalas, and platypuses.",
		"Australia has the largest coral reef system in the world, the Great Barrier Reef.",
	},
}

// SynthesizedFact is a fact built from coarse heuristics and templates
type SynthesizedFact struct {
	ID     string
	Region string
	Fact   string
	Source string
}

// Synthesizer builds templated facts when no catalog entry matches
type Synthesizer struct {
	intn func(n int) int
}

// NewSynthesizer creates a synthesizer using the global random source
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{intn: rand.Intn}
}

// RegionName derives a coarse region label. Checks run in a fixed order:
// polar bands, then ocean bands by longitude, then continent boxes.
func RegionName(latitude, longitude float64) string {
	if latitude > polarCircleLatitude {
		return RegionArctic
	}
	if latitude < -polarCircleLatitude {
		return RegionAntarctic
	}

	// Oceans
	if (longitude < -30 && longitude > -180) || (longitude > 150 && longitude <= 180) {
		return RegionPacific
	}
	if (longitude >= -30 && longitude < 0) || (longitude >= -80 && longitude < -30) {
		return RegionAtlantic
	}
	if longitude >= 40 && longitude < 100 && latitude < 30 {
		return RegionIndian
	}

	// Continents
	switch {
	case latitude >= 15 && latitude <= 70 && longitude >= -170 && longitude <= -50:
		return RegionNorthAmerica
	case latitude >= -55 && latitude <= 15 && longitude >= -80 && longitude <= -35:
		return RegionSouthAmerica
	case latitude >= 35 && latitude <= 70 && longitude >= -10 && longitude <= 40:
		return RegionEurope
	case latitude >= -35 && latitude <= 35 && longitude >= -20 && longitude <= 50:
		return RegionAfrica
	case latitude >= 0 && latitude <= 75 && longitude >= 40 && longitude <= 180:
		return RegionAsia
	case latitude >= -40 && latitude <= -10 && longitude >= 110 && longitude <= 155:
		return RegionAustralia
	}

	return RegionUnknown
}

// Synthesize returns a templated fact for the coordinates. It has no side effects
// beyond drawing from the random source.
func (s *Synthesizer) Synthesize(latitude, longitude float64) SynthesizedFact {
	lon := longitude
	if lon < -180 || lon > 180 {
		lon = tracking.NormalizeLongitude(lon)
	}
	region := RegionName(latitude, lon)

	templates, ok := regionTemplates[region]
	if !ok {
		templates = []string{
			fmt.Sprintf("You are currently over %s.", region),
			fmt.Sprintf("The ISS is passing over %s at coordinates %.2f°, %.2f°.", region, latitude, longitude),
			fmt.Sprintf("This area (%.2f°, %.2f°) is part of %s.", latitude, longitude, region),
		}
	}

	return SynthesizedFact{
		ID:     fmt.Sprintf("local-%d-%d", tracking.WholeDegrees(latitude), tracking.WholeDegrees(longitude)),
		Region: region,
		Fact:   templates[s.intn(len(templates))],
		Source: synthesizedSource,
	}
}
