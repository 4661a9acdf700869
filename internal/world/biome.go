package world

import (
	"image/color"

	"voxelstream/internal/registry"
)

// Biome is a terrain class derived from the climate fields of a column.
type Biome uint8

const (
	Ocean Biome = iota
	Beach
	Plains
	Forest
	Mountains
	SnowyMountains
	Desert
	SnowyPlains
	biomeCount
)

// BiomeInfo holds the static parameters of a biome.
type BiomeInfo struct {
	Name        string
	Temperature float64
	Humidity    float64
	Top         registry.BlockID
	Filler      registry.BlockID
	TreeDensity float64
	MapColor    color.RGBA
}

var biomeTable = [biomeCount]BiomeInfo{
	Ocean:          {"Ocean", 0.5, 0.5, registry.Sand, registry.Sand, 0, color.RGBA{0, 0, 180, 255}},
	Beach:          {"Beach", 0.5, 0.4, registry.Sand, registry.Sand, 0, color.RGBA{240, 220, 130, 255}},
	Plains:         {"Plains", 0.5, 0.4, registry.Grass, registry.Dirt, 0.05, color.RGBA{100, 200, 100, 255}},
	Forest:         {"Forest", 0.5, 0.8, registry.Grass, registry.Dirt, 0.9, color.RGBA{34, 139, 34, 255}},
	Mountains:      {"Mountains", 0.2, 0.4, registry.Stone, registry.Stone, 0.1, color.RGBA{120, 120, 120, 255}},
	SnowyMountains: {"Snowy Mountains", -1, 0.5, registry.Snow, registry.Stone, 0, color.RGBA{240, 240, 255, 255}},
	Desert:         {"Desert", 2.0, 0.0, registry.Sand, registry.Sand, 0, color.RGBA{210, 180, 100, 255}},
	SnowyPlains:    {"Snowy Plains", -1, 0.5, registry.Snow, registry.Dirt, 0.05, color.RGBA{200, 240, 255, 255}},
}

// Info returns the parameters of b.
func (b Biome) Info() BiomeInfo {
	if b >= biomeCount {
		return biomeTable[Plains]
	}
	return biomeTable[b]
}

func (b Biome) String() string { return b.Info().Name }

// Classify maps continentalness, temperature and humidity to a biome.
// It is pure and may be called without any chunk being resident.
func Classify(continent, temperature, humidity float64) Biome {
	switch {
	case continent < -0.10:
		return Ocean
	case continent < -0.05:
		return Beach
	case continent > 0.6:
		if temperature < -0.2 {
			return SnowyMountains
		}
		return Mountains
	case temperature < -0.3:
		return SnowyPlains
	case temperature > 0.4:
		if humidity < 0 {
			return Desert
		}
		return Plains
	case humidity > 0.3:
		return Forest
	default:
		return Plains
	}
}
