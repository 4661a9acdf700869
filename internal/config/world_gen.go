package config

import (
	"fmt"

	"voxelstream/internal/world"
)

// GenerationConfig holds world generation settings.
type GenerationConfig struct {
	SeaLevel int  `yaml:"sea_level"`
	Caves    bool `yaml:"caves"`
	// Classify vegetation from its own single-octave samples instead of
	// reusing the terrain biome.
	ResampleVegetationBiome bool `yaml:"resample_vegetation_biome"`
	WarpErosion             bool `yaml:"warp_erosion"`
}

// DefaultGeneration returns the standard generation settings.
func DefaultGeneration() GenerationConfig {
	o := world.DefaultGeneratorOptions()
	return GenerationConfig{
		SeaLevel:                o.SeaLevel,
		Caves:                   o.Caves,
		ResampleVegetationBiome: o.ResampleVegetationBiome,
		WarpErosion:             o.WarpErosion,
	}
}

func (g GenerationConfig) validate() error {
	if g.SeaLevel < world.MinY || g.SeaLevel >= world.MaxY {
		return fmt.Errorf("%w: generation.sea_level %d outside [%d, %d)", ErrInvalid, g.SeaLevel, world.MinY, world.MaxY)
	}
	return nil
}

// GeneratorOptions converts the section for world.NewGenerator.
func (g GenerationConfig) GeneratorOptions() world.GeneratorOptions {
	return world.GeneratorOptions{
		SeaLevel:                g.SeaLevel,
		Caves:                   g.Caves,
		ResampleVegetationBiome: g.ResampleVegetationBiome,
		WarpErosion:             g.WarpErosion,
	}
}
