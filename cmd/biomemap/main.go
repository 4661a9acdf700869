// Command biomemap renders the biome layout around a point to a PNG, using
// the same classification the generator applies to terrain.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"voxelstream/internal/world"
)

type mapOptions struct {
	centerX, centerZ int
	size             int // pixels per side before zoom
	blocksPerPixel   int
	shade            bool
}

var markerColor = color.RGBA{255, 0, 0, 255}

// renderMap samples one column per pixel. North (-z) is up.
func renderMap(gen *world.Generator, o mapOptions, seaLevel int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, o.size, o.size))
	half := o.size / 2
	for py := 0; py < o.size; py++ {
		for px := 0; px < o.size; px++ {
			wx := o.centerX + (px-half)*o.blocksPerPixel
			wz := o.centerZ + (py-half)*o.blocksPerPixel
			cl := gen.ClimateAt(wx, wz)
			c := world.Classify(cl.Continent, cl.Temperature, cl.Humidity).Info().MapColor
			if o.shade {
				c = shadeByHeight(c, world.TargetHeight(cl), seaLevel)
			}
			img.SetRGBA(px, py, c)
		}
	}
	// observer marker
	for d := -2; d <= 2; d++ {
		img.SetRGBA(half+d, half, markerColor)
		img.SetRGBA(half, half+d, markerColor)
	}
	return img
}

// shadeByHeight darkens low ground and brightens high ground around sea level.
func shadeByHeight(c color.RGBA, height float64, seaLevel int) color.RGBA {
	f := 1 + (height-float64(seaLevel))/300
	f = max(0.6, min(f, 1.4))
	scale := func(v uint8) uint8 { return uint8(min(255, float64(v)*f)) }
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), c.A}
}

// zoom upscales img by an integer factor without smoothing.
func zoom(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func main() {
	seed := flag.Int64("seed", 42, "world seed")
	out := flag.String("out", "biomes.png", "output PNG")
	var o mapOptions
	flag.IntVar(&o.centerX, "x", 0, "centre world x")
	flag.IntVar(&o.centerZ, "z", 0, "centre world z")
	flag.IntVar(&o.size, "size", 256, "map size in pixels")
	flag.IntVar(&o.blocksPerPixel, "scale", 8, "world blocks per pixel")
	flag.BoolVar(&o.shade, "shade", true, "shade by terrain height")
	factor := flag.Int("zoom", 2, "integer upscale factor")
	flag.Parse()

	if err := run(*seed, o, *factor, *out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(seed int64, o mapOptions, factor int, out string) error {
	if o.size <= 0 || o.blocksPerPixel <= 0 {
		return fmt.Errorf("size and scale must be positive")
	}
	opts := world.DefaultGeneratorOptions()
	gen := world.NewGenerator(seed, nil, opts)
	img := zoom(renderMap(gen, o, opts.SeaLevel), factor)

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	return f.Close()
}
