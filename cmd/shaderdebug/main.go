// Shader debug tool - renders the glow pass for a synthetic payload to a PNG.
//
// The payload comes from running the pipeline headless on synthetic hands
// for -ticks frames, so the image shows what the live canvas would.
//
// Usage: go run ./cmd/shaderdebug -ticks 600 -out glow.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cyberloops/config"
	"github.com/pthm-cable/cyberloops/detect"
	"github.com/pthm-cable/cyberloops/game"
	"github.com/pthm-cable/cyberloops/renderer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "glow.png", "Output PNG path")
	width := flag.Int("width", 1280, "Render width")
	height := flag.Int("height", 720, "Render height")
	ticks := flag.Int("ticks", 600, "Pipeline ticks to run before capturing")
	seed := flag.Int64("seed", 1, "RNG seed")
	dumpSource := flag.Bool("dump", false, "Print the generated fragment shader and exit")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *dumpSource {
		fmt.Print(renderer.GlowFragmentSource(cfg.Particles.MaxCount, cfg.Glow.Multiplier))
		return
	}

	g, err := game.New(game.Options{
		Seed:     *seed,
		Width:    *width,
		Height:   *height,
		Headless: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create pipeline: %v\n", err)
		os.Exit(1)
	}
	defer g.Unload()

	var f game.Frame
	for i := 0; i < *ticks; i++ {
		g.OnDetectionResult(detect.SyntheticHands(float64(i) * cfg.Derived.DT))
		f = g.Update()
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	glow, err := renderer.NewGlowRenderer(*width, *height, cfg.Particles.MaxCount, cfg.Glow.Multiplier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create glow renderer: %v\n", err)
		os.Exit(1)
	}
	defer glow.Unload()

	glow.Render(f.Uniforms)

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(glow.Texture())
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Glow rendered to: %s (%dx%d, %d/%d particles, %s)\n",
			*outPath, *width, *height, f.Uniforms.ParticleCount, f.Uniforms.Capacity, f.State)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
