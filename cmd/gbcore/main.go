// Command gbcore is a headless demo host for the core: it loads a ROM,
// runs it for a fixed number of frames with no input, and writes the
// final frame buffer out as a PNG so the core can be exercised without
// any windowing stack.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/urfave/cli"

	"github.com/pinwheel/gbcore"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Usage = "gbcore --rom <file> [options]"
	app.Description = "Runs a Game Boy ROM headlessly and writes the final frame to a PNG"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "path to the ROM file to run",
		},
		cli.StringFlag{
			Name:  "boot",
			Usage: "path to a boot ROM to map at reset (optional)",
		},
		cli.StringFlag{
			Name:  "model",
			Value: "auto",
			Usage: "hardware model to emulate: auto, dmg, or cgb",
		},
		cli.IntFlag{
			Name:  "frames",
			Value: 60,
			Usage: "number of frames to run before snapshotting",
		},
		cli.StringFlag{
			Name:  "out",
			Value: "frame.png",
			Usage: "path to write the final frame as a PNG",
		},
		cli.BoolFlag{
			Name:  "lenient",
			Usage: "continue past non-fatal ROM header defects",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gbcore:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		cli.ShowAppHelp(c)
		return cli.NewExitError("a --rom path is required", 1)
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("reading rom: %v", err), 1)
	}

	var bootROM []byte
	if bootPath := c.String("boot"); bootPath != "" {
		bootROM, err = os.ReadFile(bootPath)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("reading boot rom: %v", err), 1)
		}
	}

	model, err := parseModel(c.String("model"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	cfg := gbcore.Config{
		Model:         model,
		BootROM:       bootROM,
		HeaderLenient: c.Bool("lenient"),
	}

	gb, err := gbcore.New(rom, nil, cfg)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("loading rom: %v", err), 1)
	}

	frames := c.Int("frames")
	if frames <= 0 {
		return cli.NewExitError("--frames must be positive", 1)
	}
	for i := 0; i < frames; i++ {
		gb.ExecFrame()
	}

	outPath := c.String("out")
	if err := writePNG(outPath, gb.FrameBuffer()); err != nil {
		return cli.NewExitError(fmt.Sprintf("writing %s: %v", outPath, err), 1)
	}

	fmt.Printf("ran %d frames, wrote %s\n", frames, outPath)
	return nil
}

func parseModel(s string) (gbcore.Model, error) {
	switch s {
	case "", "auto":
		return gbcore.ModelAuto, nil
	case "dmg":
		return gbcore.ModelDMG, nil
	case "cgb":
		return gbcore.ModelCGB, nil
	case "sgb":
		return gbcore.ModelSGB, nil
	case "sgb2":
		return gbcore.ModelSGB2, nil
	case "agb":
		return gbcore.ModelAGB, nil
	default:
		return 0, fmt.Errorf("unknown model %q (want auto, dmg, cgb, sgb, sgb2, or agb)", s)
	}
}

func writePNG(path string, fb gbcore.FrameBuffer) error {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			px := fb.Pixels[y][x]
			img.Set(x, y, color.RGBA{R: px[0], G: px[1], B: px[2], A: 0xFF})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
