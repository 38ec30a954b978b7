package main

import (
	"fmt"
	"image/png"
	"log"
	"os"
	"strings"

	"github.com/bep/tga"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "tgainfo"
	app.Usage = "Inspect and convert Truevision TGA images"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Print header, footer and extension details",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				warnf := func(format string, args ...any) {}
				if c.Bool("verbose") {
					warnf = func(format string, args ...any) {
						fmt.Fprintf(os.Stderr, format+"\n", args...)
					}
				}

				result, err := tga.Decode(tga.Options{R: f, Warnf: warnf})
				if err != nil {
					return cli.Exit(err, 1)
				}

				printInfo(result)

				return nil
			},
		},
		{
			Name:      "convert",
			Usage:     "Convert a TGA image to PNG",
			ArgsUsage: "FILE [OUTPUT]",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				in := c.Args().First()
				out := c.Args().Get(1)
				if out == "" {
					out = strings.TrimSuffix(in, ".tga") + ".png"
				}

				f, err := os.Open(in)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				result, err := tga.Decode(tga.Options{R: f})
				if err != nil {
					return cli.Exit(err, 1)
				}

				w, err := os.Create(out)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer w.Close()

				if err := png.Encode(w, result.Image()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func printInfo(result tga.DecodeResult) {
	h := result.Header

	fmt.Printf("version:      %d\n", result.Version)
	fmt.Printf("dimensions:   %dx%d\n", result.ImageConfig.Width, result.ImageConfig.Height)
	fmt.Printf("pixel format: %s\n", result.ImageConfig.PixelFormat)
	fmt.Printf("bits/pixel:   %d\n", h.ImageSpec.BitPerPixel)
	fmt.Printf("compressed:   %t\n", h.ImageType.RunLength())
	fmt.Printf("row order:    %s\n", rowOrder(h.ImageSpec.Descriptor))
	if h.HasColorMap == 1 {
		fmt.Printf("color map:    %d entries, %d bits, first index %d\n",
			h.ColorMapSpec.Length, h.ColorMapSpec.BitDepth, h.ColorMapSpec.FirstEntryIndex)
	}

	ext := result.Extension
	if ext == nil {
		return
	}

	fmt.Printf("attributes:   %s\n", ext.Attributes)
	if ext.AuthorName != "" {
		fmt.Printf("author:       %s\n", ext.AuthorName)
	}
	if ext.AuthorComment != "" {
		fmt.Printf("comment:      %s\n", ext.AuthorComment)
	}
	if !ext.Timestamp.IsZero() {
		fmt.Printf("timestamp:    %s\n", ext.Timestamp.Format("2006-01-02 15:04:05"))
	}
	if ext.SoftwareID != "" {
		fmt.Printf("software:     %s %s\n", ext.SoftwareID, ext.SoftwareVersion)
	}
	if ext.JobName != "" {
		fmt.Printf("job:          %s (%s)\n", ext.JobName, ext.JobTime)
	}
}

func rowOrder(d tga.Descriptor) string {
	if d.TopToBottom() {
		return "top-to-bottom"
	}
	return "bottom-to-top"
}
