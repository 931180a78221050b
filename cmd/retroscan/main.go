// Command retroscan is an interactive static analyser for 64 KiB Z80
// and MOS 6502 address spaces: it decodes raw memory images into
// labelled code/data item lists, and can export or re-import the
// resulting decorations.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"retroscan/analysis"
	"retroscan/cpu"
)

func main() {
	app := &cli.App{
		Name:  "retroscan",
		Usage: "static disassembly and analysis of Z80/6502 memory images",
		Commands: []*cli.Command{
			analyseCommand,
			exportCommand,
			importCommand,
			pagesCommand,
			inspectCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		defaultLogger.Errorf("retroscan: %v", err)
		os.Exit(1)
	}
}

var imageFlags = []cli.Flag{
	&cli.StringFlag{Name: "image", Required: true, Usage: "path to a raw memory-image file"},
	&cli.StringFlag{Name: "org", Value: "0x0000", Usage: "address the image is loaded at"},
	&cli.StringFlag{Name: "kind", Value: "z80", Usage: "z80 or 6502"},
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("retroscan: invalid address %q: %w", s, err)
	}
	return uint16(v), nil
}

func parseKind(s string) (cpu.Kind, error) {
	switch strings.ToLower(s) {
	case "z80":
		return cpu.Z80, nil
	case "6502", "m6502":
		return cpu.M6502, nil
	default:
		return 0, fmt.Errorf("retroscan: unknown cpu kind %q", s)
	}
}

// buildAnalyser loads the image named by c's --image/--org/--kind flags
// and maps it into a single read/write bank spanning the whole address
// space, so every byte the host image covers is visible both to the
// analyser's instruction decoder and to the `pages` exporter.
func buildAnalyser(c *cli.Context) (*analysis.Analyser, *fileHost, error) {
	org, err := parseAddr(c.String("org"))
	if err != nil {
		return nil, nil, err
	}
	kind, err := parseKind(c.String("kind"))
	if err != nil {
		return nil, nil, err
	}
	host, err := loadImage(c.String("image"), org, kind)
	if err != nil {
		return nil, nil, err
	}

	a := analysis.NewAnalyser(host)
	bank, err := a.CreateBank("image", analysis.PageCount, host.Bytes(), false)
	if err != nil {
		return nil, nil, err
	}
	if err := a.MapBank(bank.ID, 0); err != nil {
		return nil, nil, err
	}
	return a, host, nil
}

var analyseCommand = &cli.Command{
	Name:  "analyse",
	Usage: "run a static analysis pass from an entry point and print the item list",
	Flags: append(imageFlags,
		&cli.StringFlag{Name: "entry", Required: true, Usage: "address to start analysis from"},
		&cli.StringFlag{Name: "start", Value: "0x0000", Usage: "first address to print"},
		&cli.StringFlag{Name: "end", Value: "0xFFFF", Usage: "last address (exclusive) to print"},
	),
	Action: func(c *cli.Context) error {
		a, _, err := buildAnalyser(c)
		if err != nil {
			return err
		}
		entry, err := parseAddr(c.String("entry"))
		if err != nil {
			return err
		}
		start, err := parseAddr(c.String("start"))
		if err != nil {
			return err
		}
		end, err := parseAddr(c.String("end"))
		if err != nil {
			return err
		}

		a.AnalyseFromPC(entry)
		fmt.Print(a.RenderText(a.BuildItemList(start, end)))
		return nil
	},
}

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "analyse an image and write its decorations as JSON",
	Flags: append(imageFlags,
		&cli.StringFlag{Name: "entry", Required: true, Usage: "address to start analysis from"},
		&cli.StringFlag{Name: "out", Required: true, Usage: "output JSON file path"},
	),
	Action: func(c *cli.Context) error {
		a, _, err := buildAnalyser(c)
		if err != nil {
			return err
		}
		entry, err := parseAddr(c.String("entry"))
		if err != nil {
			return err
		}
		a.AnalyseFromPC(entry)

		blob, err := a.ExportJSON()
		if err != nil {
			return fmt.Errorf("retroscan: exporting json: %w", err)
		}
		if err := os.WriteFile(c.String("out"), blob, 0o644); err != nil {
			return fmt.Errorf("retroscan: writing %q: %w", c.String("out"), err)
		}
		defaultLogger.Log(fmt.Sprintf("wrote %d bytes to %s", len(blob), c.String("out")))
		return nil
	},
}

var importCommand = &cli.Command{
	Name:  "import",
	Usage: "load a JSON decoration export over an image and print the item list",
	Flags: append(imageFlags,
		&cli.StringFlag{Name: "in", Required: true, Usage: "input JSON file path"},
		&cli.StringFlag{Name: "start", Value: "0x0000", Usage: "first address to print"},
		&cli.StringFlag{Name: "end", Value: "0xFFFF", Usage: "last address (exclusive) to print"},
	),
	Action: func(c *cli.Context) error {
		a, _, err := buildAnalyser(c)
		if err != nil {
			return err
		}
		blob, err := os.ReadFile(c.String("in"))
		if err != nil {
			return fmt.Errorf("retroscan: reading %q: %w", c.String("in"), err)
		}
		if err := a.ImportJSON(blob); err != nil {
			return fmt.Errorf("retroscan: importing json: %w", err)
		}

		start, err := parseAddr(c.String("start"))
		if err != nil {
			return err
		}
		end, err := parseAddr(c.String("end"))
		if err != nil {
			return err
		}
		fmt.Print(a.RenderText(a.BuildItemList(start, end)))
		return nil
	},
}

var pagesCommand = &cli.Command{
	Name:  "pages",
	Usage: "analyse an image and dump one binary decoration file per mapped (Used) page",
	Flags: append(imageFlags,
		&cli.StringFlag{Name: "entry", Required: true, Usage: "address to start analysis from"},
		&cli.StringFlag{Name: "outdir", Required: true, Usage: "directory to write page_XXXX.bin files into"},
	),
	Action: func(c *cli.Context) error {
		a, _, err := buildAnalyser(c)
		if err != nil {
			return err
		}
		entry, err := parseAddr(c.String("entry"))
		if err != nil {
			return err
		}
		a.AnalyseFromPC(entry)

		outdir := c.String("outdir")
		if err := os.MkdirAll(outdir, 0o755); err != nil {
			return fmt.Errorf("retroscan: creating %q: %w", outdir, err)
		}

		for _, page := range a.UsedPages() {
			name := filepath.Join(outdir, fmt.Sprintf("page_%04X.bin", page.BaseAddr))
			f, err := os.Create(name)
			if err != nil {
				return fmt.Errorf("retroscan: creating %q: %w", name, err)
			}
			err = analysis.WritePage(f, page)
			closeErr := f.Close()
			if err != nil {
				return fmt.Errorf("retroscan: writing %q: %w", name, err)
			}
			if closeErr != nil {
				return fmt.Errorf("retroscan: closing %q: %w", name, closeErr)
			}
		}
		defaultLogger.Log(fmt.Sprintf("wrote %d page files to %s", len(a.UsedPages()), outdir))
		return nil
	},
}

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "open an interactive browser over the analyser's item list",
	Flags: append(imageFlags,
		&cli.StringFlag{Name: "entry", Required: true, Usage: "address to start analysis from"},
		&cli.BoolFlag{Name: "dump", Usage: "spew the analyser state instead of launching the TUI"},
	),
	Action: func(c *cli.Context) error {
		a, _, err := buildAnalyser(c)
		if err != nil {
			return err
		}
		entry, err := parseAddr(c.String("entry"))
		if err != nil {
			return err
		}
		a.AnalyseFromPC(entry)

		if c.Bool("dump") {
			spew.Dump(a.UsedPages())
			return nil
		}
		return runInspector(a, entry)
	},
}
