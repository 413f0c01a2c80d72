// schrender converts an Altium schematic document to a vector image.
//
//	schrender [-config file.toml] [-renderer svg] [-part n] [-o out.svg] file.SchDoc
//
// Exit status is zero whenever a best-effort render was produced;
// structural warnings go to the log, not the exit code, unless -strict
// is set.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"schlib/observability"
	"schlib/recovery"
	"schlib/render"
	"schlib/render/svg"
	"schlib/sch"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("schrender", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML config file")
	renderer := fs.String("renderer", "", "output renderer (svg)")
	part := fs.Int("part", 0, "render this part of multi-part components")
	output := fs.String("o", "", "output file (default stdout)")
	title := fs.String("title", "", "title block text")
	strict := fs.Bool("strict", false, "treat structural warnings as errors")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: schrender [options] file.SchDoc")
		return 2
	}
	input := fs.Arg(0)

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if *renderer != "" {
		cfg.Renderer = *renderer
	}
	if *part != 0 {
		cfg.Part = *part
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *title != "" {
		cfg.Title = *title
	}
	if *strict {
		cfg.Strict = true
	}
	if *verbose {
		cfg.Verbose = true
	}
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log := observability.NewZerolog(os.Stderr, level)

	var strategy recovery.Strategy
	if cfg.Strict {
		strategy = recovery.NewStrictStrategy()
	}
	tree, err := sch.ParseFile(input, sch.ParseOptions{Recovery: strategy, Logger: log})
	if err != nil {
		log.Error("parse failed", observability.String("file", input), observability.Error("error", err))
		return 1
	}
	if cfg.Strict && len(tree.Warnings) > 0 {
		log.Error("structural warnings in strict mode",
			observability.Int("warnings", len(tree.Warnings)))
		return 1
	}

	out := os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			log.Error("create output", observability.Error("error", err))
			return 1
		}
		defer f.Close()
		out = f
	}

	date := cfg.Date
	if date == "" {
		if info, err := os.Stat(input); err == nil {
			date = info.ModTime().Format("2006-01-02")
		}
	}
	opts := render.Options{
		Part:      cfg.Part,
		Title:     cfg.Title,
		FileName:  input,
		DateStamp: date,
		Logger:    log,
	}
	if err := render.Render(tree, svg.New(out), opts); err != nil {
		log.Error("render failed", observability.Error("error", err))
		return 1
	}
	return 0
}
