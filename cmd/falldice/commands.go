package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/geniusisme/falldice/internal/attack"
	"github.com/geniusisme/falldice/internal/cast"
	"github.com/geniusisme/falldice/internal/client"
	"github.com/geniusisme/falldice/internal/config"
	"github.com/geniusisme/falldice/internal/database"
	"github.com/geniusisme/falldice/internal/logger"
	"github.com/geniusisme/falldice/internal/report"
	"github.com/geniusisme/falldice/internal/server"
	"github.com/geniusisme/falldice/utilities/balance"
)

// loadCasts returns the casts named by -casts or -preset. Exactly one must be set.
func loadCasts(castsPath, preset string) ([]cast.Definition, error) {
	switch {
	case castsPath != "" && preset != "":
		return nil, errors.New("use either -casts or -preset, not both")
	case castsPath != "":
		return cast.LoadFromYAML(castsPath)
	case preset == "all":
		return cast.Presets(), nil
	case preset != "":
		def, err := cast.Preset(preset)
		if err != nil {
			return nil, err
		}
		return []cast.Definition{def}, nil
	default:
		return nil, errors.New("one of -casts or -preset is required")
	}
}

func openDatabase(cfg *config.Config) (*database.Database, error) {
	db, err := database.OpenWithConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func runEval(args []string) error {
	fs, g := newFlagSet("eval")
	castsPath := fs.String("casts", "", "Path to casts YAML file")
	preset := fs.String("preset", "", "Built-in cast name, or \"all\"")
	pdfPath := fs.String("pdf", "", "Also render the report as a PDF to this path")
	save := fs.Bool("save", false, "Store the entries in the database (overrides config)")
	lang := fs.String("lang", "", "Language tag for number formatting (overrides config)")
	fs.Parse(args)

	cfg, cat, err := g.setup()
	if err != nil {
		return err
	}

	defs, err := loadCasts(*castsPath, *preset)
	if err != nil {
		return err
	}

	tagName := cfg.Report.Language
	if *lang != "" {
		tagName = *lang
	}
	tag, err := language.Parse(tagName)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", tagName, err)
	}

	entries := make([]report.Entry, 0, len(defs))
	for _, def := range defs {
		start := time.Now()
		entry, err := report.Evaluate(def, cat)
		if err != nil {
			return fmt.Errorf("cast %q: %w", def.Name, err)
		}
		logger.Debug("Cast evaluated", "cast", def.Name, "combinations", entry.Combinations, "elapsed", time.Since(start))
		entries = append(entries, entry)
	}

	if err := report.WriteTextLang(os.Stdout, entries, tag); err != nil {
		return err
	}

	if *pdfPath != "" {
		data, err := report.RenderPDF(entries, time.Now())
		if err != nil {
			return err
		}
		if err := os.WriteFile(*pdfPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write PDF: %w", err)
		}
		logger.Info("PDF report written", "path", *pdfPath)
	}

	if *save || cfg.Report.Save {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		for _, entry := range entries {
			rec, err := db.SaveReport(entry)
			if err != nil {
				return fmt.Errorf("failed to save %q: %w", entry.Name, err)
			}
			logger.Info("Report saved", "cast", entry.Name, "id", rec.ID)
		}
	}

	return nil
}

func runPresets(args []string) error {
	fs, g := newFlagSet("presets")
	fs.Parse(args)

	if _, _, err := g.setup(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDICE\tEFFECTS\tFINGERPRINT")
	for _, def := range cast.Presets() {
		fp, err := cast.Fingerprint(def)
		if err != nil {
			return err
		}
		effects := make([]string, len(def.Effects))
		for i, e := range def.Effects {
			effects[i] = e.Type
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Name, strings.Join(def.Dice, ","), strings.Join(effects, ","), fp[:12])
	}
	return w.Flush()
}

func runDice(args []string) error {
	fs, g := newFlagSet("dice")
	fs.Parse(args)

	_, cat, err := g.setup()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FACE\tSIDES\tPROBABILITY")
	for _, die := range cat.Dice() {
		faces, err := cat.Faces(die)
		if err != nil {
			return err
		}
		for _, f := range faces {
			fmt.Fprintf(w, "%s\t%d\t%.4f\n", f, f.Count, f.Probability)
		}
	}
	return w.Flush()
}

func runSchema(args []string) error {
	fs, _ := newFlagSet("schema")
	out := fs.String("out", "data/casts.schema.json", "Output path for the JSON schema")
	fs.Parse(args)

	if err := cast.WriteSchema(*out); err != nil {
		return err
	}
	fmt.Printf("Schema written to %s\n", *out)
	return nil
}

func runSimulate(args []string) error {
	fs, g := newFlagSet("simulate")
	castsPath := fs.String("casts", "", "Path to casts YAML file")
	preset := fs.String("preset", "", "Built-in cast name, or \"all\"")
	iterations := fs.Int("iterations", 100000, "Number of sampled attacks per cast")
	seed := fs.Uint64("seed", 0, "Random seed (0 = time-based)")
	exact := fs.Bool("exact", true, "Compare against the exact expected values")
	fs.Parse(args)

	_, cat, err := g.setup()
	if err != nil {
		return err
	}

	defs, err := loadCasts(*castsPath, *preset)
	if err != nil {
		return err
	}

	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(s, s>>32|1))
	fmt.Printf("Seed: %d, iterations: %d\n", s, *iterations)

	for _, def := range defs {
		d, err := def.Build(cat)
		if err != nil {
			return fmt.Errorf("cast %q: %w", def.Name, err)
		}
		sim, err := balance.Simulate(d, cat, *iterations, rng)
		if err != nil {
			return fmt.Errorf("cast %q: %w", def.Name, err)
		}

		fmt.Printf("\n=== %s ===\n", def.Name)
		fmt.Printf("Hit rate: %.2f%%  max damage: %.0f\n", sim.HitRate*100, sim.MaxDamage)

		if !*exact {
			for _, f := range attack.Facets() {
				fmt.Printf("  %-14s mean %9.4f  sd %9.4f\n", f, sim.Mean.Get(f), sim.StdDev.Get(f))
			}
			continue
		}

		want, err := d.AverageScores(cat)
		if err != nil {
			return fmt.Errorf("cast %q: %w", def.Name, err)
		}
		for _, dev := range balance.Compare(want, sim) {
			marker := ""
			if dev.Sigmas > 4 {
				marker = "  <-- check"
			}
			fmt.Printf("  %s%s\n", dev, marker)
		}
	}
	return nil
}

func runHistory(args []string) error {
	fs, g := newFlagSet("history")
	limit := fs.Int("limit", 20, "Maximum entries to show (0 = all)")
	fs.Parse(args)

	cfg, _, err := g.setup()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ListReports(*limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No saved reports.")
		return nil
	}

	entries := make([]report.Entry, len(records))
	for i, rec := range records {
		entries[i] = rec.Entry
	}
	return report.WriteText(os.Stdout, entries)
}

func runServe(args []string) error {
	fs, g := newFlagSet("serve")
	addr := fs.String("addr", "", "Listen address (overrides config)")
	save := fs.Bool("save", false, "Store evaluated entries in the database (overrides config)")
	fs.Parse(args)

	cfg, cat, err := g.setup()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// A nil *Database must not reach the server as a non-nil interface.
	var store server.ReportStore
	if *save || cfg.Report.Save {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Always("falldice server starting", "addr", cfg.Server.Addr, "dice", len(cat.Dice()), "persist", store != nil)
	if err := server.NewServer(cfg.Server, cat, store).ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Always("falldice server stopped")
	return nil
}

func runRemote(args []string) error {
	fs, g := newFlagSet("remote")
	url := fs.String("url", "ws://localhost:8080/ws", "Evaluation server WebSocket URL")
	castsPath := fs.String("casts", "", "Path to casts YAML file")
	preset := fs.String("preset", "", "Built-in cast name, or \"all\"")
	timeout := fs.Duration("timeout", time.Minute, "How long to wait for the reply")
	fs.Parse(args)

	if _, _, err := g.setup(); err != nil {
		return err
	}

	defs, err := loadCasts(*castsPath, *preset)
	if err != nil {
		return err
	}
	doc, err := yaml.Marshal(cast.CastsConfig{Casts: defs})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, *url, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.Evaluate(doc, *timeout)
	if err != nil {
		return err
	}
	return report.WriteText(os.Stdout, entries)
}
