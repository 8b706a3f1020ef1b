// falldice computes the expected outcome of dice attacks.
//
// Usage:
//
//	falldice <command> [options]
//
// Commands:
//
//	eval      - Evaluate casts exactly and print (or save) the report
//	presets   - List the built-in casts
//	dice      - Print the face catalogue
//	schema    - Write the casts file JSON schema
//	simulate  - Monte Carlo estimate of a cast, compared with the exact value
//	history   - List saved reports
//	serve     - Run the WebSocket evaluation service
//	remote    - Evaluate casts on a running server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/geniusisme/falldice/internal/config"
	"github.com/geniusisme/falldice/internal/dice"
	"github.com/geniusisme/falldice/internal/logger"
)

type command struct {
	name    string
	summary string
	run     func(args []string) error
}

var commands = []command{
	{"eval", "Evaluate casts exactly and print (or save) the report", runEval},
	{"presets", "List the built-in casts", runPresets},
	{"dice", "Print the face catalogue", runDice},
	{"schema", "Write the casts file JSON schema", runSchema},
	{"simulate", "Monte Carlo estimate of a cast, compared with the exact value", runSimulate},
	{"history", "List saved reports", runHistory},
	{"serve", "Run the WebSocket evaluation service", runServe},
	{"remote", "Evaluate casts on a running server", runRemote},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage()
		return
	}

	for _, c := range commands {
		if c.name == name {
			err := c.run(os.Args[2:])
			logger.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "falldice %s: %v\n", name, err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Printf("Unknown command: %s\n\n", name)
	printUsage()
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`falldice - expected values of dice attacks

Usage: falldice <command> [options]

Commands:`)
	for _, c := range commands {
		fmt.Printf("  %-9s %s\n", c.name, c.summary)
	}
	fmt.Println(`
Examples:
  falldice eval -preset cowboy
  falldice eval -casts data/casts.yaml -pdf report.pdf -save
  falldice simulate -preset sniper -iterations 200000 -seed 7
  falldice serve -addr :8080
  falldice remote -url ws://localhost:8080/ws -preset all

Use "falldice <command> -h" for more information about a command.`)
}

// globalFlags are accepted by every command.
type globalFlags struct {
	configPath  string
	loggingPath string
	dicePath    string
}

func newFlagSet(name string) (*flag.FlagSet, *globalFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	g := &globalFlags{}
	fs.StringVar(&g.configPath, "config", "data/falldice.yaml", "Path to config YAML file")
	fs.StringVar(&g.loggingPath, "logging", "data/logging.yaml", "Path to logging config YAML file")
	fs.StringVar(&g.dicePath, "dice", "", "Path to a dice YAML file merged over the built-in dice (overrides config)")
	return fs, g
}

// setup initializes logging, loads configuration and builds the face catalogue.
func (g *globalFlags) setup() (*config.Config, *dice.Catalogue, error) {
	logConfig, err := logger.LoadConfig(g.loggingPath)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Initialize(logConfig); err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, nil, err
	}

	cat := dice.Default()
	path := cfg.Dice.CataloguePath
	if g.dicePath != "" {
		path = g.dicePath
	}
	if path != "" {
		custom, err := dice.LoadCatalogueFromYAML(path)
		if err != nil {
			return nil, nil, err
		}
		cat = cat.Merge(custom)
		logger.Info("Custom dice loaded", "path", path, "dice", len(custom.Dice()))
	}

	return cfg, cat, nil
}
