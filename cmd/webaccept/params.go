package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"digital.vasic.webaccept/pkg/config"
)

type commandParams struct {
	configFile  string
	envFile     string
	endpoint    string
	headless    bool
	run         string
	skip        string
	jUnitFile   string
	resultsDir  string
	monitorAddr string
	metricsAddr string
	sitesFile   string
	logFile     string
	verbose     bool
	noColor     bool
	waitHub     time.Duration

	// set holds the names of flags given on the command line.
	set map[string]bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.StringVar(&c.configFile, "config", "", "YAML run configuration file")
	fs.StringVar(&c.envFile, "env", "", ".env file to load before reading WEBACCEPT_* settings")
	fs.StringVar(&c.endpoint, "endpoint", "", "remote WebDriver hub URL")
	fs.BoolVar(&c.headless, "headless", false, "run the browser without a display")
	fs.StringVar(&c.run, "run", "", "regex pattern selecting cases to run")
	fs.StringVar(&c.skip, "skip", "", "regex pattern selecting cases not to run")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.resultsDir, "results", "", "directory for run summaries")
	fs.StringVar(&c.monitorAddr, "monitor", "", "serve the live run monitor on this address")
	fs.StringVar(&c.metricsAddr, "metrics", "", "serve Prometheus metrics on this address")
	fs.StringVar(&c.sitesFile, "sites", "", "YAML page catalog overlaying the built-in pages")
	fs.StringVar(&c.logFile, "log", "", "JSON-lines execution log path")
	fs.BoolVar(&c.verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&c.noColor, "no-color", false, "print verdicts without color")
	fs.DurationVar(&c.waitHub, "wait-hub", 0, "wait up to this long for the endpoint to report ready")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return false
	}

	c.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.set[f.Name] = true })
	return true
}

// apply overlays the flags given on the command line onto cfg.
func (c *commandParams) apply(cfg config.Config) config.Config {
	str := func(name, value string, dst *string) {
		if c.set[name] {
			*dst = value
		}
	}
	str("endpoint", c.endpoint, &cfg.Endpoint)
	str("junit", c.jUnitFile, &cfg.JUnitFile)
	str("results", c.resultsDir, &cfg.ResultsDir)
	str("monitor", c.monitorAddr, &cfg.MonitorAddr)
	str("metrics", c.metricsAddr, &cfg.MetricsAddr)
	str("sites", c.sitesFile, &cfg.SitesFile)
	str("log", c.logFile, &cfg.LogFile)
	if c.set["headless"] {
		cfg.Headless = c.headless
	}
	if c.set["wait-hub"] {
		cfg.HubWaitTimeout = c.waitHub
	}
	if c.set["verbose"] {
		cfg.Verbose = c.verbose
	}
	return cfg
}
