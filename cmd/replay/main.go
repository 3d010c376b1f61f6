package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/config"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/ledger"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to prompt_experiments.db (drift mode)")
	configPath := flag.String("config", "experiments.yaml", "experiments config to check against (drift mode)")
	verbose := flag.Bool("v", false, "print every event, not only failures (fixture mode)")
	flag.Parse()
	fixtures := flag.Args()

	if (*dbPath == "" && len(fixtures) == 0) || (*dbPath != "" && len(fixtures) > 0) {
		fmt.Fprintln(os.Stderr, "usage: replay [-v] fixture.json [fixture.json ...]")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/prompt_experiments.db [--config experiments.yaml]")
		os.Exit(2)
	}

	var exitCode int
	if *dbPath != "" {
		exitCode = runDriftMode(*dbPath, *configPath)
	} else {
		exitCode = runFixtureMode(fixtures, *verbose)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(paths []string, verbose bool) int {
	exitCode := 0
	for _, path := range paths {
		f, err := replay.LoadFixture(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
			return 2
		}
		report := replay.Run(f)
		printReport(path, report, verbose)
		if !report.Passed {
			exitCode = 1
		}
	}
	return exitCode
}

func printReport(path string, r replay.Report, verbose bool) {
	verdict := "PASS"
	if !r.Passed {
		verdict = "FAIL"
	}
	fmt.Printf("%s  %s", verdict, path)
	if r.Description != "" {
		fmt.Printf("  (%s)", r.Description)
	}
	fmt.Println()
	if r.Reason != "" {
		fmt.Printf("  setup: %s\n", r.Reason)
	}

	for _, res := range r.Results {
		if res.Passed && !verbose {
			continue
		}
		status := "OK"
		if !res.Passed {
			status = "DIFF"
		}
		fmt.Printf("  %-4d| %-12s| %s", res.Index, res.Kind, status)
		if res.Reason != "" {
			fmt.Printf("  %s", res.Reason)
		}
		fmt.Println()
	}
	fmt.Printf("  %d event(s), %d failed\n", len(r.Results), len(r.Failures()))
}

// #endregion fixture-mode

// #region drift-mode

func runDriftMode(dbPath, configPath string) int {
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer db.Close()

	logger := log.New(os.Stderr, "", 0)
	raw, err := config.LoadExperiments(configPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}
	// Registry warnings are not interesting here
	active := experiment.BuildActiveList(raw, log.New(io.Discard, "", 0))

	rows, err := ledger.ListAssignments(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read ledger: %v\n", err)
		return 2
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no assignments found in ledger")
		return 2
	}

	report := replay.CheckDrift(active, rows)

	fmt.Printf("%-24s| %-16s| %-14s| %s\n", "Session", "Experiment", "Recorded", "Current")
	fmt.Printf("%-24s+%-17s+%-15s+%s\n",
		"------------------------", "-----------------", "---------------", "--------------")
	for _, d := range report.Mismatches {
		fmt.Printf("%-24s| %-16s| %-14s| %s\n", d.SessionKey, d.ExperimentID, d.Recorded, d.Current)
	}

	fmt.Printf("\nSummary: %d checked, %d skipped, %d drifted\n",
		report.Checked, report.Skipped, len(report.Mismatches))
	if len(report.Mismatches) > 0 {
		return 1
	}
	return 0
}

// #endregion drift-mode
