package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/ledger"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to prompt_experiments.db")
	expID := flag.String("experiment", "", "show variant distribution for one experiment")
	session := flag.String("session", "", "show assignments and reports for one session")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/prompt_experiments.db [--experiment id] [--session key] [--json]")
		os.Exit(2)
	}
	if _, err := os.Stat(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch {
	case *session != "":
		err = runSessionMode(db, *session, *jsonOut)
	case *expID != "":
		err = runDistributionMode(db, []string{*expID}, *jsonOut)
	default:
		var ids []string
		ids, err = ledger.Experiments(db)
		if err == nil {
			err = runDistributionMode(db, ids, *jsonOut)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region distribution-mode

type distribution struct {
	ExperimentID string        `json:"experiment_id"`
	Total        int           `json:"total_sessions"`
	Variants     []variantLine `json:"variants"`
}

type variantLine struct {
	ledger.VariantCount
	Share float64 `json:"share"`
}

func runDistributionMode(db *sql.DB, ids []string, jsonOut bool) error {
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "no assignments found")
		return nil
	}

	dists := make([]distribution, 0, len(ids))
	for _, id := range ids {
		counts, err := ledger.Distribution(db, id)
		if err != nil {
			return err
		}
		dists = append(dists, buildDistribution(id, counts))
	}

	if jsonOut {
		return printJSON(dists)
	}
	for i, d := range dists {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("Experiment: %s (%d session(s))\n", d.ExperimentID, d.Total)
		fmt.Printf("  %-20s  %8s  %7s\n", "Variant", "Sessions", "Share")
		for _, v := range d.Variants {
			fmt.Printf("  %-20s  %8d  %6.1f%%\n", v.VariantID, v.Sessions, v.Share*100)
		}
	}
	return nil
}

func buildDistribution(id string, counts []ledger.VariantCount) distribution {
	d := distribution{ExperimentID: id, Variants: make([]variantLine, len(counts))}
	for _, c := range counts {
		d.Total += c.Sessions
	}
	for i, c := range counts {
		d.Variants[i] = variantLine{VariantCount: c}
		if d.Total > 0 {
			d.Variants[i].Share = float64(c.Sessions) / float64(d.Total)
		}
	}
	return d
}

// #endregion distribution-mode

// #region session-mode

type sessionDetail struct {
	SessionKey  string              `json:"session_key"`
	Assignments []ledger.SessionRow `json:"assignments"`
	Reports     []string            `json:"reports"`
}

func runSessionMode(db *sql.DB, key string, jsonOut bool) error {
	rows, err := ledger.SessionAssignments(db, key)
	if err != nil {
		return err
	}
	reports, err := ledger.SessionReports(db, key)
	if err != nil {
		return err
	}
	if len(rows) == 0 && len(reports) == 0 {
		return fmt.Errorf("session not found: %s", key)
	}

	if jsonOut {
		return printJSON(sessionDetail{SessionKey: key, Assignments: rows, Reports: reports})
	}

	fmt.Printf("Session: %s\n\n", key)
	fmt.Printf("%-10s  %-16s  %-16s  %s\n", "Run", "Experiment", "Variant", "Time")
	fmt.Printf("%-10s+-%-16s+-%-16s+-%s\n", "----------", "----------------", "----------------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %-16s  %-16s  %s\n", shortID(r.RunID), r.ExperimentID, r.VariantID, r.CreatedAt)
	}
	if len(reports) > 0 {
		fmt.Println("\nReports:")
		for _, s := range reports {
			fmt.Printf("  %s\n", s)
		}
	}
	return nil
}

// #endregion session-mode

// #region output

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
