package ledger

import (
	"database/sql"
	"fmt"
)

// #region types

// VariantCount is the number of distinct sessions assigned to one variant.
type VariantCount struct {
	VariantID string `json:"variant_id"`
	Sessions  int    `json:"sessions"`
}

// SessionRow is one stored assignment for a session.
type SessionRow struct {
	RunID        string `json:"run_id"`
	ExperimentID string `json:"experiment_id"`
	VariantID    string `json:"variant_id"`
	CreatedAt    string `json:"created_at"`
}

// AssignmentRow is one stored assignment with its session.
type AssignmentRow struct {
	SessionKey   string `json:"session_key"`
	ExperimentID string `json:"experiment_id"`
	VariantID    string `json:"variant_id"`
}

// #endregion

// #region queries

// Experiments lists every experiment id with at least one assignment.
func Experiments(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT experiment_id FROM assignments ORDER BY experiment_id`)
	if err != nil {
		return nil, fmt.Errorf("query experiments: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Distribution counts distinct sessions per variant for one experiment,
// across every run in the ledger.
func Distribution(db *sql.DB, experimentID string) ([]VariantCount, error) {
	rows, err := db.Query(`
		SELECT variant_id, COUNT(DISTINCT session_key)
		FROM assignments
		WHERE experiment_id = ?
		GROUP BY variant_id
		ORDER BY variant_id`,
		experimentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query distribution: %w", err)
	}
	defer rows.Close()

	var out []VariantCount
	for rows.Next() {
		var vc VariantCount
		if err := rows.Scan(&vc.VariantID, &vc.Sessions); err != nil {
			return nil, err
		}
		out = append(out, vc)
	}
	return out, rows.Err()
}

// SessionAssignments returns every stored assignment for sessionKey, oldest first.
func SessionAssignments(db *sql.DB, sessionKey string) ([]SessionRow, error) {
	rows, err := db.Query(`
		SELECT run_id, experiment_id, variant_id, created_at
		FROM assignments
		WHERE session_key = ?
		ORDER BY id`,
		sessionKey,
	)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.RunID, &r.ExperimentID, &r.VariantID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SessionReports returns the stored session-end summaries for sessionKey.
func SessionReports(db *sql.DB, sessionKey string) ([]string, error) {
	rows, err := db.Query(`SELECT summary FROM session_reports WHERE session_key = ? ORDER BY id`, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListAssignments returns every stored assignment, oldest first.
func ListAssignments(db *sql.DB) ([]AssignmentRow, error) {
	rows, err := db.Query(`SELECT session_key, experiment_id, variant_id FROM assignments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var out []AssignmentRow
	for rows.Next() {
		var r AssignmentRow
		if err := rows.Scan(&r.SessionKey, &r.ExperimentID, &r.VariantID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion
