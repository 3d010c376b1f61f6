package ledger

import (
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS assignments (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	session_key   TEXT NOT NULL,
	experiment_id TEXT NOT NULL,
	variant_id    TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assignments_experiment
ON assignments(experiment_id, variant_id);

CREATE INDEX IF NOT EXISTS idx_assignments_session
ON assignments(session_key);

CREATE TABLE IF NOT EXISTS session_reports (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	session_key   TEXT NOT NULL,
	summary       TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
`

// DefaultQueueSize bounds pending writes before records are dropped.
const DefaultQueueSize = 1024

// #endregion

// #region ledger-struct

type record struct {
	assignment *experiment.Assignment
	sessionKey string
	summary    string
	at         time.Time
}

// Ledger persists assignments and session-end summaries to SQLite. It is an
// experiment.Observer: hook calls only enqueue, a single goroutine writes.
// When the queue is full new records are dropped and counted.
type Ledger struct {
	db      *sql.DB
	ownsDB  bool
	runID   string
	logger  experiment.Logger
	queue   chan record
	done    chan struct{}
	dropped atomic.Int64

	closeOnce sync.Once
	closeMu   sync.RWMutex
	closed    bool
}

// #endregion

// #region constructor

// Open opens (or creates) the ledger database at path.
func Open(path string, logger experiment.Logger) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	l, err := New(db, logger, DefaultQueueSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	l.ownsDB = true
	return l, nil
}

// New runs migrations on db and starts the writer. The caller keeps
// ownership of db.
func New(db *sql.DB, logger experiment.Logger, queueSize int) (*Ledger, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	l := &Ledger{
		db:     db,
		runID:  uuid.New().String(),
		logger: logger,
		queue:  make(chan record, queueSize),
		done:   make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// #endregion

// #region accessors

// RunID identifies this process's rows.
func (l *Ledger) RunID() string {
	return l.runID
}

// DB returns the underlying database for read-only tooling.
func (l *Ledger) DB() *sql.DB {
	return l.db
}

// Dropped returns how many records were discarded because the queue was full.
func (l *Ledger) Dropped() int64 {
	return l.dropped.Load()
}

// #endregion

// #region observer

func (l *Ledger) Assigned(a experiment.Assignment) {
	l.enqueue(record{assignment: &a, at: time.Now().UTC()})
}

func (l *Ledger) Composed(bool) {}

func (l *Ledger) SessionReported(sessionKey string, assignments []experiment.Assignment) {
	l.enqueue(record{
		sessionKey: sessionKey,
		summary:    experiment.FormatSessionSummary(sessionKey, assignments),
		at:         time.Now().UTC(),
	})
}

func (l *Ledger) enqueue(rec record) {
	l.closeMu.RLock()
	defer l.closeMu.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	select {
	case l.queue <- rec:
	default:
		l.dropped.Add(1)
	}
}

// #endregion

// #region writer

func (l *Ledger) run() {
	defer close(l.done)
	for rec := range l.queue {
		if err := l.write(rec); err != nil {
			l.logger.Printf("prompt-experiments: ledger write failed: %v", err)
		}
	}
}

func (l *Ledger) write(rec record) error {
	at := rec.at.Format(time.RFC3339Nano)
	if a := rec.assignment; a != nil {
		_, err := l.db.Exec(
			`INSERT INTO assignments (run_id, session_key, experiment_id, variant_id, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			l.runID, a.SessionKey, a.ExperimentID, a.VariantID, at,
		)
		if err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
		return nil
	}
	_, err := l.db.Exec(
		`INSERT INTO session_reports (run_id, session_key, summary, created_at)
		 VALUES (?, ?, ?, ?)`,
		l.runID, rec.sessionKey, rec.summary, at,
	)
	if err != nil {
		return fmt.Errorf("insert session report: %w", err)
	}
	return nil
}

// #endregion

// #region close

// Close stops accepting records, drains the queue and, when the ledger opened
// the database itself, closes it.
func (l *Ledger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.closeMu.Lock()
		l.closed = true
		close(l.queue)
		l.closeMu.Unlock()

		<-l.done
		if l.ownsDB {
			err = l.db.Close()
		}
	})
	return err
}

// #endregion
