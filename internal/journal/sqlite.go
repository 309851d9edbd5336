package journal

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteJournal persists signals, trades, and backtest runs to a SQLite
// database.
type SQLiteJournal struct {
	db *sql.DB
	mu sync.Mutex
}

var _ Journal = (*SQLiteJournal)(nil)

// NewSQLiteJournal opens (or creates) the SQLite database and runs migrations.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so ad-hoc review queries do not block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	j := &SQLiteJournal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite journal opened: %s", dbPath)
	return j, nil
}

func (j *SQLiteJournal) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			trade_date TEXT NOT NULL,
			code       TEXT NOT NULL,
			strategy   TEXT NOT NULL,
			action     TEXT NOT NULL,
			confidence REAL,
			position   REAL,
			price      REAL,
			reason     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_date ON signals(trade_date)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_code ON signals(code)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			trade_date TEXT NOT NULL,
			code       TEXT NOT NULL,
			order_id   TEXT,
			action     TEXT NOT NULL,
			price      REAL,
			quantity   INTEGER,
			pnl_pct    REAL,
			reason     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(trade_date)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_code ON trades(code)`,

		`CREATE TABLE IF NOT EXISTS backtests (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			code              TEXT NOT NULL,
			strategy          TEXT NOT NULL,
			start_day         TEXT,
			end_day           TEXT,
			final_value       REAL,
			total_return      REAL,
			annualized_return REAL,
			max_drawdown      REAL,
			win_rate          REAL,
			trade_count       INTEGER,
			sharpe            REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtests_code ON backtests(code)`,
	}

	for _, s := range stmts {
		if _, err := j.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (j *SQLiteJournal) RecordSignal(e *SignalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`INSERT INTO signals
		(timestamp, trade_date, code, strategy, action, confidence, position, price, reason)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), e.Date.Format("2006-01-02"), e.Code, e.Strategy,
		string(e.Action), e.Confidence, e.Position, e.Price, e.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(e *TradeEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`INSERT INTO trades
		(timestamp, trade_date, code, order_id, action, price, quantity, pnl_pct, reason)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), e.Date.Format("2006-01-02"), e.Code, e.OrderID,
		string(e.Action), e.Price, e.Quantity, e.PnlPct, e.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordBacktest(e *BacktestEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	r := e.Result
	_, err := j.db.Exec(`INSERT INTO backtests
		(timestamp, code, strategy, start_day, end_day,
		 final_value, total_return, annualized_return, max_drawdown,
		 win_rate, trade_count, sharpe)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), e.Code, e.Strategy,
		e.StartDay.Format("2006-01-02"), e.EndDay.Format("2006-01-02"),
		r.FinalValue, r.TotalReturn, r.AnnualizedReturn, r.MaxDrawdown,
		r.WinRate, r.TradeCount, r.Sharpe,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	log.Println("[INFO] closing sqlite journal")
	return j.db.Close()
}
