// Package journal stores withdrawal requests in a relational database so
// they survive restarts and the bridge operator can consume them with plain
// SQL. SQLite serves single-node deployments; Postgres is available for
// shared ones.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/LeJamon/goDEXd/internal/bridge"
	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/dex"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

const schema = `
CREATE TABLE IF NOT EXISTS withdrawals (
	id         BIGINT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	chain      TEXT NOT NULL,
	address    TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	amount     TEXT NOT NULL,
	target     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	processed  SMALLINT NOT NULL DEFAULT 0
)`

// DB is a withdrawal journal over database/sql. It implements
// bridge.Journal.
type DB struct {
	db     *sql.DB
	driver string
}

// Open connects with the given driver ("sqlite" or "postgres") and ensures
// the schema exists.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &DB{db: db, driver: driver}, nil
}

// Close releases the underlying connection pool.
func (j *DB) Close() error {
	return j.db.Close()
}

// rebind rewrites ? placeholders to $n for drivers that need it.
func (j *DB) rebind(query string) string {
	if j.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InsertWithdrawal appends one request.
func (j *DB) InsertWithdrawal(ctx context.Context, w bridge.WithdrawalRequest) error {
	processed := 0
	if w.Processed {
		processed = 1
	}
	_, err := j.db.ExecContext(ctx, j.rebind(
		`INSERT INTO withdrawals (id, user_id, chain, address, symbol, amount, target, created_at, processed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		w.ID, string(w.User), w.Token.Chain, w.Token.Address, w.Token.Symbol,
		w.Amount.String(), w.TargetAddress, w.CreatedAt.UTC().Format(time.RFC3339Nano), processed,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal %d: %w", w.ID, err)
	}
	return nil
}

// MarkWithdrawalProcessed flips the processed flag of one request.
func (j *DB) MarkWithdrawalProcessed(ctx context.Context, id uint64) error {
	res, err := j.db.ExecContext(ctx, j.rebind(
		`UPDATE withdrawals SET processed = 1 WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("mark withdrawal %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return bridge.ErrWithdrawalNotFound
	}
	return nil
}

// ListWithdrawals returns requests ordered by id.
func (j *DB) ListWithdrawals(ctx context.Context, includeProcessed bool) ([]bridge.WithdrawalRequest, error) {
	query := `SELECT id, user_id, chain, address, symbol, amount, target, created_at, processed
		FROM withdrawals`
	if !includeProcessed {
		query += ` WHERE processed = 0`
	}
	query += ` ORDER BY id`

	rows, err := j.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var out []bridge.WithdrawalRequest
	for rows.Next() {
		var (
			w         bridge.WithdrawalRequest
			user      string
			chain     string
			address   string
			symbol    string
			amt       string
			createdAt string
			processed int
		)
		if err := rows.Scan(&w.ID, &user, &chain, &address, &symbol, &amt, &w.TargetAddress, &createdAt, &processed); err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		w.User = dex.AccountID(user)
		w.Token = token.New(chain, address, symbol)
		parsed, err := amount.Parse(amt)
		if err != nil {
			return nil, fmt.Errorf("withdrawal %d amount: %w", w.ID, err)
		}
		w.Amount = parsed
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			w.CreatedAt = t
		}
		w.Processed = processed != 0
		out = append(out, w)
	}
	return out, rows.Err()
}
