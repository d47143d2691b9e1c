package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// queryer is satisfied by both *sql.DB and *sql.Tx, so every repository
// method runs unchanged inside or outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// statusArgs returns "?,?,..." and the matching args for an IN clause.
func statusArgs(statuses []model.ReservationStatus) (string, []any) {
	ph := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, s := range statuses {
		ph[i] = "?"
		args[i] = string(s)
	}
	return strings.Join(ph, ","), args
}
