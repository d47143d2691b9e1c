package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// UserRepo reads the `users` table. Accounts are created elsewhere; this
// repository only maintains the pass code column.
type UserRepo struct{ q queryer }

// NewUserRepo returns a UserRepo bound to q.
func NewUserRepo(q queryer) *UserRepo { return &UserRepo{q: q} }

const userColumns = `id, name, email, code, role, is_active, created_at, updated_at`

func scanUser(sc rowScanner) (model.User, error) {
	var (
		u    model.User
		code sql.NullString
	)
	err := sc.Scan(&u.ID, &u.Name, &u.Email, &code, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.Code = code.String
	return u, err
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	if err != nil {
		return model.User{}, translate(err, "user", id)
	}
	return u, nil
}

// lockUser is GetUser with a row lock. It only makes sense inside a
// transaction.
func (r *UserRepo) lockUser(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1 FOR UPDATE`, id))
	if err != nil {
		return model.User{}, translate(err, "user", id)
	}
	return u, nil
}

// ListActiveUsers returns active users by id.
func (r *UserRepo) ListActiveUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CodeInUse reports whether any user currently holds code.
func (r *UserRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE code = ?`, code).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateUserCode sets the user's pass code. The unique index on code turns
// a concurrent collision into service.ErrConflict.
func (r *UserRepo) UpdateUserCode(ctx context.Context, id uint64, code string, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET code = ?, updated_at = ? WHERE id = ?`, code, now.UTC(), id)
	if err != nil {
		return translate(err, "user code", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the user is missing or the code did not change.
		if _, err := r.GetUser(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
