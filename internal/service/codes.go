package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/scheduler"
)

// Pass codes are six digit numbers in [codeMin, codeMin+codeSpan).
const (
	codeMin      = 100000
	codeSpan     = 900000
	codeAttempts = 10
)

// CodeIssuer hands out unique pass codes to users.
type CodeIssuer struct {
	users        UserStore
	reservations ReservationStore
	clock        Clock
}

func NewCodeIssuer(users UserStore, reservations ReservationStore, clock Clock) *CodeIssuer {
	if users == nil || reservations == nil || clock == nil {
		panic("nil dependency passed to NewCodeIssuer")
	}
	return &CodeIssuer{users: users, reservations: reservations, clock: clock}
}

// Generate returns a code no user currently holds.
func (ci *CodeIssuer) Generate(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		used, err := ci.users.CodeInUse(ctx, code)
		if err != nil {
			return "", persistence("check code", err)
		}
		if !used {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free pass code after %d attempts", codeAttempts)
}

// Assign gives the user a fresh code, retrying when another writer takes
// the same code first.
func (ci *CodeIssuer) Assign(ctx context.Context, userID uint64) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := ci.Generate(ctx)
		if err != nil {
			return "", err
		}
		err = ci.users.UpdateUserCode(ctx, userID, code, ci.clock.Now())
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return "", persistence("update user code", err)
		}
		return code, nil
	}
	return "", fmt.Errorf("assigning code to user %d: %w", userID, ErrConflict)
}

// AssignMissing gives a code to every active user without one.
func (ci *CodeIssuer) AssignMissing(ctx context.Context) (int, error) {
	return ci.assign(ctx, func(code string) bool { return code == "" })
}

// Rotate replaces the codes of active users. Users holding a reservation
// that has not ended keep their code, since the keypad looks reservations
// up by the code copied onto them.
func (ci *CodeIssuer) Rotate(ctx context.Context) (int, error) {
	return ci.assign(ctx, func(string) bool { return true })
}

func (ci *CodeIssuer) assign(ctx context.Context, want func(code string) bool) (int, error) {
	users, err := ci.users.ListActiveUsers(ctx)
	if err != nil {
		return 0, persistence("list users", err)
	}
	now := ci.clock.Now()
	changed := 0
	for _, u := range users {
		if !want(u.Code) {
			continue
		}
		if u.Code != "" {
			busy, err := ci.reservations.HasUpcomingReservation(ctx, u.ID, now)
			if err != nil {
				return changed, persistence("check upcoming reservation", err)
			}
			if busy {
				continue
			}
		}
		if _, err := ci.Assign(ctx, u.ID); err != nil {
			return changed, err
		}
		changed++
	}
	if changed > 0 {
		log.Info(ctx, "pass codes assigned", slog.Int("count", changed))
	}
	return changed, nil
}

// Register schedules Rotate on sch every interval.
func (ci *CodeIssuer) Register(sch *scheduler.Scheduler, every time.Duration) error {
	return sch.Add(scheduler.Job{
		Name:  "rotate-pass-codes",
		Every: every,
		Run: func(ctx context.Context) error {
			_, err := ci.Rotate(ctx)
			return err
		},
	})
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
