package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "user", 1))
	assert.ErrorIs(t, translate(sql.ErrNoRows, "user", 1), service.ErrNotFound)

	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '123456' for key 'users.code'"}
	err := translate(dup, "user code", 1)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.ErrorIs(t, err, service.ErrPersistence)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other, "user", 1))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: 1213}))
}

func TestStatusArgs(t *testing.T) {
	ph, args := statusArgs(model.ActiveStatuses)
	assert.Equal(t, "?,?", ph)
	assert.Equal(t, []any{"pending", "confirmed"}, args)
}
