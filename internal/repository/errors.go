// Package repository implements service.Store on MySQL. Absent rows are
// reported with service.NotFound and duplicate keys with
// service.ErrConflict, so callers never see sql.ErrNoRows or driver
// errors for those two cases.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// translate maps driver level errors onto the service error kinds.
func translate(err error, entity string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return service.NotFound(entity, id)
	case isDuplicate(err):
		return fmt.Errorf("%s: %w", entity, service.ErrConflict)
	}
	return err
}
