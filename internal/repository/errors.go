// Package repository implements data access over MySQL. Sentinel errors
// defined here let handlers map storage failures to HTTP status codes
// without inspecting driver internals.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrUsernameExists is returned when an insert collides with the unique
// index on users.username. Handlers translate it into HTTP 409. The
// uniqueness race between concurrent registrations is settled by the
// index itself: at most one insert wins, the loser observes this error.
var ErrUsernameExists = errors.New("username already exists")

// mysql error 1062 = ER_DUP_ENTRY
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
