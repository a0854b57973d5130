// Package repository implements persistence for flights, seats,
// reservations, users and refresh tokens on MySQL.  Lookups that find no
// row return the matching model sentinel (model.ErrFlightNotFound and so
// on) so that callers never see sql.ErrNoRows for domain entities.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
