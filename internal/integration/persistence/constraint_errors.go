package persistence

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainerror "github.com/campus-coins/backend/internal/domain/error"
)

// sqliteUniquePrefix precedes "table.column" in SQLite unique violations.
const sqliteUniquePrefix = "UNIQUE constraint failed: "

// uniqueTarget names the unique keys of one account table.
type uniqueTarget struct {
	table           string
	emailIndex      string
	secondaryColumn string
	secondaryIndex  string
}

// translateUniqueViolation maps a unique violation on the account table to
// ErrDuplicateEmail or ErrDuplicateSecondaryID. Other errors pass through.
// A violation whose column cannot be identified is reported as a duplicate email.
func translateUniqueViolation(err error, target uniqueTarget) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgerrcode.UniqueViolation {
			return err
		}
		switch pgErr.ConstraintName {
		case target.secondaryIndex:
			return domainerror.ErrDuplicateSecondaryID
		case target.emailIndex:
			return domainerror.ErrDuplicateEmail
		default:
			slog.Warn("Unrecognised unique constraint, reporting duplicate email",
				"table", target.table,
				"constraint", pgErr.ConstraintName,
			)
			return domainerror.ErrDuplicateEmail
		}
	}

	if msg := err.Error(); strings.Contains(msg, sqliteUniquePrefix) {
		column := msg[strings.Index(msg, sqliteUniquePrefix)+len(sqliteUniquePrefix):]
		if column == target.table+"."+target.secondaryColumn ||
			strings.HasPrefix(column, target.table+"."+target.secondaryColumn+" ") {
			return domainerror.ErrDuplicateSecondaryID
		}
		return domainerror.ErrDuplicateEmail
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerror.ErrDuplicateEmail
	}

	return err
}
