// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/campus-coins/backend/internal/domain/entity"
)

// AccountRepository defines persistence operations for one role's accounts.
// Every operation is scoped to that role's namespace.
type AccountRepository[T entity.Holder] interface {
	// ExistsByEmail checks if an account with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsBySecondaryID checks if an account with the given role-specific identifier exists.
	ExistsBySecondaryID(ctx context.Context, secondaryID string) (bool, error)

	// FindByEmail retrieves an account by email. A missing account yields the zero value and a nil error.
	FindByEmail(ctx context.Context, email string) (T, error)

	// Create persists a new account and assigns its ID.
	// Unique violations are reported as ErrDuplicateEmail or ErrDuplicateSecondaryID.
	Create(ctx context.Context, account T) error

	// UpdateCredentialHash replaces the stored password hash of an account.
	UpdateCredentialHash(ctx context.Context, id uint, passwordHash string) error
}

// StudentRepository stores student accounts.
type StudentRepository = AccountRepository[*entity.Student]

// TeacherRepository stores teacher accounts.
type TeacherRepository = AccountRepository[*entity.Teacher]

// CompanyRepository stores partner company accounts.
type CompanyRepository = AccountRepository[*entity.Company]

// Transactor runs a function inside a single database transaction.
type Transactor interface {
	// InTransaction commits when fn returns nil and rolls back otherwise.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
