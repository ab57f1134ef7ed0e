// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the fields every role shares.
type Account struct {
	ID           uint
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Holder is implemented by every role-specific account type.
type Holder interface {
	// AccountRef returns the shared account fields for in-place mutation.
	AccountRef() *Account

	// SecondaryID returns the role-specific unique business key.
	SecondaryID() string

	// Role returns the namespace the account belongs to.
	Role() Role
}

func newAccount(name, email, passwordHash string) Account {
	now := time.Now().UTC()
	return Account{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Student is an account that receives and spends coins.
type Student struct {
	Account
	NationalID  string
	Course      string
	CoinBalance decimal.Decimal
}

// NewStudent creates a new Student with an empty balance.
func NewStudent(name, email, nationalID, course, passwordHash string) *Student {
	return &Student{
		Account:     newAccount(name, email, passwordHash),
		NationalID:  nationalID,
		Course:      course,
		CoinBalance: decimal.Zero,
	}
}

func (s *Student) AccountRef() *Account { return &s.Account }
func (s *Student) SecondaryID() string  { return s.NationalID }
func (s *Student) Role() Role           { return RoleStudent }

// Teacher is an account that distributes coins to students.
type Teacher struct {
	Account
	NationalID  string
	Department  string
	CoinBalance decimal.Decimal
}

// NewTeacher creates a new Teacher holding the given starting allowance.
func NewTeacher(name, email, nationalID, department, passwordHash string, allowance decimal.Decimal) *Teacher {
	return &Teacher{
		Account:     newAccount(name, email, passwordHash),
		NationalID:  nationalID,
		Department:  department,
		CoinBalance: allowance,
	}
}

func (t *Teacher) AccountRef() *Account { return &t.Account }
func (t *Teacher) SecondaryID() string  { return t.NationalID }
func (t *Teacher) Role() Role           { return RoleTeacher }

// Company is a partner company account that offers rewards.
type Company struct {
	Account
	RegistrationNumber string
}

// NewCompany creates a new Company.
func NewCompany(name, email, registrationNumber, passwordHash string) *Company {
	return &Company{
		Account:            newAccount(name, email, passwordHash),
		RegistrationNumber: registrationNumber,
	}
}

func (c *Company) AccountRef() *Account { return &c.Account }
func (c *Company) SecondaryID() string  { return c.RegistrationNumber }
func (c *Company) Role() Role           { return RoleCompany }

var (
	_ Holder = (*Student)(nil)
	_ Holder = (*Teacher)(nil)
	_ Holder = (*Company)(nil)
)
