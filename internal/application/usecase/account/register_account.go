// Package account contains the registration, login and credential reset use cases.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/campus-coins/backend/internal/application/adapter"
	"github.com/campus-coins/backend/internal/domain/entity"
	domainerror "github.com/campus-coins/backend/internal/domain/error"
)

// RegisterStudentInput represents the input for student registration.
type RegisterStudentInput struct {
	Name       string
	Email      string
	NationalID string
	Course     string
	Password   string
}

// RegisterTeacherInput represents the input for teacher registration.
type RegisterTeacherInput struct {
	Name       string
	Email      string
	NationalID string
	Department string
	Password   string
}

// RegisterCompanyInput represents the input for partner company registration.
type RegisterCompanyInput struct {
	Name               string
	Email              string
	RegistrationNumber string
	Password           string
}

// RegisterAccountOutput is the projection of a newly created account.
// It carries everything the registration notification needs.
type RegisterAccountOutput struct {
	ID    uint
	Role  entity.Role
	Name  string
	Email string
}

// registrar holds the registration algorithm shared by every role.
type registrar[T entity.Holder] struct {
	repo            adapter.AccountRepository[T]
	passwordService adapter.PasswordService
	transactor      adapter.Transactor
}

// register checks email then secondary identifier, hashes the password and persists
// the account built by build. Write-time unique violations map to the same errors
// as the pre-checks.
func (r registrar[T]) register(ctx context.Context, email, secondaryID, password string, build func(hash string) T) (*RegisterAccountOutput, error) {
	var output *RegisterAccountOutput

	err := r.transactor.InTransaction(ctx, func(ctx context.Context) error {
		exists, err := r.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return domainerror.DuplicateError(domainerror.ErrDuplicateEmail)
		}

		exists, err = r.repo.ExistsBySecondaryID(ctx, secondaryID)
		if err != nil {
			return fmt.Errorf("failed to check identifier existence: %w", err)
		}
		if exists {
			return domainerror.DuplicateError(domainerror.ErrDuplicateSecondaryID)
		}

		passwordHash, err := r.passwordService.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		account := build(passwordHash)
		if err := r.repo.Create(ctx, account); err != nil {
			if errors.Is(err, domainerror.ErrDuplicateEmail) || errors.Is(err, domainerror.ErrDuplicateSecondaryID) {
				return domainerror.DuplicateError(err)
			}
			return fmt.Errorf("failed to create account: %w", err)
		}

		ref := account.AccountRef()
		output = &RegisterAccountOutput{
			ID:    ref.ID,
			Role:  account.Role(),
			Name:  ref.Name,
			Email: ref.Email,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// RegisterStudentUseCase handles student registration.
type RegisterStudentUseCase struct {
	registrar registrar[*entity.Student]
}

// NewRegisterStudentUseCase creates a new RegisterStudentUseCase instance.
func NewRegisterStudentUseCase(
	repo adapter.StudentRepository,
	passwordService adapter.PasswordService,
	transactor adapter.Transactor,
) *RegisterStudentUseCase {
	return &RegisterStudentUseCase{
		registrar: registrar[*entity.Student]{repo: repo, passwordService: passwordService, transactor: transactor},
	}
}

// Execute registers a student with an empty coin balance.
func (uc *RegisterStudentUseCase) Execute(ctx context.Context, input RegisterStudentInput) (*RegisterAccountOutput, error) {
	return uc.registrar.register(ctx, input.Email, input.NationalID, input.Password, func(hash string) *entity.Student {
		return entity.NewStudent(input.Name, input.Email, input.NationalID, input.Course, hash)
	})
}

// RegisterTeacherUseCase handles teacher registration.
type RegisterTeacherUseCase struct {
	registrar registrar[*entity.Teacher]
	allowance decimal.Decimal
}

// NewRegisterTeacherUseCase creates a new RegisterTeacherUseCase instance.
// New teachers start with allowance coins to distribute.
func NewRegisterTeacherUseCase(
	repo adapter.TeacherRepository,
	passwordService adapter.PasswordService,
	transactor adapter.Transactor,
	allowance decimal.Decimal,
) *RegisterTeacherUseCase {
	return &RegisterTeacherUseCase{
		registrar: registrar[*entity.Teacher]{repo: repo, passwordService: passwordService, transactor: transactor},
		allowance: allowance,
	}
}

// Execute registers a teacher.
func (uc *RegisterTeacherUseCase) Execute(ctx context.Context, input RegisterTeacherInput) (*RegisterAccountOutput, error) {
	return uc.registrar.register(ctx, input.Email, input.NationalID, input.Password, func(hash string) *entity.Teacher {
		return entity.NewTeacher(input.Name, input.Email, input.NationalID, input.Department, hash, uc.allowance)
	})
}

// RegisterCompanyUseCase handles partner company registration.
type RegisterCompanyUseCase struct {
	registrar registrar[*entity.Company]
}

// NewRegisterCompanyUseCase creates a new RegisterCompanyUseCase instance.
func NewRegisterCompanyUseCase(
	repo adapter.CompanyRepository,
	passwordService adapter.PasswordService,
	transactor adapter.Transactor,
) *RegisterCompanyUseCase {
	return &RegisterCompanyUseCase{
		registrar: registrar[*entity.Company]{repo: repo, passwordService: passwordService, transactor: transactor},
	}
}

// Execute registers a partner company.
func (uc *RegisterCompanyUseCase) Execute(ctx context.Context, input RegisterCompanyInput) (*RegisterAccountOutput, error) {
	return uc.registrar.register(ctx, input.Email, input.RegistrationNumber, input.Password, func(hash string) *entity.Company {
		return entity.NewCompany(input.Name, input.Email, input.RegistrationNumber, hash)
	})
}
