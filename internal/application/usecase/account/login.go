package account

import (
	"context"
	"fmt"

	"github.com/campus-coins/backend/internal/application/adapter"
	"github.com/campus-coins/backend/internal/domain/entity"
	domainerror "github.com/campus-coins/backend/internal/domain/error"
)

// LoginInput represents the input for login. Role is parsed case-insensitively.
type LoginInput struct {
	Role     string
	Email    string
	Password string
}

// LoginOutput identifies the authenticated account.
type LoginOutput struct {
	Role  entity.Role
	ID    uint
	Name  string
	Email string
}

// LoginUseCase checks credentials against the store of the requested role.
type LoginUseCase struct {
	students        adapter.StudentRepository
	teachers        adapter.TeacherRepository
	companies       adapter.CompanyRepository
	passwordService adapter.PasswordService
	transactor      adapter.Transactor
}

// NewLoginUseCase creates a new LoginUseCase instance.
func NewLoginUseCase(
	students adapter.StudentRepository,
	teachers adapter.TeacherRepository,
	companies adapter.CompanyRepository,
	passwordService adapter.PasswordService,
	transactor adapter.Transactor,
) *LoginUseCase {
	return &LoginUseCase{
		students:        students,
		teachers:        teachers,
		companies:       companies,
		passwordService: passwordService,
		transactor:      transactor,
	}
}

// Execute performs the login. An unknown email and a wrong password produce the same error.
func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	role, err := entity.ParseRole(input.Role)
	if err != nil {
		return nil, unknownRoleError(err)
	}

	var output *LoginOutput
	err = uc.transactor.InTransaction(ctx, func(ctx context.Context) error {
		var holder entity.Holder
		var err error

		switch role {
		case entity.RoleStudent:
			holder, err = authenticate(ctx, uc.students, uc.passwordService, input.Email, input.Password)
		case entity.RoleTeacher:
			holder, err = authenticate(ctx, uc.teachers, uc.passwordService, input.Email, input.Password)
		case entity.RoleCompany:
			holder, err = authenticate(ctx, uc.companies, uc.passwordService, input.Email, input.Password)
		}
		if err != nil {
			return err
		}

		ref := holder.AccountRef()
		output = &LoginOutput{
			Role:  holder.Role(),
			ID:    ref.ID,
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

func authenticate[T entity.Holder](
	ctx context.Context,
	repo adapter.AccountRepository[T],
	passwordService adapter.PasswordService,
	email, password string,
) (entity.Holder, error) {
	account, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if isAbsent(account) {
		return nil, invalidCredentialsError()
	}

	if err := passwordService.VerifyPassword(account.AccountRef().PasswordHash, password); err != nil {
		return nil, invalidCredentialsError()
	}

	return account, nil
}

func invalidCredentialsError() error {
	return domainerror.NewAuthError(
		domainerror.ErrCodeInvalidCredentials,
		"invalid credentials",
		domainerror.ErrInvalidCredentials,
	)
}

func unknownRoleError(err error) error {
	return domainerror.NewAuthError(domainerror.ErrCodeUnknownRole, "unknown role", err)
}

// isAbsent reports whether a FindByEmail result is the zero value.
func isAbsent[T entity.Holder](account T) bool {
	var zero T
	return any(account) == any(zero)
}
