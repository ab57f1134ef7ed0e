package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/campus-coins/backend/internal/application/adapter"
	"github.com/campus-coins/backend/internal/domain/entity"
	domainerror "github.com/campus-coins/backend/internal/domain/error"
)

// ResetCredentialInput represents the input for an administrative password reset.
type ResetCredentialInput struct {
	Email       string
	Role        string
	NewPassword string
}

// ResetCredentialOutput identifies the account whose password changed.
type ResetCredentialOutput struct {
	Role  entity.Role
	ID    uint
	Name  string
	Email string
}

// ResetCredentialUseCase replaces the password of an account identified by email and role.
// It does not verify who is asking; callers must restrict access to the operation.
type ResetCredentialUseCase struct {
	students        adapter.StudentRepository
	teachers        adapter.TeacherRepository
	companies       adapter.CompanyRepository
	passwordService adapter.PasswordService
	transactor      adapter.Transactor
}

// NewResetCredentialUseCase creates a new ResetCredentialUseCase instance.
func NewResetCredentialUseCase(
	students adapter.StudentRepository,
	teachers adapter.TeacherRepository,
	companies adapter.CompanyRepository,
	passwordService adapter.PasswordService,
	transactor adapter.Transactor,
) *ResetCredentialUseCase {
	return &ResetCredentialUseCase{
		students:        students,
		teachers:        teachers,
		companies:       companies,
		passwordService: passwordService,
		transactor:      transactor,
	}
}

// Execute performs the reset.
func (uc *ResetCredentialUseCase) Execute(ctx context.Context, input ResetCredentialInput) (*ResetCredentialOutput, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.NewPassword) == "" {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeMissingFields,
			"email and new password are required",
			domainerror.ErrMissingField,
		)
	}

	role, err := entity.ParseRole(input.Role)
	if err != nil {
		return nil, unknownRoleError(err)
	}

	var output *ResetCredentialOutput
	err = uc.transactor.InTransaction(ctx, func(ctx context.Context) error {
		var holder entity.Holder
		var err error

		switch role {
		case entity.RoleStudent:
			holder, err = resetCredential(ctx, role, uc.students, uc.passwordService, input.Email, input.NewPassword)
		case entity.RoleTeacher:
			holder, err = resetCredential(ctx, role, uc.teachers, uc.passwordService, input.Email, input.NewPassword)
		case entity.RoleCompany:
			holder, err = resetCredential(ctx, role, uc.companies, uc.passwordService, input.Email, input.NewPassword)
		}
		if err != nil {
			return err
		}

		ref := holder.AccountRef()
		output = &ResetCredentialOutput{
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

func resetCredential[T entity.Holder](
	ctx context.Context,
	role entity.Role,
	repo adapter.AccountRepository[T],
	passwordService adapter.PasswordService,
	email, newPassword string,
) (entity.Holder, error) {
	account, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if isAbsent(account) {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeAccountNotFound,
			role.Label()+" not found",
			domainerror.ErrAccountNotFound,
		)
	}

	passwordHash, err := passwordService.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ref := account.AccountRef()
	if err := repo.UpdateCredentialHash(ctx, ref.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	ref.PasswordHash = passwordHash

	return account, nil
}
