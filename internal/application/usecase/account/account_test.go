package account

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/campus-coins/backend/internal/domain/entity"
	domainerror "github.com/campus-coins/backend/internal/domain/error"
)

type fixture struct {
	students  *memoryRepository[*entity.Student]
	teachers  *memoryRepository[*entity.Teacher]
	companies *memoryRepository[*entity.Company]
	tx        *countingTransactor

	registerStudent *RegisterStudentUseCase
	registerTeacher *RegisterTeacherUseCase
	registerCompany *RegisterCompanyUseCase
	login           *LoginUseCase
	reset           *ResetCredentialUseCase
}

func newFixture() *fixture {
	f := &fixture{
		students:  newMemoryRepository[*entity.Student](),
		teachers:  newMemoryRepository[*entity.Teacher](),
		companies: newMemoryRepository[*entity.Company](),
		tx:        &countingTransactor{},
	}
	passwords := &fakePasswordService{}

	f.registerStudent = NewRegisterStudentUseCase(f.students, passwords, f.tx)
	f.registerTeacher = NewRegisterTeacherUseCase(f.teachers, passwords, f.tx, decimal.NewFromInt(1000))
	f.registerCompany = NewRegisterCompanyUseCase(f.companies, passwords, f.tx)
	f.login = NewLoginUseCase(f.students, f.teachers, f.companies, passwords, f.tx)
	f.reset = NewResetCredentialUseCase(f.students, f.teachers, f.companies, passwords, f.tx)
	return f
}

// register creates an account of the given role and returns its handle.
func (f *fixture) register(t *testing.T, role entity.Role, email, secondaryID, password string) (uint, error) {
	t.Helper()
	ctx := context.Background()

	var out *RegisterAccountOutput
	var err error
	switch role {
	case entity.RoleStudent:
		out, err = f.registerStudent.Execute(ctx, RegisterStudentInput{Name: "Ana", Email: email, NationalID: secondaryID, Course: "Eng", Password: password})
	case entity.RoleTeacher:
		out, err = f.registerTeacher.Execute(ctx, RegisterTeacherInput{Name: "Ana", Email: email, NationalID: secondaryID, Department: "Math", Password: password})
	case entity.RoleCompany:
		out, err = f.registerCompany.Execute(ctx, RegisterCompanyInput{Name: "Ana", Email: email, RegistrationNumber: secondaryID, Password: password})
	}
	if err != nil {
		return 0, err
	}
	if out.Role != role {
		t.Errorf("expected role %s, got %s", role, out.Role)
	}
	return out.ID, nil
}

func assertAuthError(t *testing.T, err error, sentinel error, code domainerror.AuthErrorCode) {
	t.Helper()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected %v, got %v", sentinel, err)
	}
	var authErr *domainerror.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if authErr.Code != code {
		t.Errorf("expected code %s, got %s", code, authErr.Code)
	}
}

func TestExample_StudentAna(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	out, err := f.registerStudent.Execute(ctx, RegisterStudentInput{
		Name:       "Ana",
		Email:      "ana@x.edu",
		NationalID: "111",
		Password:   "s3cret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.ID != 1 {
		t.Errorf("expected handle 1, got %d", out.ID)
	}

	login, err := f.login.Execute(ctx, LoginInput{Role: "STUDENT", Email: "ana@x.edu", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	expected := LoginOutput{Role: entity.RoleStudent, ID: 1, Name: "Ana", Email: "ana@x.edu"}
	if *login != expected {
		t.Errorf("expected %+v, got %+v", expected, *login)
	}

	_, err = f.login.Execute(ctx, LoginInput{Role: "STUDENT", Email: "ana@x.edu", Password: "wrong"})
	assertAuthError(t, err, domainerror.ErrInvalidCredentials, domainerror.ErrCodeInvalidCredentials)
}

func TestRegister_DuplicateEmailForEveryRole(t *testing.T) {
	for _, role := range entity.Roles {
		t.Run(string(role), func(t *testing.T) {
			f := newFixture()
			if _, err := f.register(t, role, "a@x.edu", "111", "pw"); err != nil {
				t.Fatalf("first register: %v", err)
			}

			_, err := f.register(t, role, "a@x.edu", "222", "pw")
			assertAuthError(t, err, domainerror.ErrDuplicateEmail, domainerror.ErrCodeEmailExists)
		})
	}
}

func TestRegister_IdenticalPayloadIsNotIdempotent(t *testing.T) {
	f := newFixture()
	if _, err := f.register(t, entity.RoleCompany, "acme@x.com", "123", "pw"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := f.register(t, entity.RoleCompany, "acme@x.com", "123", "pw")
	assertAuthError(t, err, domainerror.ErrDuplicateEmail, domainerror.ErrCodeEmailExists)

	if len(f.companies.accounts) != 1 {
		t.Errorf("expected one stored company, got %d", len(f.companies.accounts))
	}
}

func TestRegister_DuplicateSecondaryID(t *testing.T) {
	f := newFixture()
	if _, err := f.register(t, entity.RoleStudent, "a@x.edu", "111", "pw"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := f.register(t, entity.RoleStudent, "b@x.edu", "111", "pw")
	assertAuthError(t, err, domainerror.ErrDuplicateSecondaryID, domainerror.ErrCodeSecondaryIDExists)
}

func TestRegister_WriteTimeViolationIsTranslated(t *testing.T) {
	f := newFixture()
	if _, err := f.register(t, entity.RoleTeacher, "a@x.edu", "111", "pw"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	f.teachers.skipPrecheck = true

	_, err := f.register(t, entity.RoleTeacher, "a@x.edu", "222", "pw")
	assertAuthError(t, err, domainerror.ErrDuplicateEmail, domainerror.ErrCodeEmailExists)

	_, err = f.register(t, entity.RoleTeacher, "b@x.edu", "111", "pw")
	assertAuthError(t, err, domainerror.ErrDuplicateSecondaryID, domainerror.ErrCodeSecondaryIDExists)
}

func TestRegister_TeacherStartsWithAllowance(t *testing.T) {
	f := newFixture()
	if _, err := f.register(t, entity.RoleTeacher, "t@x.edu", "111", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := f.teachers.accounts[0].CoinBalance; !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected 1000 coins, got %s", got)
	}
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	f := newFixture()
	if _, err := f.register(t, entity.RoleStudent, "a@x.edu", "111", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if hash := f.students.accounts[0].PasswordHash; hash == "s3cret" {
		t.Error("expected password to be hashed")
	}
}

func TestRegisterThenLogin_EveryRole(t *testing.T) {
	for _, role := range entity.Roles {
		t.Run(string(role), func(t *testing.T) {
			f := newFixture()
			id, err := f.register(t, role, "a@x.edu", "111", "pw")
			if err != nil {
				t.Fatalf("register: %v", err)
			}

			out, err := f.login.Execute(context.Background(), LoginInput{Role: string(role), Email: "a@x.edu", Password: "pw"})
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if out.ID != id || out.Role != role {
				t.Errorf("expected %s/%d, got %s/%d", role, id, out.Role, out.ID)
			}
		})
	}
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.register(t, entity.RoleStudent, "a@x.edu", "111", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPassword := f.login.Execute(ctx, LoginInput{Role: "STUDENT", Email: "a@x.edu", Password: "nope"})
	_, unknownEmail := f.login.Execute(ctx, LoginInput{Role: "STUDENT", Email: "ghost@x.edu", Password: "pw"})

	assertAuthError(t, wrongPassword, domainerror.ErrInvalidCredentials, domainerror.ErrCodeInvalidCredentials)
	assertAuthError(t, unknownEmail, domainerror.ErrInvalidCredentials, domainerror.ErrCodeInvalidCredentials)
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("expected identical messages, got %q and %q", wrongPassword, unknownEmail)
	}
}

func TestLogin_RoleIsCaseInsensitive(t *testing.T) {
	f := newFixture()
	if _, err := f.register(t, entity.RoleCompany, "acme@x.com", "123", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	out, err := f.login.Execute(context.Background(), LoginInput{Role: " company ", Email: "acme@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if out.Role != entity.RoleCompany {
		t.Errorf("expected COMPANY, got %s", out.Role)
	}
}

func TestLogin_UnknownRoleNeverTouchesStore(t *testing.T) {
	tx := &countingTransactor{}
	passwords := &fakePasswordService{}
	login := NewLoginUseCase(
		panickingRepository[*entity.Student]{},
		panickingRepository[*entity.Teacher]{},
		panickingRepository[*entity.Company]{},
		passwords,
		tx,
	)

	_, err := login.Execute(context.Background(), LoginInput{Role: "banana", Email: "a@x.edu", Password: "pw"})
	assertAuthError(t, err, domainerror.ErrUnknownRole, domainerror.ErrCodeUnknownRole)
	if tx.calls != 0 {
		t.Errorf("expected no transaction, got %d", tx.calls)
	}
}

func TestLogin_RolesAreIsolated(t *testing.T) {
	f := newFixture()
	if _, err := f.register(t, entity.RoleStudent, "a@x.edu", "111", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := f.login.Execute(context.Background(), LoginInput{Role: "TEACHER", Email: "a@x.edu", Password: "pw"})
	assertAuthError(t, err, domainerror.ErrInvalidCredentials, domainerror.ErrCodeInvalidCredentials)
}

func TestResetCredential_ReplacesPassword(t *testing.T) {
	for _, role := range entity.Roles {
		t.Run(string(role), func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			id, err := f.register(t, role, "a@x.edu", "111", "old")
			if err != nil {
				t.Fatalf("register: %v", err)
			}

			out, err := f.reset.Execute(ctx, ResetCredentialInput{Email: "a@x.edu", Role: string(role), NewPassword: "new"})
			if err != nil {
				t.Fatalf("reset: %v", err)
			}
			if out.ID != id || out.Role != role || out.Email != "a@x.edu" {
				t.Errorf("unexpected output %+v", out)
			}

			if _, err := f.login.Execute(ctx, LoginInput{Role: string(role), Email: "a@x.edu", Password: "new"}); err != nil {
				t.Errorf("login with new password: %v", err)
			}
			_, err = f.login.Execute(ctx, LoginInput{Role: string(role), Email: "a@x.edu", Password: "old"})
			assertAuthError(t, err, domainerror.ErrInvalidCredentials, domainerror.ErrCodeInvalidCredentials)
		})
	}
}

func TestResetCredential_Failures(t *testing.T) {
	f := newFixture()
	if _, err := f.register(t, entity.RoleTeacher, "t@x.edu", "111", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		input    ResetCredentialInput
		sentinel error
		code     domainerror.AuthErrorCode
	}{
		{
			name:     "blank email",
			input:    ResetCredentialInput{Email: "  ", Role: "TEACHER", NewPassword: "x"},
			sentinel: domainerror.ErrMissingField,
			code:     domainerror.ErrCodeMissingFields,
		},
		{
			name:     "blank password",
			input:    ResetCredentialInput{Email: "t@x.edu", Role: "TEACHER", NewPassword: ""},
			sentinel: domainerror.ErrMissingField,
			code:     domainerror.ErrCodeMissingFields,
		},
		{
			name:     "unknown role",
			input:    ResetCredentialInput{Email: "t@x.edu", Role: "PROFESSOR", NewPassword: "x"},
			sentinel: domainerror.ErrUnknownRole,
			code:     domainerror.ErrCodeUnknownRole,
		},
		{
			name:     "email registered under another role",
			input:    ResetCredentialInput{Email: "t@x.edu", Role: "STUDENT", NewPassword: "x"},
			sentinel: domainerror.ErrAccountNotFound,
			code:     domainerror.ErrCodeAccountNotFound,
		},
		{
			name:     "unknown email",
			input:    ResetCredentialInput{Email: "ghost@x.edu", Role: "TEACHER", NewPassword: "x"},
			sentinel: domainerror.ErrAccountNotFound,
			code:     domainerror.ErrCodeAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reset.Execute(context.Background(), tt.input)
			assertAuthError(t, err, tt.sentinel, tt.code)
		})
	}
}

func TestOperationsRunInOneTransaction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.register(t, entity.RoleStudent, "a@x.edu", "111", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.login.Execute(ctx, LoginInput{Role: "STUDENT", Email: "a@x.edu", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.reset.Execute(ctx, ResetCredentialInput{Email: "a@x.edu", Role: "STUDENT", NewPassword: "x"}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if f.tx.calls != 3 {
		t.Errorf("expected 3 transactions, got %d", f.tx.calls)
	}
}
