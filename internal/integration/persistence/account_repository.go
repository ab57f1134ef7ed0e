package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/campus-coins/backend/internal/application/adapter"
	"github.com/campus-coins/backend/internal/domain/entity"
	domainerror "github.com/campus-coins/backend/internal/domain/error"
	"github.com/campus-coins/backend/internal/integration/persistence/model"
)

// accountRepository implements adapter.AccountRepository for a single role table.
type accountRepository[T entity.Holder, M any] struct {
	db       *gorm.DB
	target   uniqueTarget
	toModel  func(T) *M
	toEntity func(*M) T
	idOf     func(*M) uint
}

// NewStudentRepository creates the repository for the students table.
func NewStudentRepository(db *gorm.DB) adapter.StudentRepository {
	return &accountRepository[*entity.Student, model.StudentModel]{
		db: db,
		target: uniqueTarget{
			table:           model.StudentModel{}.TableName(),
			emailIndex:      model.StudentEmailIndex,
			secondaryColumn: "national_id",
			secondaryIndex:  model.StudentNationalIDIndex,
		},
		toModel:  model.StudentModelFromEntity,
		toEntity: (*model.StudentModel).ToEntity,
		idOf:     func(m *model.StudentModel) uint { return m.ID },
	}
}

// NewTeacherRepository creates the repository for the teachers table.
func NewTeacherRepository(db *gorm.DB) adapter.TeacherRepository {
	return &accountRepository[*entity.Teacher, model.TeacherModel]{
		db: db,
		target: uniqueTarget{
			table:           model.TeacherModel{}.TableName(),
			emailIndex:      model.TeacherEmailIndex,
			secondaryColumn: "national_id",
			secondaryIndex:  model.TeacherNationalIDIndex,
		},
		toModel:  model.TeacherModelFromEntity,
		toEntity: (*model.TeacherModel).ToEntity,
		idOf:     func(m *model.TeacherModel) uint { return m.ID },
	}
}

// NewCompanyRepository creates the repository for the companies table.
func NewCompanyRepository(db *gorm.DB) adapter.CompanyRepository {
	return &accountRepository[*entity.Company, model.CompanyModel]{
		db: db,
		target: uniqueTarget{
			table:           model.CompanyModel{}.TableName(),
			emailIndex:      model.CompanyEmailIndex,
			secondaryColumn: "registration_number",
			secondaryIndex:  model.CompanyRegNumberIndex,
		},
		toModel:  model.CompanyModelFromEntity,
		toEntity: (*model.CompanyModel).ToEntity,
		idOf:     func(m *model.CompanyModel) uint { return m.ID },
	}
}

// ExistsByEmail checks if an account with the given email exists.
func (r *accountRepository[T, M]) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

// ExistsBySecondaryID checks if an account with the given role-specific identifier exists.
func (r *accountRepository[T, M]) ExistsBySecondaryID(ctx context.Context, secondaryID string) (bool, error) {
	return r.exists(ctx, r.target.secondaryColumn, secondaryID)
}

func (r *accountRepository[T, M]) exists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	result := dbFromContext(ctx, r.db).Model(new(M)).Where(column+" = ?", value).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// FindByEmail retrieves an account by its email address.
func (r *accountRepository[T, M]) FindByEmail(ctx context.Context, email string) (T, error) {
	var zero T
	m := new(M)
	result := dbFromContext(ctx, r.db).Where("email = ?", email).First(m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return zero, nil
		}
		return zero, result.Error
	}
	return r.toEntity(m), nil
}

// Create inserts a new account and copies the generated ID back onto it.
func (r *accountRepository[T, M]) Create(ctx context.Context, account T) error {
	m := r.toModel(account)
	result := dbFromContext(ctx, r.db).Create(m)
	if result.Error != nil {
		return translateUniqueViolation(result.Error, r.target)
	}
	account.AccountRef().ID = r.idOf(m)
	return nil
}

// UpdateCredentialHash replaces the stored password hash of an account.
func (r *accountRepository[T, M]) UpdateCredentialHash(ctx context.Context, id uint, passwordHash string) error {
	result := dbFromContext(ctx, r.db).Model(new(M)).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrAccountNotFound
	}
	return nil
}
