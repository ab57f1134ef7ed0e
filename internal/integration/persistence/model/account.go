// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/campus-coins/backend/internal/domain/entity"
)

// Unique index names, repeated in the gorm tags below. Postgres unique violations
// are mapped back to a column through them.
const (
	StudentEmailIndex      = "uq_students_email"
	StudentNationalIDIndex = "uq_students_national_id"
	TeacherEmailIndex      = "uq_teachers_email"
	TeacherNationalIDIndex = "uq_teachers_national_id"
	CompanyEmailIndex      = "uq_companies_email"
	CompanyRegNumberIndex  = "uq_companies_registration_number"
)

// StudentModel represents the students table in the database.
type StudentModel struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	Name         string          `gorm:"type:varchar(150);not null"`
	Email        string          `gorm:"type:varchar(255);uniqueIndex:uq_students_email;not null"`
	NationalID   string          `gorm:"type:varchar(20);uniqueIndex:uq_students_national_id;not null"`
	Course       string          `gorm:"type:varchar(150)"`
	CoinBalance  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PasswordHash string          `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the StudentModel.
func (StudentModel) TableName() string {
	return "students"
}

// ToEntity converts a StudentModel to a domain Student entity.
func (m *StudentModel) ToEntity() *entity.Student {
	return &entity.Student{
		Account:     accountEntity(m.ID, m.Name, m.Email, m.PasswordHash, m.CreatedAt, m.UpdatedAt),
		NationalID:  m.NationalID,
		Course:      m.Course,
		CoinBalance: m.CoinBalance,
	}
}

// StudentModelFromEntity creates a StudentModel from a domain Student entity.
func StudentModelFromEntity(s *entity.Student) *StudentModel {
	return &StudentModel{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		NationalID:   s.NationalID,
		Course:       s.Course,
		CoinBalance:  s.CoinBalance,
		PasswordHash: s.PasswordHash,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// TeacherModel represents the teachers table in the database.
type TeacherModel struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	Name         string          `gorm:"type:varchar(150);not null"`
	Email        string          `gorm:"type:varchar(255);uniqueIndex:uq_teachers_email;not null"`
	NationalID   string          `gorm:"type:varchar(20);uniqueIndex:uq_teachers_national_id;not null"`
	Department   string          `gorm:"type:varchar(150)"`
	CoinBalance  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PasswordHash string          `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the TeacherModel.
func (TeacherModel) TableName() string {
	return "teachers"
}

// ToEntity converts a TeacherModel to a domain Teacher entity.
func (m *TeacherModel) ToEntity() *entity.Teacher {
	return &entity.Teacher{
		Account:     accountEntity(m.ID, m.Name, m.Email, m.PasswordHash, m.CreatedAt, m.UpdatedAt),
		NationalID:  m.NationalID,
		Department:  m.Department,
		CoinBalance: m.CoinBalance,
	}
}

// TeacherModelFromEntity creates a TeacherModel from a domain Teacher entity.
func TeacherModelFromEntity(t *entity.Teacher) *TeacherModel {
	return &TeacherModel{
		ID:           t.ID,
		Name:         t.Name,
		Email:        t.Email,
		NationalID:   t.NationalID,
		Department:   t.Department,
		CoinBalance:  t.CoinBalance,
		PasswordHash: t.PasswordHash,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// CompanyModel represents the companies table in the database.
type CompanyModel struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement"`
	Name               string    `gorm:"type:varchar(150);not null"`
	Email              string    `gorm:"type:varchar(255);uniqueIndex:uq_companies_email;not null"`
	RegistrationNumber string    `gorm:"type:varchar(20);uniqueIndex:uq_companies_registration_number;not null"`
	PasswordHash       string    `gorm:"type:varchar(255);not null"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for the CompanyModel.
func (CompanyModel) TableName() string {
	return "companies"
}

// ToEntity converts a CompanyModel to a domain Company entity.
func (m *CompanyModel) ToEntity() *entity.Company {
	return &entity.Company{
		Account:            accountEntity(m.ID, m.Name, m.Email, m.PasswordHash, m.CreatedAt, m.UpdatedAt),
		RegistrationNumber: m.RegistrationNumber,
	}
}

// CompanyModelFromEntity creates a CompanyModel from a domain Company entity.
func CompanyModelFromEntity(c *entity.Company) *CompanyModel {
	return &CompanyModel{
		ID:                 c.ID,
		Name:               c.Name,
		Email:              c.Email,
		RegistrationNumber: c.RegistrationNumber,
		PasswordHash:       c.PasswordHash,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// AccountModels lists every account model for migrations.
func AccountModels() []any {
	return []any{&StudentModel{}, &TeacherModel{}, &CompanyModel{}}
}

func accountEntity(id uint, name, email, passwordHash string, createdAt, updatedAt time.Time) entity.Account {
	return entity.Account{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}
