// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-coins/backend/internal/application/adapter"
	"github.com/campus-coins/backend/internal/application/usecase/account"
	domainerror "github.com/campus-coins/backend/internal/domain/error"
	"github.com/campus-coins/backend/internal/integration/entrypoint/dto"
)

// AuthController handles registration, login and credential reset endpoints.
type AuthController struct {
	registerStudentUseCase *account.RegisterStudentUseCase
	registerTeacherUseCase *account.RegisterTeacherUseCase
	registerCompanyUseCase *account.RegisterCompanyUseCase
	loginUseCase           *account.LoginUseCase
	resetCredentialUseCase *account.ResetCredentialUseCase
	notifier               adapter.NotificationGateway
}

// NewAuthController creates a new auth controller instance.
func NewAuthController(
	registerStudentUseCase *account.RegisterStudentUseCase,
	registerTeacherUseCase *account.RegisterTeacherUseCase,
	registerCompanyUseCase *account.RegisterCompanyUseCase,
	loginUseCase *account.LoginUseCase,
	resetCredentialUseCase *account.ResetCredentialUseCase,
	notifier adapter.NotificationGateway,
) *AuthController {
	return &AuthController{
		registerStudentUseCase: registerStudentUseCase,
		registerTeacherUseCase: registerTeacherUseCase,
		registerCompanyUseCase: registerCompanyUseCase,
		loginUseCase:           loginUseCase,
		resetCredentialUseCase: resetCredentialUseCase,
		notifier:               notifier,
	}
}

// RegisterStudent handles POST /auth/students/register requests.
func (c *AuthController) RegisterStudent(ctx *gin.Context) {
	var req dto.RegisterStudentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	output, err := c.registerStudentUseCase.Execute(ctx.Request.Context(), account.RegisterStudentInput{
		Name:       req.Name,
		Email:      req.Email,
		NationalID: req.NationalID,
		Course:     req.Course,
		Password:   req.Password,
	})
	c.respondRegistered(ctx, output, err)
}

// RegisterTeacher handles POST /auth/teachers/register requests.
func (c *AuthController) RegisterTeacher(ctx *gin.Context) {
	var req dto.RegisterTeacherRequest
	if !bindJSON(ctx, &req) {
		return
	}

	output, err := c.registerTeacherUseCase.Execute(ctx.Request.Context(), account.RegisterTeacherInput{
		Name:       req.Name,
		Email:      req.Email,
		NationalID: req.NationalID,
		Department: req.Department,
		Password:   req.Password,
	})
	c.respondRegistered(ctx, output, err)
}

// RegisterCompany handles POST /auth/companies/register requests.
func (c *AuthController) RegisterCompany(ctx *gin.Context) {
	var req dto.RegisterCompanyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	output, err := c.registerCompanyUseCase.Execute(ctx.Request.Context(), account.RegisterCompanyInput{
		Name:               req.Name,
		Email:              req.Email,
		RegistrationNumber: req.RegistrationNumber,
		Password:           req.Password,
	})
	c.respondRegistered(ctx, output, err)
}

func (c *AuthController) respondRegistered(ctx *gin.Context, output *account.RegisterAccountOutput, err error) {
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	c.notifier.NotifyRegistration(ctx.Request.Context(), output.Email, output.Name, output.Role)

	ctx.JSON(http.StatusCreated, dto.ToRegisterResponse(output))
}

// Login handles POST /auth/login requests.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	output, err := c.loginUseCase.Execute(ctx.Request.Context(), account.LoginInput{
		Role:     req.Role,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToLoginResponse(output))
}

// ResetPassword handles POST /auth/reset-password requests.
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}

	output, err := c.resetCredentialUseCase.Execute(ctx.Request.Context(), account.ResetCredentialInput{
		Email:       req.Email,
		Role:        req.Role,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	slog.Info("Password reset", "role", output.Role, "account_id", output.ID)
	c.notifier.NotifyCredentialReset(ctx.Request.Context(), output.Email, output.Role, req.NewPassword)

	ctx.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Password changed successfully",
	})
}

// bindJSON binds the request body and writes a 400 response on failure.
func bindJSON(ctx *gin.Context, req any) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return false
	}
	return true
}

// handleAuthError handles account errors and returns appropriate HTTP responses.
func (c *AuthController) handleAuthError(ctx *gin.Context, err error) {
	var authErr *domainerror.AuthError
	if errors.As(err, &authErr) {
		ctx.JSON(c.getStatusCodeForAuthError(authErr.Code), dto.ErrorResponse{
			Error: authErr.Message,
			Code:  string(authErr.Code),
		})
		return
	}

	slog.Error("Account request failed", "path", ctx.FullPath(), "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// getStatusCodeForAuthError maps auth error codes to HTTP status codes.
func (c *AuthController) getStatusCodeForAuthError(code domainerror.AuthErrorCode) int {
	switch code {
	case domainerror.ErrCodeEmailExists,
		domainerror.ErrCodeSecondaryIDExists:
		return http.StatusConflict
	case domainerror.ErrCodeMissingFields,
		domainerror.ErrCodeUnknownRole:
		return http.StatusBadRequest
	case domainerror.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case domainerror.ErrCodeAccountNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
