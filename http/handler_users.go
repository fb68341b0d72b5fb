package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"rentals/auth"
	"rentals/entity"
)

type postRegisterRequest struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Role     entity.Role `json:"role" validate:"required,oneof=CUSTOMER EMPLOYEE"`
}

type postRegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type postLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type postLoginResponse struct {
	Message string      `json:"message"`
	UserID  string      `json:"user_id"`
	Role    entity.Role `json:"role"`
	Token   string      `json:"token"`
}

func (s *Server) PostRegister(c echo.Context) error {
	var request postRegisterRequest
	if err := bindAndValidate(c, &request); err != nil {
		return err
	}

	ctx := c.Request().Context()

	_, err := s.usersRepo.GetByEmail(ctx, request.Email)
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("could not get user: %w", err)
	}

	passwordHash, err := auth.HashPassword(request.Password)
	if err != nil {
		return err
	}

	user := entity.User{
		UserID:       uuid.NewString(),
		Name:         request.Name,
		Email:        request.Email,
		PasswordHash: passwordHash,
		Role:         request.Role,
	}

	err = s.usersRepo.Store(ctx, user)
	if errors.Is(err, entity.ErrConflict) {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}
	if err != nil {
		return fmt.Errorf("could not store user: %w", err)
	}

	s.events.Emit(ctx, entity.AuditUserRegistered, map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})

	return c.JSON(http.StatusOK, postRegisterResponse{
		Message: "User registered successfully",
		UserID:  user.UserID,
	})
}

func (s *Server) PostLogin(c echo.Context) error {
	var request postLoginRequest
	if err := bindAndValidate(c, &request); err != nil {
		return err
	}

	user, err := s.usersRepo.GetByEmail(c.Request().Context(), request.Email)
	if errors.Is(err, entity.ErrNotFound) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}
	if err != nil {
		return fmt.Errorf("could not get user: %w", err)
	}

	err = auth.VerifyPassword(user.PasswordHash, request.Password)
	if errors.Is(err, entity.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}
	if err != nil {
		return fmt.Errorf("could not verify password: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, postLoginResponse{
		Message: "Login successful",
		UserID:  user.UserID,
		Role:    user.Role,
		Token:   token,
	})
}
