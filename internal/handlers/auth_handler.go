package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	res, err := h.authService.Signup(req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		return authFailure(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(authSuccess(res))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	res, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return authFailure(c, err)
	}
	return c.JSON(authSuccess(res))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.authService.Logout()
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sess := h.authService.GetSession()
	return c.JSON(dto.SessionResponse{
		User:  dto.NewUserResponse(sess.User),
		Token: sess.Token,
	})
}

func authSuccess(res *dto.AuthResult) dto.AuthResponse {
	token := res.Token
	return dto.AuthResponse{User: dto.NewUserResponse(res.User), Token: &token}
}

// authFailure renders every signup/login failure as {user: null, error}.
// Unexpected failures keep their message as well.
func authFailure(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUserExists):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrInvalidPassword):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrInvalidCharacter):
		status = fiber.StatusBadRequest
	}

	msg := err.Error()
	return c.Status(status).JSON(dto.AuthResponse{Error: &msg})
}
