package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/services"
)

// UserHandler manages user records directly. Responses never include the
// encoded password.
type UserHandler struct {
	users       *repository.Users
	authService *services.AuthService
}

func NewUserHandler(users *repository.Users, authService *services.AuthService) *UserHandler {
	return &UserHandler{users: users, authService: authService}
}

// List returns every user, the first user with ?email=, or the patients of
// ?medecin_id=.
func (h *UserHandler) List(c *fiber.Ctx) error {
	if email := c.Query("email"); email != "" {
		user, err := h.users.GetByEmail(email)
		if err != nil {
			return serverError(c, "failed to look up user", err)
		}
		if user == nil {
			return c.JSON([]dto.UserResponse{})
		}
		return c.JSON([]dto.UserResponse{*dto.NewUserResponse(user)})
	}

	var (
		users []models.User
		err   error
	)
	if medecinID := c.Query("medecin_id"); medecinID != "" {
		users, err = h.users.GetPatientsOf(medecinID)
	} else {
		users, err = h.users.All()
	}
	if err != nil {
		return serverError(c, "failed to list users", err)
	}
	return c.JSON(dto.NewUserResponses(users))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Params("id"))
	if err != nil {
		return serverError(c, "failed to read user", err)
	}
	if user == nil {
		return notFound(c, "User")
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Create registers an account without opening a session, the way a
// receptionist adds a patient.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Role == "" {
		req.Role = models.RolePatient
	}
	if !req.Role.Valid() || req.Role == models.RoleAdmin {
		return badRequest(c, services.ErrInvalidRole.Error())
	}

	encoded, err := h.authService.HashPassword(req.Password)
	if errors.Is(err, services.ErrInvalidCharacter) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return serverError(c, "failed to encode password", err)
	}

	user, err := h.users.Create(models.User{
		Email:     req.Email,
		Password:  encoded,
		Name:      req.Name,
		Role:      req.Role,
		MedecinID: req.MedecinID,
		Phone:     req.Phone,
		Address:   req.Address,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		return serverError(c, "failed to create user", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Update merges the body over the stored user. A clear-text password is
// encoded before it is written.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	fields, err := parseFields(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}

	if raw, ok := fields["password"]; ok {
		password, isString := raw.(string)
		if !isString {
			return badRequest(c, "password must be a string")
		}
		encoded, err := h.authService.HashPassword(password)
		if errors.Is(err, services.ErrInvalidCharacter) {
			return badRequest(c, err.Error())
		}
		if err != nil {
			return serverError(c, "failed to encode password", err)
		}
		fields["password"] = encoded
	}
	if raw, ok := fields["role"]; ok {
		role, _ := raw.(string)
		if r := models.Role(role); !r.Valid() || r == models.RoleAdmin {
			return badRequest(c, services.ErrInvalidRole.Error())
		}
	}

	user, err := h.users.Update(c.Params("id"), fields)
	if errors.Is(err, repository.ErrInvalidUpdate) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return serverError(c, "failed to update user", err)
	}
	if user == nil {
		return notFound(c, "User")
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.Params("id")); err != nil {
		return serverError(c, "failed to delete user", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
