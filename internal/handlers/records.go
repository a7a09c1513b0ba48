package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/repository"
)

// recordHandler serves get/create/update/delete for one collection.
type recordHandler[T repository.Record[T]] struct {
	coll  *repository.Collection[T]
	label string
}

func (h recordHandler[T]) Get(c *fiber.Ctx) error {
	rec, err := h.coll.Get(c.Params("id"))
	if err != nil {
		return serverError(c, "failed to read "+h.coll.Name(), err)
	}
	if rec == nil {
		return notFound(c, h.label)
	}
	return c.JSON(rec)
}

func (h recordHandler[T]) Create(c *fiber.Ctx) error {
	var rec T
	if err := json.Unmarshal(c.Body(), &rec); err != nil {
		return badRequest(c, "Invalid request body")
	}

	created, err := h.coll.Create(rec)
	if err != nil {
		return serverError(c, "failed to create "+h.coll.Name(), err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h recordHandler[T]) Update(c *fiber.Ctx) error {
	fields, err := parseFields(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}

	updated, err := h.coll.Update(c.Params("id"), fields)
	if errors.Is(err, repository.ErrInvalidUpdate) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return serverError(c, "failed to update "+h.coll.Name(), err)
	}
	if updated == nil {
		return notFound(c, h.label)
	}
	return c.JSON(updated)
}

// Delete is unconditional: an unknown id still answers 204.
func (h recordHandler[T]) Delete(c *fiber.Ctx) error {
	if err := h.coll.Delete(c.Params("id")); err != nil {
		return serverError(c, "failed to delete "+h.coll.Name(), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseFields reads a partial update. The id is part of the key and cannot
// be patched.
func parseFields(c *fiber.Ctx) (repository.Fields, error) {
	var fields repository.Fields
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("update body must be a JSON object")
	}
	delete(fields, "id")
	return fields, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func notFound(c *fiber.Ctx, label string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: label + " not found",
	})
}

func serverError(c *fiber.Ctx, msg string, err error) error {
	slog.Error(msg,
		"request_id", c.Locals("requestid"),
		"user_id", middleware.UserID(c),
		"action", c.Method()+" "+c.Route().Path,
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
