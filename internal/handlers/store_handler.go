package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/store"
)

// StoreHandler exposes the raw key/value store to administrators.
type StoreHandler struct {
	store *store.Store
}

func NewStoreHandler(st *store.Store) *StoreHandler {
	return &StoreHandler{store: st}
}

func (h *StoreHandler) Export(c *fiber.Ctx) error {
	snapshot, err := h.store.Export()
	if err != nil {
		return serverError(c, "failed to export data store", err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="app-data-store.json"`)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(snapshot)
}

// Import replaces the whole store with the request body.
func (h *StoreHandler) Import(c *fiber.Ctx) error {
	err := h.store.Import(c.Body())
	if errors.Is(err, store.ErrInvalidSnapshot) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return serverError(c, "failed to import data store", err)
	}
	return c.JSON(fiber.Map{"keys": h.store.Len()})
}

func (h *StoreHandler) Clear(c *fiber.Ctx) error {
	if err := h.store.Clear(); err != nil {
		return serverError(c, "failed to clear data store", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Keys lists the entries under ?prefix=, or every entry.
func (h *StoreHandler) Keys(c *fiber.Ctx) error {
	return c.JSON(h.store.GetByPrefix(c.Query("prefix")))
}

func (h *StoreHandler) GetMany(c *fiber.Ctx) error {
	var req dto.KeysRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return c.JSON(h.store.GetMany(req.Keys))
}

func (h *StoreHandler) DeleteMany(c *fiber.Ctx) error {
	var req dto.KeysRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.store.DeleteMany(req.Keys); err != nil {
		return serverError(c, "failed to delete keys", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
