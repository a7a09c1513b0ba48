package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/store"
)

type HealthHandler struct {
	store   *store.Store
	backend string
	ping    func() error
}

// NewHealthHandler reports on st. ping is optional and checks the database
// behind the postgres backend.
func NewHealthHandler(st *store.Store, backend string, ping func() error) *HealthHandler {
	return &HealthHandler{store: st, backend: backend, ping: ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, code := "ok", fiber.StatusOK
	if h.ping != nil {
		if err := h.ping(); err != nil {
			status, code = "unhealthy: "+err.Error(), fiber.StatusServiceUnavailable
		}
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Backend:   h.backend,
		Keys:      h.store.Len(),
	})
}
