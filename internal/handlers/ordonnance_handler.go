package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/repository"
)

type OrdonnanceHandler struct {
	recordHandler[models.Ordonnance]
	ordonnances *repository.Ordonnances
}

func NewOrdonnanceHandler(ordonnances *repository.Ordonnances) *OrdonnanceHandler {
	return &OrdonnanceHandler{
		recordHandler: recordHandler[models.Ordonnance]{coll: ordonnances.Collection, label: "Ordonnance"},
		ordonnances:   ordonnances,
	}
}

func (h *OrdonnanceHandler) List(c *fiber.Ctx) error {
	var (
		out []models.Ordonnance
		err error
	)
	if id := c.Query("consultation_id"); id != "" {
		out, err = h.ordonnances.GetByConsultation(id)
	} else {
		out, err = h.ordonnances.All()
	}
	if err != nil {
		return serverError(c, "failed to list ordonnances", err)
	}
	return c.JSON(out)
}
