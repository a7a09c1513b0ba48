package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/repository"
)

type ConsultationHandler struct {
	recordHandler[models.Consultation]
	consultations *repository.Consultations
}

func NewConsultationHandler(consultations *repository.Consultations) *ConsultationHandler {
	return &ConsultationHandler{
		recordHandler: recordHandler[models.Consultation]{coll: consultations.Collection, label: "Consultation"},
		consultations: consultations,
	}
}

// List filters by patient_id or medecin_id; without either it returns the
// whole collection.
func (h *ConsultationHandler) List(c *fiber.Ctx) error {
	var (
		out []models.Consultation
		err error
	)
	switch {
	case c.Query("patient_id") != "":
		out, err = h.consultations.GetByPatient(c.Query("patient_id"))
	case c.Query("medecin_id") != "":
		out, err = h.consultations.GetByMedecin(c.Query("medecin_id"))
	default:
		out, err = h.consultations.All()
	}
	if err != nil {
		return serverError(c, "failed to list consultations", err)
	}
	return c.JSON(out)
}
