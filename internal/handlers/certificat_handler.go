package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/repository"
)

type CertificatHandler struct {
	recordHandler[models.Certificat]
	certificats *repository.Certificats
}

func NewCertificatHandler(certificats *repository.Certificats) *CertificatHandler {
	return &CertificatHandler{
		recordHandler: recordHandler[models.Certificat]{coll: certificats.Collection, label: "Certificat"},
		certificats:   certificats,
	}
}

func (h *CertificatHandler) List(c *fiber.Ctx) error {
	var (
		out []models.Certificat
		err error
	)
	if id := c.Query("patient_id"); id != "" {
		out, err = h.certificats.GetByPatient(id)
	} else {
		out, err = h.certificats.All()
	}
	if err != nil {
		return serverError(c, "failed to list certificats", err)
	}
	return c.JSON(out)
}
