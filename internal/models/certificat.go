package models

import "time"

// Certificat is a medical certificate covering StartDate to EndDate.
type Certificat struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`
	MedecinID string `json:"medecin_id"`
	Reason    string `json:"reason"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	CreatedAt string `json:"createdAt"`
}

func (c Certificat) Stamp(id string, now time.Time) Certificat {
	c.ID = id
	c.CreatedAt = Timestamp(now)
	return c
}
