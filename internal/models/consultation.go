package models

import "time"

// Consultation is a visit record. PatientID and MedecinID are weak
// references: they are never checked against the users collection.
type Consultation struct {
	ID           string `json:"id"`
	PatientID    string `json:"patient_id"`
	MedecinID    string `json:"medecin_id"`
	Date         string `json:"date"`
	Symptoms     string `json:"symptoms"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

func (c Consultation) Stamp(id string, now time.Time) Consultation {
	c.ID = id
	c.CreatedAt = Timestamp(now)
	return c
}
