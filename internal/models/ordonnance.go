package models

import "time"

// Ordonnance is a prescription attached to a consultation.
type Ordonnance struct {
	ID             string   `json:"id"`
	ConsultationID string   `json:"consultation_id"`
	Medicines      []string `json:"medicines"`
	Instructions   string   `json:"instructions"`
	CreatedAt      string   `json:"createdAt"`
}

func (o Ordonnance) Stamp(id string, now time.Time) Ordonnance {
	o.ID = id
	o.CreatedAt = Timestamp(now)
	if o.Medicines == nil {
		o.Medicines = []string{}
	}
	return o
}
