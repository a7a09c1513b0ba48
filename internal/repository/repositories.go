package repository

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/store"
)

// Collection names, also the key prefixes.
const (
	UsersCollection         = "users"
	ConsultationsCollection = "consultations"
	OrdonnancesCollection   = "ordonnances"
	CertificatsCollection   = "certificats"
)

// Repositories bundles the four accessors sharing one store.
type Repositories struct {
	Users         *Users
	Consultations *Consultations
	Ordonnances   *Ordonnances
	Certificats   *Certificats
}

// Option customises New.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for id generation and createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds the accessors on top of st.
func New(st *store.Store, ids IDGenerator, opts ...Option) *Repositories {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ids == nil {
		ids = TimestampIDs{}
	}

	return &Repositories{
		Users: &Users{
			Collection: newCollection[models.User](st, UsersCollection, "user", ids, o.now),
		},
		Consultations: &Consultations{
			Collection: newCollection[models.Consultation](st, ConsultationsCollection, "consultation", ids, o.now),
		},
		Ordonnances: &Ordonnances{
			Collection: newCollection[models.Ordonnance](st, OrdonnancesCollection, "ordonnance", ids, o.now),
		},
		Certificats: &Certificats{
			Collection: newCollection[models.Certificat](st, CertificatsCollection, "certificat", ids, o.now),
		},
	}
}

type Users struct {
	*Collection[models.User]
}

// GetByEmail returns the first user with exactly this email in iteration
// order. Duplicate emails are not prevented at write time.
func (u *Users) GetByEmail(email string) (*models.User, error) {
	matches, err := u.FilterBy(map[string]string{"email": email})
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return &matches[0], nil
}

// GetPatientsOf lists the patients whose attending physician is medecinID.
func (u *Users) GetPatientsOf(medecinID string) ([]models.User, error) {
	return u.FilterBy(map[string]string{"role": string(models.RolePatient), "medecin_id": medecinID})
}

type Consultations struct {
	*Collection[models.Consultation]
}

func (c *Consultations) GetByPatient(patientID string) ([]models.Consultation, error) {
	return c.FilterBy(map[string]string{"patient_id": patientID})
}

func (c *Consultations) GetByMedecin(medecinID string) ([]models.Consultation, error) {
	return c.FilterBy(map[string]string{"medecin_id": medecinID})
}

type Ordonnances struct {
	*Collection[models.Ordonnance]
}

func (o *Ordonnances) GetByConsultation(consultationID string) ([]models.Ordonnance, error) {
	return o.FilterBy(map[string]string{"consultation_id": consultationID})
}

type Certificats struct {
	*Collection[models.Certificat]
}

func (c *Certificats) GetByPatient(patientID string) ([]models.Certificat, error) {
	return c.FilterBy(map[string]string{"patient_id": patientID})
}
