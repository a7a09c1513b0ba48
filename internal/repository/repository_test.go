package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/store"
)

var epoch = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// tickingClock advances one millisecond per call.
func tickingClock() func() time.Time {
	t := epoch
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func frozenClock() func() time.Time {
	return func() time.Time { return epoch }
}

func newRepos(t *testing.T, now func() time.Time) (*Repositories, *store.Store) {
	t.Helper()
	st, err := store.New(store.NewMemoryPersister())
	require.NoError(t, err)
	return New(st, TimestampIDs{}, WithClock(now)), st
}

func TestCreateAssignsTimestampIDAndKey(t *testing.T) {
	repos, st := newRepos(t, tickingClock())

	c, err := repos.Consultations.Create(models.Consultation{PatientID: "p1", MedecinID: "m1", Symptoms: "toux"})
	require.NoError(t, err)

	wantID := "consultation_" + "1741944600001"
	assert.Equal(t, wantID, c.ID)
	assert.Equal(t, "2025-03-14T09:30:00.001Z", c.CreatedAt)

	_, ok := st.Get("consultations:" + wantID)
	assert.True(t, ok)
}

func TestCreateUniqueWhenSpacedByAMillisecond(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		c, err := repos.Certificats.Create(models.Certificat{PatientID: "p1"})
		require.NoError(t, err)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}

	all, err := repos.Certificats.All()
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

// Two creations in the same millisecond share an id; the second record
// replaces the first. This is the documented weakness of timestamp ids.
func TestCreateCollidesWithinSameMillisecond(t *testing.T) {
	repos, _ := newRepos(t, frozenClock())

	first, err := repos.Consultations.Create(models.Consultation{PatientID: "p1"})
	require.NoError(t, err)
	second, err := repos.Consultations.Create(models.Consultation{PatientID: "p2"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	all, err := repos.Consultations.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "p2", all[0].PatientID)
}

func TestUUIDIDsDoNotCollide(t *testing.T) {
	st, err := store.New(store.NewMemoryPersister())
	require.NoError(t, err)
	repos := New(st, UUIDIDs{}, WithClock(frozenClock()))

	a, err := repos.Ordonnances.Create(models.Ordonnance{ConsultationID: "c1"})
	require.NoError(t, err)
	b, err := repos.Ordonnances.Create(models.Ordonnance{ConsultationID: "c1"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, strings.HasPrefix(a.ID, "ordonnance_"))
}

func TestUserCreateKeepsCallerCreatedAt(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	u, err := repos.Users.Create(models.User{Email: "a@x.com", CreatedAt: "2020-01-01T00:00:00.000Z"})
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01T00:00:00.000Z", u.CreatedAt)
	assert.Equal(t, "user_1741944600001", u.ID)

	v, err := repos.Users.Create(models.User{Email: "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14T09:30:00.002Z", v.CreatedAt)
}

func TestGetAbsentReturnsNil(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	u, err := repos.Users.Get("user_404")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestGetByPatient(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	c, err := repos.Consultations.Create(models.Consultation{PatientID: "p1", MedecinID: "m1"})
	require.NoError(t, err)

	got, err := repos.Consultations.GetByPatient("p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *c, got[0])

	none, err := repos.Consultations.GetByPatient("p2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFiltersKeepIterationOrder(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	for _, p := range []string{"p1", "p2", "p1", "p1"} {
		_, err := repos.Consultations.Create(models.Consultation{PatientID: p, MedecinID: "m1"})
		require.NoError(t, err)
	}

	got, err := repos.Consultations.GetByPatient("p1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].ID < got[1].ID && got[1].ID < got[2].ID)

	byMedecin, err := repos.Consultations.GetByMedecin("m1")
	require.NoError(t, err)
	assert.Len(t, byMedecin, 4)
}

func TestOrdonnancesByConsultation(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	o, err := repos.Ordonnances.Create(models.Ordonnance{
		ConsultationID: "consultation_1",
		Medicines:      []string{"Doliprane 1000mg", "Ibuprofène 400mg"},
		Instructions:   "3 fois par jour",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Doliprane 1000mg", "Ibuprofène 400mg"}, o.Medicines)

	got, err := repos.Ordonnances.GetByConsultation("consultation_1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, o.ID, got[0].ID)
}

func TestCertificatsByPatient(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	_, err := repos.Certificats.Create(models.Certificat{PatientID: "p1", Reason: "grippe", StartDate: "2025-03-14", EndDate: "2025-03-17"})
	require.NoError(t, err)
	_, err = repos.Certificats.Create(models.Certificat{PatientID: "p2"})
	require.NoError(t, err)

	got, err := repos.Certificats.GetByPatient("p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "grippe", got[0].Reason)
}

func TestGetByEmailReturnsFirstMatch(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	first, err := repos.Users.Create(models.User{Email: "dup@x.com", Name: "first"})
	require.NoError(t, err)
	_, err = repos.Users.Create(models.User{Email: "dup@x.com", Name: "second"})
	require.NoError(t, err)

	got, err := repos.Users.GetByEmail("dup@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	missing, err := repos.Users.GetByEmail("DUP@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetPatientsOf(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	_, err := repos.Users.Create(models.User{Email: "p@x.com", Role: models.RolePatient, MedecinID: "user_doc"})
	require.NoError(t, err)
	_, err = repos.Users.Create(models.User{Email: "s@x.com", Role: models.RoleReceptionist, MedecinID: "user_doc"})
	require.NoError(t, err)

	got, err := repos.Users.GetPatientsOf("user_doc")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p@x.com", got[0].Email)
}

func TestUpdateShallowMerge(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	o, err := repos.Ordonnances.Create(models.Ordonnance{
		ConsultationID: "c1",
		Medicines:      []string{"A", "B"},
		Instructions:   "matin",
	})
	require.NoError(t, err)

	updated, err := repos.Ordonnances.Update(o.ID, Fields{"medicines": []string{"C"}})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, []string{"C"}, updated.Medicines)
	assert.Equal(t, "matin", updated.Instructions)
	assert.Equal(t, "c1", updated.ConsultationID)
	assert.Equal(t, o.CreatedAt, updated.CreatedAt)

	reread, err := repos.Ordonnances.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *reread)
}

func TestUpdatePreservesUnknownStoredFields(t *testing.T) {
	repos, st := newRepos(t, tickingClock())

	_, err := st.Set("users:user_1", map[string]any{"id": "user_1", "email": "a@x.com", "theme": "dark"})
	require.NoError(t, err)

	_, err = repos.Users.Update("user_1", Fields{"name": "Alice"})
	require.NoError(t, err)

	raw, ok := st.Get("users:user_1")
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"user_1","email":"a@x.com","theme":"dark","name":"Alice"}`, string(raw))
}

func TestUpdateMissingIsNoop(t *testing.T) {
	repos, st := newRepos(t, tickingClock())

	got, err := repos.Consultations.Update("consultation_404", Fields{"diagnosis": "x"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, st.Len())
}

func TestUpdateRejectsMistypedField(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	o, err := repos.Ordonnances.Create(models.Ordonnance{ConsultationID: "c1", Medicines: []string{"A"}})
	require.NoError(t, err)

	_, err = repos.Ordonnances.Update(o.ID, Fields{"medicines": "not a list"})
	require.ErrorIs(t, err, ErrInvalidUpdate)

	reread, err := repos.Ordonnances.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, reread.Medicines)
}

func TestDeleteDoesNotCascade(t *testing.T) {
	repos, _ := newRepos(t, tickingClock())

	patient, err := repos.Users.Create(models.User{Email: "p@x.com", Role: models.RolePatient})
	require.NoError(t, err)
	_, err = repos.Consultations.Create(models.Consultation{PatientID: patient.ID})
	require.NoError(t, err)

	require.NoError(t, repos.Users.Delete(patient.ID))
	require.NoError(t, repos.Users.Delete(patient.ID))

	gone, err := repos.Users.Get(patient.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	dangling, err := repos.Consultations.GetByPatient(patient.ID)
	require.NoError(t, err)
	assert.Len(t, dangling, 1)
}

func TestScansSkipUndecodableEntries(t *testing.T) {
	repos, st := newRepos(t, tickingClock())

	_, err := st.Set("consultations:broken", "just a string")
	require.NoError(t, err)
	_, err = repos.Consultations.Create(models.Consultation{PatientID: "p1"})
	require.NoError(t, err)

	all, err := repos.Consultations.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repos.Consultations.Get("broken")
	assert.Error(t, err)
}

func TestMistypedUnrelatedFieldDoesNotHideRecord(t *testing.T) {
	repos, st := newRepos(t, tickingClock())

	require.NoError(t, st.Import([]byte(`{
		"users:user_1": {"id":"user_1","email":"a@x.com","password":"cHcxMjM0NTY=","name":"A","role":"patient","medecin_id":"user_doc","createdAt":"2025-01-01T00:00:00.000Z","phone":612345678},
		"consultations:consultation_1": {"id":"consultation_1","patient_id":"user_1","medecin_id":"user_doc","symptoms":["toux"]}
	}`)))

	u, err := repos.Users.GetByEmail("a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "user_1", u.ID)
	assert.Equal(t, "A", u.Name)
	assert.Empty(t, u.Phone)

	patients, err := repos.Users.GetPatientsOf("user_doc")
	require.NoError(t, err)
	assert.Len(t, patients, 1)

	byPatient, err := repos.Consultations.GetByPatient("user_1")
	require.NoError(t, err)
	require.Len(t, byPatient, 1)
	assert.Equal(t, "consultation_1", byPatient[0].ID)

	got, err := repos.Users.Get("user_1")
	require.NoError(t, err)
	require.NotNil(t, got)

	all, err := repos.Users.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFilterMatchesOnlyStringFields(t *testing.T) {
	repos, st := newRepos(t, tickingClock())

	_, err := st.Set("consultations:c1", map[string]any{"id": "c1", "patient_id": 42})
	require.NoError(t, err)
	_, err = st.Set("consultations:c2", map[string]any{"id": "c2"})
	require.NoError(t, err)

	got, err := repos.Consultations.GetByPatient("42")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repos.Consultations.GetByPatient("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateKeepsMistypedStoredField(t *testing.T) {
	repos, st := newRepos(t, tickingClock())

	_, err := st.Set("users:user_1", map[string]any{"id": "user_1", "email": "a@x.com", "phone": 612345678})
	require.NoError(t, err)

	updated, err := repos.Users.Update("user_1", Fields{"name": "Alice"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Alice", updated.Name)

	raw, ok := st.Get("users:user_1")
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"user_1","email":"a@x.com","phone":612345678,"name":"Alice"}`, string(raw))
}
