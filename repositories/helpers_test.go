package repositories

import (
	"context"
	"testing"
	"time"

	"RxClinic/cache"
	"RxClinic/database"
	"RxClinic/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	db    *gorm.DB
	repos *Repositories
	admin *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(ctx, sqlite.Open("file::memory:"), database.PoolConfig{MaxOpenConns: 1}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	graph := models.ClinicGraph()
	_, err = database.Up(ctx, db, database.Migrations(graph), zerolog.Nop())
	require.NoError(t, err)

	resolver, err := NewResolver(db, graph)
	require.NoError(t, err)

	f := &fixture{db: db, repos: New(db, resolver, cache.NewCache(nil), zerolog.Nop())}
	f.admin = f.user(t, models.UserTypeAdmin, "")
	return f
}

// user creates a user. An empty creator makes the user its own creator.
func (f *fixture) user(t *testing.T, userType, creator string) *models.User {
	t.Helper()
	u := &models.User{
		UserType:      userType,
		Password:      "$2a$10$hash",
		FirstName:     "Juan",
		LastName:      "Cruz",
		DateOfBirth:   "1990-04-12",
		ContactNumber: "09171234567",
		Address:       "Quezon City",
		Status:        models.StatusActive,
	}
	u.EnsureID()
	u.Email = u.ID + "@example.com"
	if creator == "" {
		creator = u.ID
	}
	u.Stamp(creator, true)
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) specialization(t *testing.T) *models.Specialization {
	t.Helper()
	s := &models.Specialization{Name: "Cardiology", Status: models.StatusActive}
	s.Stamp(f.admin.ID, true)
	require.NoError(t, f.repos.Specializations.Create(context.Background(), s))
	return s
}

func (f *fixture) doctor(t *testing.T, specialtyID uint) *models.Doctor {
	t.Helper()
	u := f.user(t, models.UserTypeDoctor, f.admin.ID)
	d := &models.Doctor{
		UserID:             u.ID,
		SpecialtyID:        specialtyID,
		SpecialtyCert:      strPtr("/docs/cert.pdf"),
		PRCNumber:          1234567,
		PRCImage:           strPtr("/docs/prc.png"),
		PTRNumber:          7654321,
		PhilHealthIDNum:    1111,
		PhilHealthIDImage:  strPtr("/docs/ph.png"),
		ResumeCV:           strPtr("/docs/cv.pdf"),
		NBIClearDate:       "2024-01-15",
		NBIClearFile:       strPtr("/docs/nbi.pdf"),
		MembershipDate:     "2020-06-01",
		MembershipCert:     strPtr("/docs/member.pdf"),
		VATStatus:          "NON-VAT",
		TINNumber:          123456789,
		CertOfRegBIR:       strPtr("/docs/bir.pdf"),
		ReceiptDeclaration: strPtr("/docs/receipt.pdf"),
		VerificationStatus: models.VerificationUnverified,
	}
	d.Stamp(u.ID, true)
	require.NoError(t, f.repos.Doctors.Create(context.Background(), d))
	return d
}

func (f *fixture) schedule(t *testing.T, doctorID, day string) *models.Schedule {
	t.Helper()
	s := &models.Schedule{DoctorID: doctorID, DayAvailable: day, TimeAvailable: "09:00", Status: models.StatusActive}
	s.Stamp(doctorID, true)
	require.NoError(t, f.repos.Schedules.Create(context.Background(), s))
	return s
}

func (f *fixture) patient(t *testing.T) *models.Patient {
	t.Helper()
	u := f.user(t, models.UserTypePatient, "")
	p := &models.Patient{UserID: u.ID, Status: models.StatusActive}
	p.Stamp(u.ID, true)
	require.NoError(t, f.repos.Patients.Create(context.Background(), p))
	return p
}

func (f *fixture) consultation(t *testing.T, patientID string, doctorID *string) *models.Consultation {
	t.Helper()
	c := &models.Consultation{ConsultType: "In Person", ConsultDate: "2024-10-01", ConsultTime: "10:00", DocType: "Consultant", DoctorID: doctorID}
	c.Stamp(patientID, true)
	require.NoError(t, f.repos.Consultations.Create(context.Background(), c))
	return c
}

func (f *fixture) payment(t *testing.T, consultID string, amounts ...string) *models.Payment {
	t.Helper()
	p := &models.Payment{PaidAt: time.Now().UTC(), Status: models.PaymentPending, ConsultID: consultID}
	for _, a := range amounts {
		p.Details = append(p.Details, models.PaymentDetail{Amount: decimal.RequireFromString(a), Status: models.StatusActive})
	}
	p.Amount = decimal.NewNullDecimal(p.DetailTotal())
	p.Stamp(f.admin.ID, true)
	require.NoError(t, f.repos.Payments.Create(context.Background(), p))
	return p
}
