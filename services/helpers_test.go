package services

import (
	"context"
	"strings"
	"testing"

	"RxClinic/cache"
	"RxClinic/database"
	"RxClinic/models"
	"RxClinic/repositories"
	"RxClinic/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type mailerMock struct {
	sendFn func(email, code string) error
}

func (m *mailerMock) SendResetCode(email, code string) error {
	if m.sendFn == nil {
		return nil
	}
	return m.sendFn(email, code)
}

type env struct {
	repos  *repositories.Repositories
	svc    *Services
	mailer *mailerMock
	admin  models.Actor
}

// newEnv wires every service over in-memory sqlite. With withRedis the cache,
// locks and reset codes run on miniredis.
func newEnv(t *testing.T, withRedis bool) *env {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(ctx, sqlite.Open("file::memory:"), database.PoolConfig{MaxOpenConns: 1}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	graph := models.ClinicGraph()
	_, err = database.Up(ctx, db, database.Migrations(graph), zerolog.Nop())
	require.NoError(t, err)
	resolver, err := repositories.NewResolver(db, graph)
	require.NoError(t, err)

	var client *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
	}
	c := cache.NewCache(client)

	tokens, err := utils.NewTokenMaker(strings.Repeat("k", 32))
	require.NoError(t, err)

	e := &env{
		repos:  repositories.New(db, resolver, c, zerolog.Nop()),
		mailer: &mailerMock{},
	}
	e.svc = New(Deps{
		Repos:  e.repos,
		Locker: database.NewLocker(client),
		Tokens: tokens,
		Codes:  utils.NewResetCodes(c),
		Mailer: e.mailer,
		Log:    zerolog.Nop(),
	})

	admin := newUser(models.UserTypeAdmin, "admin@example.com")
	admin.ID = "0b9f6f0e-4a43-4d1f-9a35-2d8a1e2f6c11"
	admin.Password = "$2a$10$hash"
	admin.Stamp(admin.ID, true)
	require.NoError(t, e.repos.Users.Create(ctx, admin))
	e.admin = models.Actor{ID: admin.ID, Role: models.UserTypeAdmin}
	return e
}

func newUser(userType, email string) *models.User {
	return &models.User{
		UserType:      userType,
		Email:         email,
		FirstName:     "Juan",
		MiddleName:    strPtr("Dela"),
		LastName:      "Cruz",
		DateOfBirth:   "1990-04-12",
		ContactNumber: "09171234567",
		Address:       "Quezon City",
	}
}

func actorOf(u *models.User) models.Actor {
	return models.Actor{ID: u.ID, Role: u.UserType}
}

// register self-registers a patient and returns its actor.
func (e *env) register(t *testing.T, email string) models.Actor {
	t.Helper()
	u, err := e.svc.Users.Register(context.Background(), newUser("", email), "secret123")
	require.NoError(t, err)
	return actorOf(u)
}

func (e *env) doctor(t *testing.T, email string) models.Actor {
	t.Helper()
	ctx := context.Background()

	spec, err := e.svc.Specializations.Create(ctx, e.admin, &models.Specialization{Name: "Cardiology"})
	require.NoError(t, err)
	u, err := e.svc.Users.Create(ctx, e.admin, newUser(models.UserTypeDoctor, email), "secret123")
	require.NoError(t, err)

	_, err = e.svc.Doctors.Create(ctx, actorOf(u), doctorRecord(u.ID, spec.ID))
	require.NoError(t, err)
	return actorOf(u)
}

func doctorRecord(userID string, specialtyID uint) *models.Doctor {
	return &models.Doctor{
		UserID:             userID,
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
		TINNumber:          123456789,
		CertOfRegBIR:       strPtr("/docs/bir.pdf"),
		ReceiptDeclaration: strPtr("/docs/receipt.pdf"),
	}
}

func (e *env) consultation(t *testing.T, patient models.Actor, doctorID *string) *models.Consultation {
	t.Helper()
	c, err := e.svc.Consultations.Create(context.Background(), patient, &models.Consultation{
		ConsultDate: "2024-10-01",
		ConsultTime: "10:00",
		DoctorID:    doctorID,
	})
	require.NoError(t, err)
	return c
}
