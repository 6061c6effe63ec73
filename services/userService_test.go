package services

import (
	"context"
	"encoding/json"
	"testing"

	"RxClinic/apperrors"
	"RxClinic/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesPatient(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()

	in := newUser(models.UserTypeAdmin, "juan@example.com")
	in.VerifiedBy = strPtr(e.admin.ID)
	u, err := e.svc.Users.Register(ctx, in, "secret123")
	require.NoError(t, err)

	assert.Equal(t, models.UserTypePatient, u.UserType, "self-registration always yields a patient")
	assert.Nil(t, u.VerifiedBy)
	assert.Equal(t, u.ID, u.CreatedBy)
	assert.NotEqual(t, "secret123", u.Password)

	p, err := e.svc.Patients.Get(ctx, u.ID, []string{"user"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, p.Status)
	require.NotNil(t, p.User)
	assert.Equal(t, "juan@example.com", p.User.Email)

	raw, err := json.Marshal(u.View(models.DefaultPublicBaseURL))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"full_name":"Juan D. Cruz"`)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	e := newEnv(t, true)
	e.register(t, "juan@example.com")

	_, err := e.svc.Users.Register(context.Background(), newUser("", "JUAN@example.com"), "secret123")
	var uniq *apperrors.UniquenessError
	require.ErrorAs(t, err, &uniq)
	assert.Equal(t, "email", uniq.Field)
}

func TestRegisterValidatesPassword(t *testing.T) {
	e := newEnv(t, false)

	_, err := e.svc.Users.Register(context.Background(), newUser("", "juan@example.com"), "short")
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("password"))

	_, err = e.repos.Users.GetByEmail(context.Background(), "juan@example.com")
	assert.True(t, apperrors.IsNotFound(err), "nothing is written on validation failure")
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	e := newEnv(t, false)
	patient := e.register(t, "juan@example.com")

	_, err := e.svc.Users.Create(context.Background(), patient, newUser(models.UserTypeDoctor, "doc@example.com"), "secret123")
	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	u, err := e.svc.Users.Create(context.Background(), e.admin, newUser(models.UserTypeDoctor, "doc@example.com"), "secret123")
	require.NoError(t, err)
	assert.Equal(t, e.admin.ID, u.CreatedBy)
}

func TestLogin(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	patient := e.register(t, "juan@example.com")

	session, err := e.svc.Users.Login(ctx, "juan@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, patient.ID, session.User.ID)

	_, err = e.svc.Users.Login(ctx, "juan@example.com", "wrong")
	var unauthorized *apperrors.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)

	_, err = e.svc.Users.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorAs(t, err, &unauthorized)

	_, err = e.svc.Users.Login(ctx, "not-an-email", "secret123")
	assert.True(t, apperrors.IsValidation(err))
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	patient := e.register(t, "juan@example.com")

	_, err := e.svc.Users.SetStatus(ctx, e.admin, patient.ID, models.StatusInactive)
	require.NoError(t, err)

	_, err = e.svc.Users.Login(ctx, "juan@example.com", "secret123")
	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestRefresh(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	e.register(t, "juan@example.com")

	session, err := e.svc.Users.Login(ctx, "juan@example.com", "secret123")
	require.NoError(t, err)

	access, err := e.svc.Users.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = e.svc.Users.Refresh(ctx, session.AccessToken)
	var unauthorized *apperrors.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized, "an access token cannot refresh")
}

func TestPasswordReset(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	e.register(t, "juan@example.com")

	var sent string
	e.mailer.sendFn = func(email, code string) error {
		assert.Equal(t, "juan@example.com", email)
		sent = code
		return nil
	}
	require.NoError(t, e.svc.Users.SendResetCode(ctx, "juan@example.com"))
	require.Len(t, sent, 6)

	wrong := "000000"
	if sent == wrong {
		wrong = "111111"
	}
	err := e.svc.Users.ChangePassword(ctx, "juan@example.com", wrong, "newsecret1")
	var unauthorized *apperrors.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)

	require.NoError(t, e.svc.Users.ChangePassword(ctx, "juan@example.com", sent, "newsecret1"))

	_, err = e.svc.Users.Login(ctx, "juan@example.com", "secret123")
	assert.Error(t, err)
	_, err = e.svc.Users.Login(ctx, "juan@example.com", "newsecret1")
	assert.NoError(t, err)

	err = e.svc.Users.ChangePassword(ctx, "juan@example.com", sent, "another123")
	assert.Error(t, err, "a code is consumed on use")
}

func TestSendResetCodeUnknownEmailIsSilent(t *testing.T) {
	e := newEnv(t, true)
	e.mailer.sendFn = func(string, string) error {
		t.Fatal("no mail for unknown accounts")
		return nil
	}
	assert.NoError(t, e.svc.Users.SendResetCode(context.Background(), "nobody@example.com"))
}

func TestPasswordResetNeedsRedis(t *testing.T) {
	e := newEnv(t, false)
	e.register(t, "juan@example.com")

	err := e.svc.Users.SendResetCode(context.Background(), "juan@example.com")
	assert.ErrorIs(t, err, ErrResetUnavailable)
}

func TestUpdateUser(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	patient := e.register(t, "juan@example.com")
	e.register(t, "maria@example.com")

	u, err := e.svc.Users.Update(ctx, patient, patient.ID, func(u *models.User) error {
		u.Address = "Makati City"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Makati City", u.Address)
	assert.Equal(t, patient.ID, *u.UpdatedBy)

	_, err = e.svc.Users.Update(ctx, patient, patient.ID, func(u *models.User) error {
		u.UserType = models.UserTypeAdmin
		return nil
	})
	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	_, err = e.svc.Users.Update(ctx, patient, patient.ID, func(u *models.User) error {
		u.Email = "maria@example.com"
		return nil
	})
	assert.True(t, apperrors.IsUniqueness(err))

	_, err = e.svc.Users.Update(ctx, patient, patient.ID, func(u *models.User) error {
		u.VerifiedBy = &patient.ID
		return nil
	})
	assert.ErrorAs(t, err, &forbidden, "users cannot vouch for themselves")

	u, err = e.svc.Users.Update(ctx, e.admin, patient.ID, func(u *models.User) error {
		u.VerifiedBy = &e.admin.ID
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, u.VerifiedBy)
	assert.Equal(t, e.admin.ID, *u.VerifiedBy)

	session, err := e.svc.Users.Login(ctx, "juan@example.com", "secret123")
	require.NoError(t, err, "profile updates keep the password")
	assert.Equal(t, "Makati City", session.User.Address)
}

func TestUpdateOtherUserForbidden(t *testing.T) {
	e := newEnv(t, false)
	juan := e.register(t, "juan@example.com")
	maria := e.register(t, "maria@example.com")

	_, err := e.svc.Users.Update(context.Background(), maria, juan.ID, func(u *models.User) error {
		u.Address = "Pasig City"
		return nil
	})
	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestProfile(t *testing.T) {
	e := newEnv(t, false)
	patient := e.register(t, "juan@example.com")

	u, err := e.svc.Users.Profile(context.Background(), patient)
	require.NoError(t, err)
	assert.Equal(t, "juan@example.com", u.Email)
	assert.Equal(t, "Juan D. Cruz", u.FullName())
}

func TestSeedAdmin(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()

	created, err := e.svc.Users.SeedAdmin(ctx, AdminProfile("root@example.com"), "secret123")
	require.NoError(t, err)
	assert.True(t, created)

	stored, err := e.repos.Users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeAdmin, stored.UserType)
	assert.Equal(t, stored.ID, stored.CreatedBy)
	assert.NotEqual(t, "secret123", stored.Password)

	session, err := e.svc.Users.Login(ctx, "root@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeAdmin, session.User.UserType)

	created, err = e.svc.Users.SeedAdmin(ctx, AdminProfile("ROOT@example.com"), "another123")
	require.NoError(t, err)
	assert.False(t, created, "seeding is idempotent")

	e.register(t, "juan@example.com")
	_, err = e.svc.Users.SeedAdmin(ctx, AdminProfile("juan@example.com"), "secret123")
	assert.True(t, apperrors.IsUniqueness(err), "a patient email is never promoted")

	_, err = e.svc.Users.SeedAdmin(ctx, AdminProfile("other@example.com"), "short")
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("password"))
}
