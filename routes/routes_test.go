package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"RxClinic/cache"
	"RxClinic/config"
	"RxClinic/database"
	"RxClinic/models"
	"RxClinic/repositories"
	"RxClinic/services"
	"RxClinic/utils"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	handler http.Handler
	svc     *services.Services
}

func newServer(t *testing.T) *server {
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

	tokens, err := utils.NewTokenMaker(strings.Repeat("k", 32))
	require.NoError(t, err)

	c := cache.NewCache(nil)
	svc := services.New(services.Deps{
		Repos:  repositories.New(db, resolver, c, zerolog.Nop()),
		Locker: database.NewLocker(nil),
		Tokens: tokens,
		Codes:  utils.NewResetCodes(c),
		Mailer: utils.LogMailer{Log: zerolog.Nop()},
		Audit:  services.NewAuditLogger(false, zerolog.Nop()),
		Log:    zerolog.Nop(),
	})

	cfg := &config.AppConfig{
		Env:            "test",
		PublicBaseURL:  models.DefaultPublicBaseURL,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	return &server{handler: SetupRoutes(cfg, svc, tokens, zerolog.Nop()), svc: svc}
}

func (s *server) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func registration(email string) map[string]any {
	return map[string]any{
		"email":    email,
		"password": "secret123",
		"fname":    "Maria",
		"lname":    "Santos",
		"dob":      "1992-02-29",
		"cellnum":  "09181234567",
		"address":  "Makati City",
	}
}

// signUp registers a patient, logs in and returns the user id and access token.
func (s *server) signUp(t *testing.T, email string) (string, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/register", registration(email), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["user_id"].(string)

	rec = s.do(t, http.MethodPost, "/auth/login", map[string]any{"email": email, "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return id, decode(t, rec)["accessToken"].(string)
}

// login returns the access token of an existing account.
func (s *server) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", map[string]any{"email": email, "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["accessToken"].(string)
}

func TestRootRoutes(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello Hatdog!", decode(t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/welcome", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World!", decode(t, rec)["message"])
}

func TestResourcesRequireToken(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/users", "/patients", "/doctors", "/payments", "/auth/user/profile"} {
		rec := s.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := s.do(t, http.MethodGet, "/patients", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterLoginProfile(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/auth/register", registration("maria@example.com"), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	user := decode(t, rec)
	assert.Equal(t, models.UserTypePatient, user["user_type"])
	assert.Equal(t, "Maria Santos", user["full_name"])

	rec = s.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "maria@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	token, _ := body["accessToken"].(string)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, body["refreshToken"])
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = s.do(t, http.MethodGet, "/auth/user/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "maria@example.com", decode(t, rec)["email"])

	rec = s.do(t, http.MethodPost, "/auth/refresh-token", map[string]any{"refreshToken": body["refreshToken"]}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["accessToken"])
}

func TestLoginWithWrongPassword(t *testing.T) {
	s := newServer(t)
	s.signUp(t, "maria@example.com")

	rec := s.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "maria@example.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidationFailureListsFields(t *testing.T) {
	s := newServer(t)

	body := registration("not-an-email")
	body["password"] = "short"
	rec := s.do(t, http.MethodPost, "/auth/register", body, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var out struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "validation failed", out.Error)

	var fields []string
	for _, f := range out.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	s := newServer(t)
	s.signUp(t, "maria@example.com")

	rec := s.do(t, http.MethodPost, "/auth/register", registration("maria@example.com"), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email", decode(t, rec)["field"])
}

func TestMalformedBody(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNestedAllergies(t *testing.T) {
	s := newServer(t)
	patientID, token := s.signUp(t, "maria@example.com")
	otherID, otherToken := s.signUp(t, "jose@example.com")

	path := "/patients/" + patientID + "/allergies"
	rec := s.do(t, http.MethodPost, path, map[string]any{"allergy_name": "Peanuts"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, patientID, created["user_id"])
	assert.Equal(t, models.StatusActive, created["allergy_status"])

	rec = s.do(t, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	// Another patient cannot chart on this record.
	rec = s.do(t, http.MethodPost, path, map[string]any{"allergy_name": "Dust"}, otherToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The allergy is not reachable under a different patient.
	rec = s.do(t, http.MethodGet, "/patients/"+otherID+"/allergies/1", nil, otherToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, path+"/1/status", map[string]any{"status": models.StatusInactive}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusInactive, decode(t, rec)["allergy_status"])

	rec = s.do(t, http.MethodDelete, path+"/1", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPatientUpdateDerivesBMI(t *testing.T) {
	s := newServer(t)
	patientID, token := s.signUp(t, "maria@example.com")

	rec := s.do(t, http.MethodPut, "/patients/"+patientID, map[string]any{
		"weight_lbs": 130,
		"height_ft":  5,
		"height_in":  4,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.InDelta(t, 22.31, body["bmi_num"], 0.001)
	assert.Equal(t, "Normal", body["bmi_status"])

	rec = s.do(t, http.MethodGet, "/patients/"+patientID+"?include=user", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	user, ok := decode(t, rec)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "maria@example.com", user["email"])
}

func TestUnknownRecordIsNotFound(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp(t, "maria@example.com")

	rec := s.do(t, http.MethodGet, "/patients/"+uuid.NewString(), nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerificationRequiresStaff(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp(t, "maria@example.com")

	rec := s.do(t, http.MethodPatch, "/doctors/"+uuid.NewString()+"/verification",
		map[string]any{"verification_status": "Verified"}, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPasswordResetWithoutRedis(t *testing.T) {
	s := newServer(t)
	s.signUp(t, "maria@example.com")

	rec := s.do(t, http.MethodPost, "/auth/send-reset-code", map[string]any{"email": "maria@example.com"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogoffClearsCookies(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/auth/logoff", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value, c.Name)
	}
}

func TestDoctorVerificationIsNotClientWritable(t *testing.T) {
	s := newServer(t)
	_, err := s.svc.Users.SeedAdmin(context.Background(), services.AdminProfile("root@example.com"), "secret123")
	require.NoError(t, err)
	admin := s.login(t, "root@example.com")

	rec := s.do(t, http.MethodPost, "/specializations", map[string]any{"specialty_name": "Cardiology"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	specialtyID := decode(t, rec)["specialty_id"]

	user := registration("doc@example.com")
	user["user_type"] = models.UserTypeDoctor
	rec = s.do(t, http.MethodPost, "/users", user, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doctorID := decode(t, rec)["user_id"].(string)
	doctor := s.login(t, "doc@example.com")

	rec = s.do(t, http.MethodPost, "/doctors", map[string]any{
		"user_id":             doctorID,
		"specialty_id":        specialtyID,
		"specialty_cert":      "/docs/cert.pdf",
		"prcnumber":           1234567,
		"prcimg":              "/docs/prc.png",
		"ptrnumber":           7654321,
		"philhealthidnum":     1111,
		"philhealthidimg":     "/docs/ph.png",
		"resumecv":            "/docs/cv.pdf",
		"nbicleardate":        "2024-01-15",
		"nbiclearfile":        "/docs/nbi.pdf",
		"membershipdate":      "2020-06-01",
		"membershipcert":      "/docs/member.pdf",
		"tinnum":              123456789,
		"certofregbir":        "/docs/bir.pdf",
		"receiptdeclaration":  "/docs/receipt.pdf",
		"verification_status": models.VerificationVerified,
		"verified_by":         doctorID,
	}, doctor)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, models.VerificationUnverified, created["verification_status"])
	assert.Nil(t, created["verified_by"])

	rec = s.do(t, http.MethodPut, "/doctors/"+doctorID, map[string]any{
		"ptrnumber":           42,
		"verification_status": models.VerificationVerified,
	}, doctor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)
	assert.Equal(t, models.VerificationUnverified, updated["verification_status"])
	assert.EqualValues(t, 42, updated["ptrnumber"])

	rec = s.do(t, http.MethodPatch, "/doctors/"+doctorID+"/verification",
		map[string]any{"verification_status": models.VerificationVerified}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.VerificationVerified, decode(t, rec)["verification_status"])
}
