package services

import (
	"context"
	"strings"
	"time"

	"RxClinic/apperrors"
	"RxClinic/database"
	"RxClinic/models"
	"RxClinic/repositories"
	"RxClinic/utils"
	"RxClinic/validators"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const emailLockTTL = time.Minute

var ErrEmailLocked = errors.New("another registration for this email is in progress")

// UserService owns the user lifecycle: registration, credentials and profile updates.
type UserService struct {
	*Service[models.User, *models.User]
	users    *repositories.UserRepository
	patients *repositories.PatientStore
	locker   *database.Locker
	tokens   *utils.TokenMaker
	codes    *utils.ResetCodes
	mailer   utils.Mailer
	audit    AuditLogger
	log      zerolog.Logger
}

type UserDeps struct {
	Users    *repositories.UserRepository
	Patients *repositories.PatientStore
	Locker   *database.Locker
	Tokens   *utils.TokenMaker
	Codes    *utils.ResetCodes
	Mailer   utils.Mailer
	Audit    AuditLogger
	Log      zerolog.Logger
}

func NewUserService(deps UserDeps) *UserService {
	if deps.Audit == nil {
		deps.Audit = nopAudit{}
	}
	s := &UserService{
		users:    deps.Users,
		patients: deps.Patients,
		locker:   deps.Locker,
		tokens:   deps.Tokens,
		codes:    deps.Codes,
		mailer:   deps.Mailer,
		audit:    deps.Audit,
		log:      deps.Log.With().Str("service", "users").Logger(),
	}
	s.Service = NewService[models.User](deps.Users, deps.Audit, Options[models.User, *models.User]{
		Validate: func(u *models.User, op validators.Op) error {
			return validators.ValidateUser(u, "", op)
		},
		// A user may always edit their own profile.
		CanModify: func(actor models.Actor, u *models.User) bool {
			return actor.ID == u.ID
		},
	})
	return s
}

// Register self-registers a patient. The new user owns its own row and a
// blank patient record is created with it.
func (s *UserService) Register(ctx context.Context, user *models.User, password string) (*models.User, error) {
	user.ID = uuid.NewString()
	user.UserType = models.UserTypePatient
	user.VerifiedBy = nil
	user.ApplyDefaults()
	user.Stamp(user.ID, true)

	err := s.create(ctx, user, password, func(tx *gorm.DB) error {
		patient := &models.Patient{UserID: user.ID}
		patient.ApplyDefaults()
		patient.Stamp(user.ID, true)
		if err := s.patients.CreateTx(ctx, tx, patient); err != nil {
			return err
		}
		s.audit.RecordCreated(patient.TableName(), patient.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create adds a user of any type on behalf of actor.
func (s *UserService) Create(ctx context.Context, actor models.Actor, user *models.User, password string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, &apperrors.ForbiddenError{Reason: "only admins may create users"}
	}
	user.ID = ""
	user.EnsureID()
	user.ApplyDefaults()
	user.Stamp(actor.ID, true)

	if err := s.create(ctx, user, password, nil); err != nil {
		return nil, err
	}
	return user, nil
}

// AdminProfile is the placeholder profile given to a seeded admin.
func AdminProfile(email string) *models.User {
	return &models.User{
		Email:         email,
		FirstName:     "System",
		LastName:      "Administrator",
		DateOfBirth:   "1970-01-01",
		ContactNumber: "N/A",
		Address:       "N/A",
	}
}

// SeedAdmin creates user as a self-owned Admin unless its email is already
// taken. It reports whether a row was written; an existing non-admin with the
// same email is a uniqueness error.
func (s *UserService) SeedAdmin(ctx context.Context, user *models.User, password string) (bool, error) {
	user.Email = strings.TrimSpace(user.Email)
	existing, err := s.users.GetByEmail(ctx, user.Email)
	switch {
	case err == nil:
		if existing.UserType != models.UserTypeAdmin {
			return false, &apperrors.UniquenessError{Field: "email"}
		}
		return false, nil
	case !apperrors.IsNotFound(err):
		return false, err
	}

	user.ID = uuid.NewString()
	user.UserType = models.UserTypeAdmin
	user.ApplyDefaults()
	user.Stamp(user.ID, true)
	if err := s.create(ctx, user, password, nil); err != nil {
		return false, err
	}
	s.log.Info().Str("email", user.Email).Msg("admin account created")
	return true, nil
}

// create validates, hashes and inserts user under an email lock. extra runs in
// the same transaction.
func (s *UserService) create(ctx context.Context, user *models.User, password string, extra func(tx *gorm.DB) error) error {
	user.Email = strings.TrimSpace(user.Email)
	if err := validators.ValidateUser(user, password, validators.OpCreate); err != nil {
		return err
	}

	lockKey := "user_lock:" + strings.ToLower(user.Email)
	lockValue := uuid.NewString()
	locked, err := s.locker.NewLock(ctx, lockKey, lockValue, emailLockTTL)
	if err != nil {
		return err
	}
	if !locked {
		return ErrEmailLocked
	}
	defer func() {
		if err := s.locker.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			s.log.Warn().Err(err).Msg("failed to release lock")
		}
	}()

	exists, err := s.users.EmailExists(ctx, user.Email, "")
	if err != nil {
		return err
	}
	if exists {
		return &apperrors.UniquenessError{Field: "email"}
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hash

	err = s.users.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.users.CreateTx(ctx, tx, user); err != nil {
			return err
		}
		if extra != nil {
			return extra(tx)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.RecordCreated(user.TableName(), user.ID)
	return nil
}

// Update applies a profile change. Only admins may change a user's type, and
// a changed email must stay unique.
func (s *UserService) Update(ctx context.Context, actor models.Actor, id string, apply func(*models.User) error) (*models.User, error) {
	return s.Service.Update(ctx, actor, id, func(u *models.User) error {
		userType, email, verifiedBy := u.UserType, u.Email, u.VerifiedBy
		if err := apply(u); err != nil {
			return err
		}
		if u.UserType != userType && !actor.IsAdmin() {
			return &apperrors.ForbiddenError{Reason: "only admins may change user_type"}
		}
		if !sameRef(u.VerifiedBy, verifiedBy) && !actor.IsAdmin() {
			return &apperrors.ForbiddenError{Reason: "only admins may change verified_by"}
		}
		u.Email = strings.TrimSpace(u.Email)
		if strings.EqualFold(u.Email, email) {
			return nil
		}
		exists, err := s.users.EmailExists(ctx, u.Email, u.ID)
		if err != nil {
			return err
		}
		if exists {
			return &apperrors.UniquenessError{Field: "email"}
		}
		return nil
	})
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Profile returns the acting user.
func (s *UserService) Profile(ctx context.Context, actor models.Actor) (*models.User, error) {
	return s.users.Get(ctx, actor.ID, nil)
}

// requireType checks that the user behind id exists and has the given type.
func requireType(ctx context.Context, users *repositories.UserRepository, id, userType string) error {
	u, err := users.Get(ctx, id, nil)
	if apperrors.IsNotFound(err) {
		return &apperrors.ReferentialIntegrityError{Table: "users", Column: "user_id", Reason: "users " + id + " does not exist"}
	}
	if err != nil {
		return err
	}
	if u.UserType != userType {
		return apperrors.NewValidationError(map[string]string{"user_id": "must reference a user of type " + userType})
	}
	return nil
}
