package services

import (
	"context"
	"strings"

	"RxClinic/apperrors"
	"RxClinic/models"
	"RxClinic/utils"
	"RxClinic/validators"

	"github.com/pkg/errors"
)

var ErrResetUnavailable = errors.New("password reset is unavailable without redis")

var errInvalidCredentials = &apperrors.UnauthorizedError{Reason: "invalid email or password"}

// Session is the token pair issued on login.
type Session struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"-"`
}

// Login verifies the credentials and issues an access and a refresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if err := validators.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, errInvalidCredentials
	}
	if user.Status != models.StatusActive {
		return nil, &apperrors.ForbiddenError{Reason: "account is inactive"}
	}

	access, refresh, err := s.tokens.GenerateTokens(user.ID, user.UserType)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Refresh issues a new access token for a valid refresh token. The role is
// re-read so a changed user type takes effect.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", &apperrors.UnauthorizedError{Reason: err.Error()}
	}
	user, err := s.users.Get(ctx, claims.UserID, nil)
	if apperrors.IsNotFound(err) {
		return "", &apperrors.UnauthorizedError{Reason: "user no longer exists"}
	}
	if err != nil {
		return "", err
	}
	if user.Status != models.StatusActive {
		return "", &apperrors.ForbiddenError{Reason: "account is inactive"}
	}
	return s.tokens.GenerateAccessToken(user.ID, user.UserType)
}

// SendResetCode stores a fresh reset code and mails it. Unknown emails are
// accepted silently so the route cannot be used to probe accounts.
func (s *UserService) SendResetCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validators.ValidateResetRequest(email); err != nil {
		return err
	}
	if !s.codes.Enabled() {
		return ErrResetUnavailable
	}

	user, err := s.users.GetByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		s.log.Info().Str("email", email).Msg("reset code requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return err
	}
	if err := s.codes.Set(ctx, user.Email, code); err != nil {
		return errors.Wrap(err, "failed to store reset code")
	}
	return s.mailer.SendResetCode(user.Email, code)
}

// ChangePassword replaces the password of the user owning email when code is
// the live reset code. The code is consumed on success.
func (s *UserService) ChangePassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.TrimSpace(email)
	if err := validators.ValidatePasswordReset(email, code, newPassword); err != nil {
		return err
	}
	if !s.codes.Enabled() {
		return ErrResetUnavailable
	}

	user, err := s.users.GetByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		return &apperrors.UnauthorizedError{Reason: "invalid or expired reset code"}
	}
	if err != nil {
		return err
	}
	ok, err := s.codes.Verify(ctx, user.Email, code)
	if err != nil {
		return errors.Wrap(err, "failed to read reset code")
	}
	if !ok {
		return &apperrors.UnauthorizedError{Reason: "invalid or expired reset code"}
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, user.ID); err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, user.Email); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete reset code")
	}
	return nil
}
