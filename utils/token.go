package utils

import (
	"time"

	"github.com/o1egl/paseto"
	"github.com/pkg/errors"
)

const (
	AccessTokenExpiry  = 24 * time.Hour
	RefreshTokenExpiry = 7 * 24 * time.Hour

	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

var (
	ErrTokenExpired           = errors.New("token expired")
	ErrInsufficientPermission = errors.New("insufficient permissions")
	ErrWrongTokenKind         = errors.New("wrong token kind")
)

// TokenClaims is the data carried by a token.
type TokenClaims struct {
	UserID string    `json:"userId"`
	Role   string    `json:"role"`
	Kind   string    `json:"kind"`
	Expiry time.Time `json:"expiry"`
}

// TokenMaker issues and verifies PASETO v2 local tokens.
type TokenMaker struct {
	key []byte
	v2  *paseto.V2
	now func() time.Time
}

// NewTokenMaker requires a 32 byte symmetric key.
func NewTokenMaker(symmetricKey string) (*TokenMaker, error) {
	if len(symmetricKey) != 32 {
		return nil, errors.Errorf("SYMMETRIC_KEY must be 32 bytes long. Current length: %d", len(symmetricKey))
	}
	return &TokenMaker{key: []byte(symmetricKey), v2: paseto.NewV2(), now: time.Now}, nil
}

// GenerateTokens generates both the access token and refresh token for the given user.
func (m *TokenMaker) GenerateTokens(userID, role string) (accessToken, refreshToken string, err error) {
	accessToken, err = m.generate(userID, role, tokenAccess, AccessTokenExpiry)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = m.generate(userID, role, tokenRefresh, RefreshTokenExpiry)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (m *TokenMaker) GenerateAccessToken(userID, role string) (string, error) {
	return m.generate(userID, role, tokenAccess, AccessTokenExpiry)
}

func (m *TokenMaker) generate(userID, role, kind string, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		Kind:   kind,
		Expiry: m.now().Add(expiry),
	}
	token, err := m.v2.Encrypt(m.key, claims, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate token")
	}
	return token, nil
}

// ValidateToken checks an access token for expiry and, when given, one of the required roles.
func (m *TokenMaker) ValidateToken(token string, requiredRoles ...string) (*TokenClaims, error) {
	return m.validate(token, tokenAccess, requiredRoles)
}

// ValidateRefreshToken checks a refresh token.
func (m *TokenMaker) ValidateRefreshToken(token string) (*TokenClaims, error) {
	return m.validate(token, tokenRefresh, nil)
}

func (m *TokenMaker) validate(token, kind string, requiredRoles []string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := m.v2.Decrypt(token, m.key, &claims, nil); err != nil {
		return nil, errors.Wrap(err, "failed to decrypt token")
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	if m.now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	if len(requiredRoles) == 0 {
		return &claims, nil
	}
	for _, role := range requiredRoles {
		if claims.Role == role {
			return &claims, nil
		}
	}
	return nil, ErrInsufficientPermission
}
