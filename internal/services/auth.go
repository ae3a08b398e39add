package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"colabora/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 6
	tokenTTL          = 30 * 24 * time.Hour
)

// AuthService is the identity provider: accounts, password checks and
// bearer tokens.
type AuthService struct {
	db     *gorm.DB
	secret []byte
	cost   int
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, secret string, log zerolog.Logger) *AuthService {
	return &AuthService{
		db:     db,
		secret: []byte(secret),
		cost:   bcrypt.DefaultCost,
		log:    log.With().Str("component", "auth").Logger(),
		now:    time.Now,
	}
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return nil, "", invalid("invalid email")
	}
	if len(password) < MinPasswordLength {
		return nil, "", invalid("password must be at least 6 characters")
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, "", transient(err, "failed checking email")
	}
	if n > 0 {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", transient(err, "failed creating user")
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	s.log.Info().Str("user", user.ID).Msg("user registered")
	return user, token, nil
}

// Login checks credentials. Unknown email and wrong password are the same
// error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrBadCredentials
	}
	if err != nil {
		return nil, "", transient(err, "failed loading user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrBadCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// IssueToken signs an HS256 token whose subject is userID.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates a bearer token and returns its principal.
func (s *AuthService) ParseToken(raw string) (Principal, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return Anonymous, ErrUnauthorized
	}
	return Principal{UserID: claims.Subject}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
