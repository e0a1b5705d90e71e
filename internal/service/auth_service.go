package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrUserNotFound         = errors.New("user not found")
)

// SignupInput registers a new gym owner.
type SignupInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DialCode    string `json:"dialCode" validate:"omitempty,numeric,max=4"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,numeric,min=7,max=15"`
}

// UpdateProfileInput patches the caller's own account; nil fields are left
// unchanged.
type UpdateProfileInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	DialCode    *string `json:"dialCode" validate:"omitempty,numeric,max=4"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,numeric,min=7,max=15"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// Profile is a user together with the gyms it owns or manages.
type Profile struct {
	User        *domain.User
	OwnedGyms   []domain.Gym
	ManagedGyms []domain.Gym
}

// AuthService handles sign up, sign in, token verification and the
// caller's own account.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (token string, user *domain.User, err error)
	Signin(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// Authenticate verifies a bearer token and loads the active user it names.
	Authenticate(ctx context.Context, token string) (*domain.User, error)

	Profile(ctx context.Context, actor *domain.User) (*Profile, error)
	UpdateProfile(ctx context.Context, actor *domain.User, in UpdateProfileInput) (*Profile, error)
	ChangePassword(ctx context.Context, actor *domain.User, in ChangePasswordInput) error
	// DeleteAccount deactivates the caller's account. Gyms and their data stay.
	DeleteAccount(ctx context.Context, actor *domain.User) error
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	gymRepo       repository.GymRepository
	jwtSecret     string
	jwtExpiration time.Duration
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, gymRepo repository.GymRepository, jwtSecret string, jwtExpiration time.Duration, logger *zerolog.Logger) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 30 * 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		gymRepo:       gymRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		logger:        logger.With().Str("channel", "auth_service").Logger(),
		now:           time.Now,
	}
}

// Signup creates an owner account and signs it in.
func (s *authService) Signup(ctx context.Context, in SignupInput) (string, *domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return "", nil, err
	}

	// Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err == nil {
		return "", nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, pkgerrors.Wrap(err, "unable to check email")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, ErrHashingFailed
	}

	dialCode := in.DialCode
	if dialCode == "" {
		dialCode = domain.DefaultDialCode
	}
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		DialCode:     dialCode,
		PhoneNumber:  in.PhoneNumber,
		Role:         domain.RoleOwner,
		IsActive:     true,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Lost a race with a concurrent signup; the unique index caught it.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return "", nil, ErrUserAlreadyExists
		}
		return "", nil, pkgerrors.Wrap(err, "unable to create user")
	}
	user.ID = userID

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	s.logger.Info().Str("user", userID.Hex()).Msg("owner signed up")
	return token, sanitizeUser(user), nil
}

// Signin handles user authentication and JWT generation.
func (s *authService) Signin(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, newValidationError("email", "email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, pkgerrors.Wrap(err, "unable to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}
	// Deactivated managers cannot sign in.
	if !user.IsActive {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	now := s.now().UTC()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("user", user.ID.Hex()).Msg("unable to record last login")
	}
	user.LastLogin = &now

	return token, sanitizeUser(user), nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, pkgerrors.Wrap(err, "unable to load user")
	}
	// Role changes and deactivation take effect immediately, whatever the token says.
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return sanitizeUser(user), nil
}

// --- Profile ---

func (s *authService) Profile(ctx context.Context, actor *domain.User) (*Profile, error) {
	user, err := s.loadUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, user)
}

func (s *authService) UpdateProfile(ctx context.Context, actor *domain.User, in UpdateProfileInput) (*Profile, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	// The actor carries no password hash; Update writes the stored one back.
	user, err := s.loadUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.DialCode != nil {
		user.DialCode = *in.DialCode
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = *in.PhoneNumber
	}
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return s.profileOf(ctx, user)
}

func (s *authService) ChangePassword(ctx context.Context, actor *domain.User, in ChangePasswordInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	user, err := s.loadUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return newValidationError("currentPassword", "is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	user.PasswordHash = string(hash)
	if err := s.saveUser(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("user", user.ID.Hex()).Msg("password changed")
	return nil
}

func (s *authService) DeleteAccount(ctx context.Context, actor *domain.User) error {
	user, err := s.loadUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	user.IsActive = false
	if err := s.saveUser(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("user", user.ID.Hex()).Str("role", string(user.Role)).Msg("account deactivated")
	return nil
}

func (s *authService) loadUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, pkgerrors.Wrap(err, "unable to load user")
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) saveUser(ctx context.Context, user *domain.User) error {
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return pkgerrors.Wrap(err, "unable to update user")
	}
	return nil
}

// profileOf populates the user's gyms for display.
func (s *authService) profileOf(ctx context.Context, user *domain.User) (*Profile, error) {
	owned, err := s.gymRepo.ListByIDs(ctx, user.OwnedGyms)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to load owned gyms")
	}
	managed, err := s.gymRepo.ListByIDs(ctx, user.ManagedGyms)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to load managed gyms")
	}
	return &Profile{User: sanitizeUser(user), OwnedGyms: owned, ManagedGyms: managed}, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gym-manager",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
