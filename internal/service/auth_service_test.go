package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestAuthService(users *MockUserRepo) *authService {
	return NewAuthService(users, new(MockGymRepo), testSecret, time.Hour, testLogger()).(*authService)
}

func TestSignup(t *testing.T) {
	users := new(MockUserRepo)
	id := primitive.NewObjectID()
	var storedHash string
	users.On("GetByEmail", mock.Anything, "owner@example.com").Return(nil, repository.ErrNotFound)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { storedHash = args.Get(1).(*domain.User).PasswordHash }).
		Return(id, nil)

	token, user, err := newTestAuthService(users).Signup(context.Background(), SignupInput{
		Name:     "  Gym Owner ",
		Email:    " Owner@Example.com ",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Gym Owner", user.Name)
	assert.Equal(t, domain.RoleOwner, user.Role)
	assert.Equal(t, domain.DefaultDialCode, user.DialCode)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("secret123")))
}

func TestSignup_Rejections(t *testing.T) {
	t.Run("existing email", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByEmail", mock.Anything, "taken@example.com").Return(&domain.User{}, nil)

		_, _, err := newTestAuthService(users).Signup(context.Background(), SignupInput{Name: "Dup", Email: "taken@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost race", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
		users.On("Create", mock.Anything, mock.Anything).Return(primitive.NilObjectID, repository.ErrDuplicateKey)

		_, _, err := newTestAuthService(users).Signup(context.Background(), SignupInput{Name: "Dup", Email: "race@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("short password", func(t *testing.T) {
		_, _, err := newTestAuthService(new(MockUserRepo)).Signup(context.Background(), SignupInput{Name: "Short", Email: "a@b.co", Password: "123"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "password")
	})
}

func TestSigninAndAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: primitive.NewObjectID(), Email: "owner@example.com", PasswordHash: string(hash), Role: domain.RoleOwner, IsActive: true}

	users := new(MockUserRepo)
	users.On("GetByEmail", mock.Anything, "owner@example.com").Return(user, nil)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	users.On("TouchLastLogin", mock.Anything, user.ID, mock.Anything).Return(assert.AnError)

	svc := newTestAuthService(users)

	_, _, err = svc.Signin(context.Background(), "owner@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	token, signedIn, err := svc.Signin(context.Background(), "OWNER@example.com", "secret123")
	require.NoError(t, err, "a failed last-login update does not block sign in")
	assert.NotNil(t, signedIn.LastLogin)

	got, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)
}

func TestSignin_InactiveUser(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	users := new(MockUserRepo)
	users.On("GetByEmail", mock.Anything, "gone@example.com").
		Return(&domain.User{ID: primitive.NewObjectID(), PasswordHash: string(hash), Role: domain.RoleManager}, nil)

	_, _, err := newTestAuthService(users).Signin(context.Background(), "gone@example.com", "secret123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthenticate_Rejections(t *testing.T) {
	users := new(MockUserRepo)
	svc := newTestAuthService(users)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := newTestAuthService(users)
	expired.now = fixedClock(time.Now().Add(-2 * time.Hour))
	token, err := expired.generateJWT(&domain.User{ID: primitive.NewObjectID(), Role: domain.RoleOwner})
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwtClaims{UserID: primitive.NewObjectID().Hex()})
	signed, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	deactivated := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleManager}
	users.On("GetByID", mock.Anything, deactivated.ID).Return(deactivated, nil)
	token, err = svc.generateJWT(deactivated)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewAuthService_PanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() { NewAuthService(new(MockUserRepo), new(MockGymRepo), "", time.Hour, testLogger()) })
}

func storedOwner(t *testing.T, password string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID: primitive.NewObjectID(), Name: "Gym Owner", Email: "owner@example.com", PasswordHash: string(hash),
		DialCode: "91", PhoneNumber: "9876543210", Role: domain.RoleOwner, IsActive: true,
		OwnedGyms: []primitive.ObjectID{primitive.NewObjectID()},
	}
}

func TestProfile(t *testing.T) {
	user := storedOwner(t, "secret123")
	gym := domain.Gym{ID: user.OwnedGyms[0], Name: "Iron Temple", Location: "Pune", IsActive: true}
	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	gyms := new(MockGymRepo)
	gyms.On("ListByIDs", mock.Anything, user.OwnedGyms).Return([]domain.Gym{gym}, nil)
	gyms.On("ListByIDs", mock.Anything, []primitive.ObjectID(nil)).Return([]domain.Gym{}, nil)

	svc := newTestAuthService(users)
	svc.gymRepo = gyms
	p, err := svc.Profile(context.Background(), &domain.User{ID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "Gym Owner", p.User.Name)
	assert.Empty(t, p.User.PasswordHash)
	require.Len(t, p.OwnedGyms, 1)
	assert.Equal(t, "Iron Temple", p.OwnedGyms[0].Name)
	assert.Empty(t, p.ManagedGyms)
}

func TestUpdateProfile_KeepsPasswordHash(t *testing.T) {
	user := storedOwner(t, "secret123")
	hash := user.PasswordHash
	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.PasswordHash == hash && u.Name == "New Name" && u.PhoneNumber == "9123456780" && u.DialCode == "91"
	})).Return(nil)
	gyms := new(MockGymRepo)
	gyms.On("ListByIDs", mock.Anything, mock.Anything).Return([]domain.Gym{}, nil)

	svc := newTestAuthService(users)
	svc.gymRepo = gyms
	actor := &domain.User{ID: user.ID, Role: domain.RoleOwner}
	p, err := svc.UpdateProfile(context.Background(), actor, UpdateProfileInput{
		Name:        ptr(" New Name "),
		PhoneNumber: ptr("9123456780"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", p.User.Name)
	users.AssertNumberOfCalls(t, "Update", 1)

	_, err = svc.UpdateProfile(context.Background(), actor, UpdateProfileInput{PhoneNumber: ptr("12ab")})
	assert.True(t, IsValidation(err))
	users.AssertNumberOfCalls(t, "Update", 1)
}

func TestChangePassword(t *testing.T) {
	t.Run("wrong current password", func(t *testing.T) {
		user := storedOwner(t, "secret123")
		users := new(MockUserRepo)
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		err := newTestAuthService(users).ChangePassword(context.Background(), &domain.User{ID: user.ID},
			ChangePasswordInput{CurrentPassword: "nope", NewPassword: "brand-new"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "currentPassword")
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("new password too short", func(t *testing.T) {
		err := newTestAuthService(new(MockUserRepo)).ChangePassword(context.Background(), &domain.User{ID: primitive.NewObjectID()},
			ChangePasswordInput{CurrentPassword: "secret123", NewPassword: "12345"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "newPassword")
	})

	t.Run("changes the stored hash", func(t *testing.T) {
		user := storedOwner(t, "secret123")
		var saved string
		users := new(MockUserRepo)
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.User).PasswordHash }).
			Return(nil)

		err := newTestAuthService(users).ChangePassword(context.Background(), &domain.User{ID: user.ID},
			ChangePasswordInput{CurrentPassword: "secret123", NewPassword: "brand-new"})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved), []byte("brand-new")))
	})
}

func TestDeleteAccount(t *testing.T) {
	user := storedOwner(t, "secret123")
	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return !u.IsActive && u.PasswordHash != "" })).Return(nil)

	svc := newTestAuthService(users)
	require.NoError(t, svc.DeleteAccount(context.Background(), &domain.User{ID: user.ID}))

	err := svc.DeleteAccount(context.Background(), &domain.User{ID: user.ID})
	assert.ErrorIs(t, err, ErrUserNotFound, "already deactivated")
	users.AssertNumberOfCalls(t, "Update", 1)
}
