// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/auth/mocks"
	"github.com/taskhive/taskhive/pkg/errutil"
)

// decoyHashValue is what the mock hasher produces for the decoy hash the
// service generates at construction time.
const decoyHashValue = "$argon2id$v=19$m=65536,t=1,p=4$decoy$decoy"

// newService constructs a Service over mocks, absorbing the decoy hash the
// constructor generates through the hasher.
func newService(t *testing.T, users *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenIssuer) *auth.Service {
	t.Helper()
	hasher.On("Hash", mock.AnythingOfType("string")).Return(decoyHashValue, nil).Once()
	svc, err := auth.NewService(users, hasher, tokens)
	require.NoError(t, err)
	return svc
}

func TestNewService_NilDependencies(t *testing.T) {
	tests := []struct {
		name        string
		users       auth.UserRepository
		hasher      auth.PasswordHasher
		tokens      auth.TokenIssuer
		expectError string
	}{
		{
			name:        "nil users repository",
			users:       nil,
			hasher:      mocks.NewMockPasswordHasher(t),
			tokens:      mocks.NewMockTokenIssuer(t),
			expectError: "users repository is required",
		},
		{
			name:        "nil password hasher",
			users:       mocks.NewMockUserRepository(t),
			hasher:      nil,
			tokens:      mocks.NewMockTokenIssuer(t),
			expectError: "password hasher is required",
		},
		{
			name:        "nil token issuer",
			users:       mocks.NewMockUserRepository(t),
			hasher:      mocks.NewMockPasswordHasher(t),
			tokens:      nil,
			expectError: "token issuer is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewService(tt.users, tt.hasher, tt.tokens)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestNewServiceWithLogger_NilLogger(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	tokens := mocks.NewMockTokenIssuer(t)

	svc, err := auth.NewServiceWithLogger(users, hasher, tokens, nil)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "logger")
}

func TestNewService_DecoyHashFailure(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	tokens := mocks.NewMockTokenIssuer(t)

	hasher.On("Hash", mock.AnythingOfType("string")).Return("", errors.New("argon2 unavailable")).Once()

	svc, err := auth.NewService(users, hasher, tokens)
	require.Error(t, err)
	assert.Nil(t, svc)
	errutil.AssertErrorCode(t, err, "AUTH_SERVICE_CONFIG")
}

func TestService_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("successful sign-up stores hashed password", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		hasher.On("Hash", "password123").Return("$argon2id$v=19$m=65536,t=1,p=4$salt$hash", nil)
		users.On("Create", ctx, mock.AnythingOfType("*auth.User")).Return(nil)

		user, err := svc.SignUp(ctx, "alice", "password123")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "$argon2id$v=19$m=65536,t=1,p=4$salt$hash", user.PasswordHash)
		assert.NotEqual(t, ulid.ULID{}, user.ID)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("taken username surfaces conflict code", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		hasher.On("Hash", "password123").Return("$argon2id$v=19$m=65536,t=1,p=4$salt$hash", nil)
		takenErr := takenUsernameError()
		users.On("Create", ctx, mock.AnythingOfType("*auth.User")).Return(takenErr)

		user, err := svc.SignUp(ctx, "alice", "password123")
		require.Error(t, err)
		assert.Nil(t, user)
		errutil.AssertErrorCode(t, err, "AUTH_USERNAME_TAKEN")
	})

	t.Run("invalid username rejected before hashing", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		user, err := svc.SignUp(ctx, "ab", "password123")
		require.Error(t, err)
		assert.Nil(t, user)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_USERNAME")
	})

	t.Run("invalid password rejected before hashing", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		user, err := svc.SignUp(ctx, "alice", "short")
		require.Error(t, err)
		assert.Nil(t, user)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
	})
}

func TestService_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("successful sign-in issues token", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		userID := ulid.Make()
		stored := &auth.User{
			ID:           userID,
			Username:     "alice",
			PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		}

		users.On("GetByUsername", ctx, "alice").Return(stored, nil)
		hasher.On("Verify", "password123", stored.PasswordHash).Return(true, nil)
		hasher.On("NeedsUpgrade", stored.PasswordHash).Return(false)
		tokens.On("Issue", userID, "alice").Return("signed.token.value", nil)

		user, token, err := svc.SignIn(ctx, "alice", "password123")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "signed.token.value", token)
	})

	t.Run("unknown user verifies against the constructed decoy hash", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		users.On("GetByUsername", ctx, "ghost").Return(nil, auth.ErrNotFound)
		// Verification still runs, against the hash the configured hasher
		// produced at construction, so response time stays flat at the
		// configured cost.
		hasher.On("Verify", "password123", decoyHashValue).Return(false, nil)

		user, token, err := svc.SignIn(ctx, "ghost", "password123")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.Empty(t, token)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		userID := ulid.Make()
		stored := &auth.User{
			ID:           userID,
			Username:     "alice",
			PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		}

		// Unknown username path.
		usersA := mocks.NewMockUserRepository(t)
		hasherA := mocks.NewMockPasswordHasher(t)
		tokensA := mocks.NewMockTokenIssuer(t)
		svcA := newService(t, usersA, hasherA, tokensA)
		usersA.On("GetByUsername", ctx, "ghost").Return(nil, auth.ErrNotFound)
		hasherA.On("Verify", "hunter22", decoyHashValue).Return(false, nil)
		_, _, errUnknown := svcA.SignIn(ctx, "ghost", "hunter22")

		// Wrong password path.
		usersB := mocks.NewMockUserRepository(t)
		hasherB := mocks.NewMockPasswordHasher(t)
		tokensB := mocks.NewMockTokenIssuer(t)
		svcB := newService(t, usersB, hasherB, tokensB)
		usersB.On("GetByUsername", ctx, "alice").Return(stored, nil)
		hasherB.On("Verify", "hunter22", stored.PasswordHash).Return(false, nil)
		_, _, errWrongPass := svcB.SignIn(ctx, "alice", "hunter22")

		require.Error(t, errUnknown)
		require.Error(t, errWrongPass)
		assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
		errutil.AssertErrorCode(t, errUnknown, "AUTH_INVALID_CREDENTIALS")
		errutil.AssertErrorCode(t, errWrongPass, "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("stale hash is upgraded on successful sign-in", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		userID := ulid.Make()
		stored := &auth.User{
			ID:           userID,
			Username:     "alice",
			PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$old$old",
		}

		users.On("GetByUsername", ctx, "alice").Return(stored, nil)
		hasher.On("Verify", "password123", "$argon2id$v=19$m=65536,t=1,p=4$old$old").Return(true, nil)
		hasher.On("NeedsUpgrade", "$argon2id$v=19$m=65536,t=1,p=4$old$old").Return(true)
		hasher.On("Hash", "password123").Return("$argon2id$v=19$m=65536,t=3,p=4$new$new", nil)
		users.On("UpdatePassword", ctx, userID, "$argon2id$v=19$m=65536,t=3,p=4$new$new").Return(nil)
		tokens.On("Issue", userID, "alice").Return("signed.token.value", nil)

		user, token, err := svc.SignIn(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.Equal(t, "$argon2id$v=19$m=65536,t=3,p=4$new$new", user.PasswordHash)
		assert.NotEmpty(t, token)
	})

	t.Run("rehash failure does not block sign-in", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		userID := ulid.Make()
		stored := &auth.User{
			ID:           userID,
			Username:     "alice",
			PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$old$old",
		}

		users.On("GetByUsername", ctx, "alice").Return(stored, nil)
		hasher.On("Verify", "password123", stored.PasswordHash).Return(true, nil)
		hasher.On("NeedsUpgrade", stored.PasswordHash).Return(true)
		hasher.On("Hash", "password123").Return("", errors.New("out of entropy"))
		tokens.On("Issue", userID, "alice").Return("signed.token.value", nil)

		_, token, err := svc.SignIn(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.Equal(t, "signed.token.value", token)
	})

	t.Run("repository failure is not credential failure", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		users.On("GetByUsername", ctx, "alice").Return(nil, errors.New("connection refused"))

		user, token, err := svc.SignIn(ctx, "alice", "password123")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.Empty(t, token)
		errutil.AssertErrorCode(t, err, "AUTH_SIGNIN_FAILED")
	})
}

func TestService_ResolveToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token resolves to stored user", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		userID := ulid.Make()
		claims := claimsFor(userID, "alice")
		stored := &auth.User{ID: userID, Username: "alice"}

		tokens.On("Verify", "good.token").Return(claims, nil)
		users.On("GetByID", ctx, userID).Return(stored, nil)

		user, err := svc.ResolveToken(ctx, "good.token")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("verification failure propagates", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		tokens.On("Verify", "expired.token").Return(nil, expiredTokenError())

		user, err := svc.ResolveToken(ctx, "expired.token")
		require.Error(t, err)
		assert.Nil(t, user)
		errutil.AssertErrorCode(t, err, "AUTH_TOKEN_EXPIRED")
	})

	t.Run("valid token for deleted account", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		userID := ulid.Make()
		tokens.On("Verify", "orphan.token").Return(claimsFor(userID, "gone"), nil)
		users.On("GetByID", ctx, userID).Return(nil, auth.ErrNotFound)

		user, err := svc.ResolveToken(ctx, "orphan.token")
		require.Error(t, err)
		assert.Nil(t, user)
		errutil.AssertErrorCode(t, err, "AUTH_SUBJECT_GONE")
	})

	t.Run("garbage subject in claims", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		claims := &auth.Claims{}
		claims.Subject = "not-a-ulid"
		tokens.On("Verify", "odd.token").Return(claims, nil)

		user, err := svc.ResolveToken(ctx, "odd.token")
		require.Error(t, err)
		assert.Nil(t, user)
		errutil.AssertErrorCode(t, err, "AUTH_TOKEN_MALFORMED")
	})
}

func TestService_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing account", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		userID := ulid.Make()
		users.On("Delete", ctx, userID).Return(nil)

		require.NoError(t, svc.DeleteAccount(ctx, userID))
	})

	t.Run("missing account reports not found", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenIssuer(t)
		svc := newService(t, users, hasher, tokens)

		userID := ulid.Make()
		users.On("Delete", ctx, userID).Return(auth.ErrNotFound)

		err := svc.DeleteAccount(ctx, userID)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_USER_NOT_FOUND")
	})
}

func claimsFor(userID ulid.ULID, username string) *auth.Claims {
	claims := &auth.Claims{Username: username}
	claims.Subject = userID.String()
	return claims
}

func takenUsernameError() error {
	return oops.Code("AUTH_USERNAME_TAKEN").Errorf("username is already taken")
}

func expiredTokenError() error {
	return oops.Code("AUTH_TOKEN_EXPIRED").Errorf("token is expired")
}
