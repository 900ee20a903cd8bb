// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides authentication operations.
type Service struct {
	users     UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	logger    *slog.Logger
	decoyHash string
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) (*Service, error) {
	return NewServiceWithLogger(users, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}

	// The decoy hash is generated with the configured parameters so that
	// verifying an unknown username costs the same as verifying a wrong
	// password. Sign-in with the decoy password itself is still rejected
	// because the account does not exist.
	decoyHash, err := hasher.Hash(decoyPassword)
	if err != nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").
			With("operation", "hash decoy password").
			Wrap(err)
	}

	return &Service{users: users, hasher: hasher, tokens: tokens, logger: logger, decoyHash: decoyHash}, nil
}

// decoyPassword seeds the decoy hash. It is not a credential; no account can
// be signed in with it.
const decoyPassword = "taskhive-decoy-credential"

// invalidCredentials builds the single generic sign-in failure. Unknown
// username and wrong password are indistinguishable from the outside.
func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")
}

// SignUp registers a new account and returns it.
// Username uniqueness is enforced by the store's unique constraint, not by a
// lookup first, so concurrent sign-ups with the same username cannot race:
// exactly one insert wins and the rest fail with AUTH_USERNAME_TAKEN.
func (s *Service) SignUp(ctx context.Context, username, password string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// AUTH_USERNAME_TAKEN passes through untouched for the boundary to map.
		return nil, err
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID.String(), "username", user.Username)
	return user, nil
}

// SignIn authenticates a user and issues a bearer token.
// Uses constant-time operations to prevent timing-based username enumeration.
func (s *Service) SignIn(ctx context.Context, username, password string) (*User, string, error) {
	user, lookupErr := s.users.GetByUsername(ctx, username)

	// Determine which hash to verify against (real or decoy for timing attack prevention)
	var targetHash string
	var userExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Use the decoy hash - still perform verification to maintain constant time
			targetHash = s.decoyHash
			userExists = false
		} else {
			return nil, "", oops.Code("AUTH_SIGNIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	// Always verify password (constant-time operation for timing attack prevention)
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		// For decoy hash verification errors, just treat as invalid
		if !userExists {
			return nil, "", invalidCredentials()
		}
		return nil, "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	// If the user doesn't exist OR the password is wrong, return the same error.
	// The distinction is logged server-side only.
	if !userExists || !valid {
		s.logger.InfoContext(ctx, "sign-in rejected",
			"username", username,
			"user_exists", userExists,
		)
		return nil, "", invalidCredentials()
	}

	// Check if the stored hash should be rehashed at current parameters.
	// Ignore errors - sign-in succeeds regardless.
	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			if upErr := s.users.UpdatePassword(ctx, user.ID, newHash); upErr == nil {
				user.PasswordHash = newHash
			}
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user signed in", "user_id", user.ID.String(), "username", user.Username)
	return user, token, nil
}

// ResolveToken verifies a bearer token and loads the account it names.
// Any token failure or a missing account yields an error the HTTP boundary
// reports as a generic 401.
func (s *Service) ResolveToken(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	id, err := claims.SubjectID()
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Valid token for a deleted account.
			return nil, oops.Code("AUTH_SUBJECT_GONE").
				With("user_id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	return user, nil
}

// DeleteAccount removes a user account.
func (s *Service) DeleteAccount(ctx context.Context, id ulid.ULID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_USER_NOT_FOUND").
				With("user_id", id.String()).
				Wrap(err)
		}
		return oops.Code("AUTH_DELETE_FAILED").
			With("operation", "delete user").
			With("user_id", id.String()).
			Wrap(err)
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", id.String())
	return nil
}
