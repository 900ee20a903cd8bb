// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package auth provides authentication primitives for TaskHive.
//
// # Domain Types
//
// User is the account record. Create one through Service.SignUp so the
// username and password rules are enforced and the password is hashed;
// direct struct initialization bypasses validation.
//
// # Services
//
// Service coordinates credential verification and token issuance. It is
// built from three collaborators:
//   - UserRepository - account persistence
//   - PasswordHasher - one-way hashing and verification
//   - TokenIssuer - signed, time-limited bearer tokens
//
// Sign-in failures for an unknown username and for a wrong password are
// indistinguishable to callers: same error code, same message, and the
// password hash is verified either way so response timing matches.
package auth
