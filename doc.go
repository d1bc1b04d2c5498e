// Package authpad provides an embeddable account-credential and session-token
// engine: password login with progressive account lockout, signed access and
// refresh tokens, and an OTP-based email verification flow.
//
// The package is the public surface. It exposes [Engine], [Builder], [Config],
// the [Store] persistence interface, and typed sentinel errors. Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authpad owns decision logic only. Persistence (user and OTP token rows),
// mail delivery, and HTTP routing are external collaborators reached through
// the [Store], [mail.Sender], and [Revoker] interfaces; the engine returns
// typed outcomes, never protocol status codes. Reference implementations live
// under store/, mail/, and revoke/.
//
// # What this package must NOT do
//
//   - Log or return plaintext passwords, OTP codes, or stored hashes.
//   - Keep in-process caches of credentials or OTP state; every check re-reads
//     authoritative storage.
//   - Retry on its own; retries are always caller-initiated.
package authpad
