// Package auth provides the trust infrastructure for the contactdeck API:
// credential verification, purpose-scoped JWT issuance and validation, and
// role-gated access for route handlers.
//
// Tokens:
//   - Every JWT carries a purpose claim (access, email_verify, or
//     password_reset) and is rejected when presented to an endpoint that
//     expects a different purpose. Validation failures are collapsed to a
//     single unauthorized error at the HTTP boundary so callers cannot probe
//     which check failed.
//   - There is no revocation list. Email-verification and password-reset
//     tokens become inert through user-row state: flipping the verified flag
//     or overwriting the password hash.
//
// Stores and collaborators:
//   - Users and contacts are persisted via Bun repositories. The Mailer and
//     cache.UserCache collaborators are optional; flows degrade to no-ops
//     when they are absent.
package auth
