// Package account manages the lifecycle of a user account: creation,
// email/token confirmation, credential verification, session-status
// transitions, deactivation and revival, password reset, passport lists and
// time-based purge of stale accounts. It sits above a generic persistence
// layer (Bun repositories) and below a thin transport adapter.
//
// Account lifecycle:
//   - Accounts carry an AccountStatus field that is persisted via Bun.
//     Statuses cover confirm, off, on, out, revive, and block flows; block is
//     terminal and only reachable through external administrative action.
//   - StateMachine centralizes the transition graph, hooks, and persistence.
//     Lifecycle wraps it with the operation-level contract (signup, confirm,
//     login, logout, signout, revive, password reset, passports, purge) and
//     serializes mutations per account id.
//
// Secrets:
//   - Passwords are only ever stored as bcrypt digests with a configurable
//     work factor. Confirmation/reset tokens are opaque hex strings minted
//     from crypto/rand and compared in constant time.
//   - Every value crossing the package boundary is a Badge, a projection that
//     never carries the digest, the staged password, or the token.
//
// Activity sinks and notifiers:
//   - ActivitySink is a light-weight audit emitter describing lifecycle,
//     login, password reset and purge events. Sinks run best-effort (errors
//     are logged) so you can forward to a database or queue without blocking
//     the operation.
//   - Notifier delivers CONFIRM/REVIVE/RESETPASSWORD messages after a
//     committed transition; a failed delivery never rolls the transition
//     back.
//
// Wiring:
//   - NewRepositoryManager(db) builds the bun-backed Accounts repository and
//     New(manager.Accounts()) builds the Lifecycle on top of it. Alternative
//     stores only need the narrow AccountStore interface.
package account
