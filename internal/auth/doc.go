// Package auth implements the credential primitives behind the session flow:
// bcrypt password hashing, HS256 session tokens, and the session cookie.
//
// Tokens carry the account id as the subject and the account kind as the
// role claim. They expire together with the cookie that carries them; there
// is no server-side revocation, logging out only clears the cookie.
package auth
