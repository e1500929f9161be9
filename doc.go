// Package auth implements the authentication and authorization core for the
// gigline platform: credential verification, HMAC-signed bearer tokens, and a
// server-side allow-list that makes the stateless tokens revocable.
//
// Tokens:
//   - TokenService signs a minimal claim set (subject, role, login identifier)
//     with HS256. Tokens carry no expiry of their own; lifetime is tracked in
//     the access_tokens allow-list with a sliding window, so a token is only
//     honored while its server-side entry is unexpired.
//   - Each principal has at most one active token. Logging in again replaces
//     the previous allow-list entry, and logout expires it in place.
//
// Strategies:
//   - PasswordStrategy resolves a login identifier (uuid, email, or phone
//     number) against the Users repository, enforces the attempt cool-down,
//     and compares the bcrypt hash.
//   - BearerStrategy verifies the token signature, checks the allow-list, and
//     slides the expiry window forward in the background.
//
// Gate:
//   - Authorize is the plain decision function; Gate wraps it into fiber
//     middleware for header-based (Authorized), cookie-based (Authenticated),
//     and role-restricted (Permissed) routes.
package auth
