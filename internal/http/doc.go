// Package http provides HTTP handlers and middleware for the PlanTogether API.
//
// The router exposes the following endpoints:
//   - POST /users/register: creates an account. Body: {"name","surname","email","password"}.
//   - POST /users/login: issues a session token. Body: {"email","password"}. Response:
//     {"token","expires_at","user"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /users/logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 and clears the cookie.
//   - GET /users/me, PUT /users/me: profile endpoints for the authenticated user.
//   - GET /events, POST /events: lists the caller's events and creates new ones.
//   - GET /events/{id}, PUT /events/{id}, DELETE /events/{id}: single event access;
//     mutations are restricted to the creator. Reads are open to any authenticated
//     user so shared join links resolve.
//   - POST /events/{id}/join, /leave, /kick: membership operations. Kick takes
//     {"user_id"} and is creator only.
//   - PUT /events/{id}/availability, DELETE /events/{id}/availability: stores or
//     clears the caller's weekly declaration. The payload maps lowercase day names
//     to {"all_free"|"all_busy"|"from"+"to"} entries; submitting as a non-participant
//     joins the event implicitly.
//   - GET /events/{id}/best-time: the aggregated meeting proposal.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth. User facing messages are Polish.
package http
