/*
Package authapi serves the JSON endpoints for Google sign-in.

A client posts a Google ID token to /api/auth/google and receives a bearer
token plus its user record. Subsequent requests present that bearer token in
the Authorization header; /api/auth/user/me echoes back the current record.
Logout is a client-side affair, the endpoint only acknowledges it.
*/
package authapi
