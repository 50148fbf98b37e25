/*
Package auth implements the identity session flow for the messleave app.

A client signs in with Google on-device and posts the resulting ID token.
[GoogleVerifier] checks that assertion against Google's signing keys and our
OAuth client id, [Flow] provisions or refreshes the local user record through
a [UserStore], and [Codec] mints the short-lived bearer token every later
request authenticates with.

The session model is stateless: the server keeps no session records and
[Codec.Verify] decides validity from signature and expiry alone. Logout is a
client-side token discard; there is no server-side revocation.
*/
package auth
