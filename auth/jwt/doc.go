// Package jwt signs JSON Web Tokens for outgoing requests.
//
// A Signer mints a fresh token per request. Its Middleware puts the token in
// the request context, and ContextToHTTP copies it into the Authorization
// header of the HTTP request.
package jwt
