// Package credential holds the session token.
//
// The token is opaque to the client: it is stored on login, attached to
// every request and forgotten on logout or when the server answers 401.
// At rest it is sealed with ChaCha20-Poly1305 under a key derived from a
// per-installation secret, so copying the store directory alone does not
// leak a usable session.
package credential
