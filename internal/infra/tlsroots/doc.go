// Package tlsroots builds the trust roots used by the FleetDesk HTTP client.
//
// The pool starts from the system certificates and can be extended with a
// PEM bundle, typically an internal CA configured through client.ca_file.
package tlsroots
