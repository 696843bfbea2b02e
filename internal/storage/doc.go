// Package storage provides the durable key/value store used by the client.
//
// Two values live here: the session token and the cached route tree. The
// CLI uses a Badger database under the storage directory; tests and
// one-shot invocations without a writable home use the in-memory store.
package storage
