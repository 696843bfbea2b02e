// Package lookup caches the route tree (routes and their sub-routes).
//
// Lookups are served from memory first, then from the local store while
// the stored copy is younger than one minute, and only then from the API.
package lookup
