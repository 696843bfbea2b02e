// Package metric provides Prometheus metrics for fleetdesk-cli.
//
// The client records outgoing API calls, route tree cache behaviour and
// local store size. A short-lived CLI has no scrape endpoint, so the
// registry can be written to a node_exporter textfile on exit.
package metric
