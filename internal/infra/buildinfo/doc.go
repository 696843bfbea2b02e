// Package buildinfo exposes build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/fleetdesk/fleetdesk-go/internal/infra/buildinfo.Version=v1.2.0"
//
// The version is also used to build the User-Agent sent by the API client.
package buildinfo
