// Package connection is the authenticated API client for fleetdesk-cli.
//
// Every call goes through Client, which attaches the session token, turns
// transport failures, expired sessions and non-2xx answers into a
// *ClientError, and hands successful bodies back as a *Body:
//
//   - http.go: JSON requests and response normalisation
//   - upload.go: multipart uploads
//   - download.go: authenticated PDF download to disk
//   - session.go, admin.go: typed operations on top of Request
//   - capability.go: navigation, notification and file saving hooks
package connection
