// Package config provides the fleetdesk-cli configuration.
//
// Sources are merged in increasing priority:
//
//   - built-in defaults (Default)
//   - ~/.fleetdesk/config.yaml
//   - FLEETDESK_* environment variables (FLEETDESK_API_BASE_URL -> api.base_url)
//   - command-line flags, passed to Load as overrides
package config
