// Package confloader layers configuration sources with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (FLEETDESK_SECTION_KEY)
//  3. YAML configuration file
//  4. Defaults
//
// Watcher reports changes to the configuration file so long-running
// sessions can reload it.
package confloader
