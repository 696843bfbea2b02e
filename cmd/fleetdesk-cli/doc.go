// Package main provides the entry point for fleetdesk-cli.
//
// fleetdesk-cli is the terminal client for the FleetDesk vehicle request
// service. It signs in, browses the route tree, reviews HOD registrations,
// downloads reports and uploads attachments:
//
//	fleetdesk-cli login -u alice
//	fleetdesk-cli routes tree
//	fleetdesk-cli -o json routes subroutes 7
//	fleetdesk-cli report download /reports/daily?date=2024-03-01
//	fleetdesk-cli shell
//
// Settings come from ~/.fleetdesk/config.yaml, FLEETDESK_* environment
// variables and global flags, in increasing priority.
package main
