// Package output renders command results for the terminal.
//
// Results are written as a table (default), JSON or YAML. Values that know
// how to lay themselves out as rows implement Tabular; anything else falls
// back to JSON in table mode. The package also holds the display helpers
// shared by commands: status badges, date and time trimming, route labels,
// a spinner and a download progress bar.
package output
