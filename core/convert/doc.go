// Package convert normalizes raw spreadsheet/CSV cell values into typed
// values. All functions are pure, never panic, and degrade unrecognized
// input to nil instead of raising.
package convert
