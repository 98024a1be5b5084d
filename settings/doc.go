// Package settings provides read-only key/value views over application settings loaded
// from maps, YAML files, environment variables and .env files, plus a live view that
// reloads a file when it changes on disk.
//
// Every view implements Lookup(key) (value, ok), the interface goForms consumes.
package settings
