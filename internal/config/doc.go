// Package config builds the run configuration once at process start.
//
// Values come from an optional YAML file, the process environment and an optional .env file,
// in that order of increasing precedence for the environment. Store credentials are only ever
// read from the environment or the file; nothing is kept in package-level state.
package config
