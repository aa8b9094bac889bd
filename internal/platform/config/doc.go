// Package config provides environment-based configuration.
//
// DevMode decides whether the .env file is used: NODE_ENV from the process
// environment wins, and only when it is unset is the file's own NODE_ENV
// consulted. In development mode the .env file is merged into the process environment
// (godotenv, never overriding variables that are already set). Outside
// development the file is not opened at all. Ambient settings are mapped with
// go-simpler.org/env struct tags; the required startup keys are resolved
// strictly through Store.Require and abort loading when unset.
package config
