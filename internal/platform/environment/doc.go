// Package environment classifies the process as development or non-development.
//
// One function, Resolve, does the classification. The caller picks what an
// unset NODE_ENV means: Snapshot treats it as non-development, Require fails
// with a missing-configuration error. Lookups are plain functions so the process
// environment, a config.Store or an unmerged env file can all be classified.
package environment
