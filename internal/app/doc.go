// Package app sequences the server bootstrap.
//
// Bootstrap loads configuration, initialises logging and builds the HTTP
// server with its cookie, validation and CORS pipeline. Run binds the port and
// serves until the context is cancelled. Nothing is bound before every setup
// step has succeeded.
package app
