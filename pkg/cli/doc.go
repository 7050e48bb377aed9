// Package cli provides the command-line interface for mockie.
//
// Commands:
//   - serve: run the mock server in the foreground
//   - add: register or replace a route on a running server
//   - list: show the routes of a running server
//   - save: write the server's routes file now
//   - shutdown: stop a running server gracefully
//   - version: show build information
//
// Every command except serve and version talks to a server through the admin
// API (see AdminClient). The server address comes from --server, MOCKIE_SERVER,
// the config file, or defaults to http://localhost:<port>.
package cli
