// Package server is the composition root of the gateway: it builds the
// breakers, upstream clients, domain facade and transport from a Config and
// runs the HTTP server.
package server
