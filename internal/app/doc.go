// Package app wires configuration, logging, the KPI pipeline handlers
// and the HTTP server into a runnable application with graceful
// shutdown.
package app
