// Package handlers implements the HTTP endpoints of the deploy trigger:
// deployment, history, health.
package handlers
