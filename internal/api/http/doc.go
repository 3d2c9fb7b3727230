// Package http holds the gin handlers for the page server: the rendered
// page, its embedded assets, health, and markup inspection.
package http
