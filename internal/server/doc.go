// Package server exposes the rating workflow over HTTP.
//
// Routes are registered on a stdlib ServeMux. Every request receives a
// correlation id (X-Request-ID or a fresh UUID) that flows into logs, and
// every route is counted in a private Prometheus registry served at /metrics.
// Run holds an advisory lock next to the data file so two servers never share
// one store by accident; it does not serialize requests within a process.
package server
