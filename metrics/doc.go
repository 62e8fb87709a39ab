// Package metrics provides the instrumentation interfaces used by the
// client. All metrics are safe for concurrent use.
//
// Dimensionality is established with With, which takes alternating label
// keys and values. Backends drop keys they were not constructed with.
package metrics
