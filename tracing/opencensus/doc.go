// Package opencensus provides OpenCensus client spans for transports and B3
// propagation for the HTTP transport.
package opencensus
