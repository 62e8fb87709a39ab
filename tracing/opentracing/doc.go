// Package opentracing provides OpenTracing client spans for transports and
// trace propagation for the HTTP transport.
package opentracing
