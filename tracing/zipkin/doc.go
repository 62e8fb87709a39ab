// Package zipkin provides Zipkin client spans for transports and B3
// propagation for the HTTP transport.
package zipkin
