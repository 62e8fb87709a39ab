// Package transport defines the boundary between the classification core
// and whatever actually moves bytes over the network.
//
// A Doer executes a Request and either returns a Response with a success
// status, or fails with an error. Errors that the transport understands are
// reported as *Error with a Category; the core turns categories into
// defects. Package transport/http provides a net/http implementation.
package transport
