// Package circuitbreaker implements the circuit breaker pattern for
// transports.
//
// Circuit breakers prevent thundering herds, and improve resiliency against
// intermittent errors. Only failures that say something about the health of
// the remote service count against a breaker: a 4xx response is the
// caller's problem and passes through uncounted.
package circuitbreaker
