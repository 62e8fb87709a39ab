package circuitbreaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/outcome/transport"
)

// testFailingDoer drives breaker from healthy to open. A breaker that
// updates its statistics asynchronously gets up to settle for the circuit
// to open after the expected failures.
func testFailingDoer(t *testing.T, breaker transport.Middleware, primeWith int, shouldPass func(int) bool, openCircuitError error, settle time.Duration) {
	// Create a mock doer and wrap it with the breaker.
	m := &mock{}
	d := breaker(m)

	// Prime the doer with successful requests.
	for i := 0; i < primeWith; i++ {
		if _, err := d.Do(context.Background(), transport.Request{}); err != nil {
			t.Fatalf("during priming, got error: %v", err)
		}
	}

	// Switch the doer to start failing.
	m.err = &transport.Error{Category: transport.ConnectionError, Domain: transport.DomainDo, Err: errors.New("tragedy+disaster")}
	m.thru = 0

	// The first several should be allowed through and yield our error.
	for i := 0; shouldPass(i); i++ {
		if _, err := d.Do(context.Background(), transport.Request{}); err != m.err {
			t.Fatalf("want %v, have %v", m.err, err)
		}
	}

	for deadline := time.Now().Add(settle); time.Now().Before(deadline); time.Sleep(10 * time.Millisecond) {
		if _, err := d.Do(context.Background(), transport.Request{}); err != m.err {
			break
		}
	}
	thru := m.thru

	// But the rest should be blocked by an open circuit.
	for i := 0; i < 10; i++ {
		_, err := d.Do(context.Background(), transport.Request{})
		var te *transport.Error
		if !errors.As(err, &te) || te.Domain != transport.DomainBreaker || !errors.Is(err, openCircuitError) {
			t.Fatalf("want %v from the breaker, have %v", openCircuitError, err)
		}
	}

	// Make sure none of those got through.
	if want, have := thru, m.thru; want != have {
		t.Errorf("want %d, have %d", want, have)
	}
}
