// Package classify reduces whatever a transport returned into an outcome.
//
// Response handles a success response: the body is narrowed to the
// decoder's raw shape and then decoded. Exception handles a transport
// error: its category picks the defect variant, and a bad status gets its
// error body narrowed and decoded in turn. Neither function panics; every
// path ends in a value or a defect.
package classify
