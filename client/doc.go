// Package client runs requests through a transport and classifies what
// comes back.
//
// Every call returns a result.Result[*defect.Defect[E], V]: either the
// success body decoded into V, or a defect describing what went wrong. The
// caller states both decodings up front, one for success bodies and one for
// server error bodies:
//
//	c := client.New(httptransport.NewClient(base))
//	r := client.Get(ctx, c, "/users/1", codec.Struct[User](), codec.Struct[APIError]())
//	user, ok := r.Right()
//
// Nothing a transport does escapes as a panic or a bare error.
package client
