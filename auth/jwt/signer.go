package jwt

import (
	"context"
	"errors"
	"net/http"
	"time"

	stdjwt "github.com/dgrijalva/jwt-go"

	"github.com/go-kit/outcome/transport"
	httptransport "github.com/go-kit/outcome/transport/http"
)

type contextKey int

const tokenContextKey contextKey = iota

var (
	// ErrKIDNotFound is returned when the signer's key ID is missing from
	// its key set.
	ErrKIDNotFound = errors.New("key ID was not found in key set")

	// ErrUnknownMethod is returned by MethodByName for an unregistered
	// signing method.
	ErrUnknownMethod = errors.New("unknown signing method")
)

// Claims are the claims put in every token.
type Claims map[string]interface{}

// Key is one signing key and the method it signs with.
type Key struct {
	Method stdjwt.SigningMethod
	Key    interface{}
}

// KeySet maps key IDs to keys.
type KeySet map[string]Key

// MethodByName returns a registered signing method such as "HS256".
func MethodByName(name string) (stdjwt.SigningMethod, error) {
	m := stdjwt.GetSigningMethod(name)
	if m == nil {
		return nil, ErrUnknownMethod
	}
	return m, nil
}

// Signer mints signed tokens.
type Signer struct {
	kid    string
	keys   KeySet
	claims Claims
	ttl    time.Duration
	now    func() time.Time
}

// SignerOption sets an optional parameter for signers.
type SignerOption func(*Signer)

// WithTTL stamps iat and exp claims on every token, exp being ttl after
// issue.
func WithTTL(ttl time.Duration) SignerOption {
	return func(s *Signer) { s.ttl = ttl }
}

// WithClock sets the time source used for iat and exp.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) { s.now = now }
}

// NewSigner returns a Signer using the key kid from keys. The key is looked
// up on every Sign, so a missing key surfaces as ErrKIDNotFound per request.
func NewSigner(kid string, keys KeySet, claims Claims, options ...SignerOption) *Signer {
	s := &Signer{kid: kid, keys: keys, claims: claims, now: time.Now}
	for _, option := range options {
		option(s)
	}
	return s
}

// Sign returns a new signed token.
func (s *Signer) Sign() (string, error) {
	key, ok := s.keys[s.kid]
	if !ok {
		return "", ErrKIDNotFound
	}
	claims := make(stdjwt.MapClaims, len(s.claims)+2)
	for k, v := range s.claims {
		claims[k] = v
	}
	if s.ttl > 0 {
		now := s.now()
		claims["iat"] = now.Unix()
		claims["exp"] = now.Add(s.ttl).Unix()
	}
	token := stdjwt.NewWithClaims(key.Method, claims)
	if s.kid != "" {
		token.Header["kid"] = s.kid
	}
	return token.SignedString(key.Key)
}

// Middleware signs a token for every request and stores it in the request
// context. A signing failure fails the call with an Unknown transport error
// and the request is never sent.
func (s *Signer) Middleware() transport.Middleware {
	return func(next transport.Doer) transport.Doer {
		return transport.DoerFunc(func(ctx context.Context, req transport.Request) (transport.Response, error) {
			token, err := s.Sign()
			if err != nil {
				return transport.Response{}, &transport.Error{
					Category: transport.Unknown,
					Domain:   transport.DomainNewRequest,
					Err:      err,
				}
			}
			return next.Do(NewContext(ctx, token), req)
		})
	}
}

// NewContext returns a copy of ctx carrying token.
func NewContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// FromContext returns the token stored in ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}

// ContextToHTTP moves a token from the context into the Authorization
// header. Requests without a token are left alone.
func ContextToHTTP() httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		if token, ok := FromContext(ctx); ok {
			r.Header.Set("Authorization", generateAuthHeaderFromToken(token))
		}
		return ctx
	}
}

func generateAuthHeaderFromToken(token string) string {
	return "Bearer " + token
}
