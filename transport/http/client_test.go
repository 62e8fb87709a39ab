package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/go-kit/outcome/transport"
	httptransport "github.com/go-kit/outcome/transport/http"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":`+mux.Vars(r)["id"]+`,"name":"ada"}`)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content_type": r.Header.Get("Content-Type"),
			"accept":       r.Header.Get("Accept"),
			"query":        r.URL.RawQuery,
			"body":         string(body),
			"x_token":      r.Header.Get("X-Token"),
		})
	}).Methods(http.MethodPost, http.MethodPut)
	r.HandleFunc("/api/text", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, `{"looks":"like json"}`)
	})
	r.HandleFunc("/api/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.HandleFunc("/api/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"not_found"}`)
	})
	r.HandleFunc("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `<html>bad gateway</html>`)
	})
	r.HandleFunc("/api/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func mustParse(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func TestClientDecodesJSON(t *testing.T) {
	ts := newServer(t)
	c := httptransport.NewClient(mustParse(ts.URL+"/api"), httptransport.SetClient(ts.Client()))

	resp, err := c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "/users/7"})
	if err != nil {
		t.Fatal(err)
	}
	if want, have := http.StatusOK, resp.StatusCode; want != have {
		t.Errorf("want %d, have %d", want, have)
	}
	want := map[string]interface{}{"id": 7.0, "name": "ada"}
	if !reflect.DeepEqual(want, resp.Body) {
		t.Errorf("want %v, have %#v", want, resp.Body)
	}
}

func TestClientTextAndEmptyBodies(t *testing.T) {
	ts := newServer(t)
	c := httptransport.NewClient(mustParse(ts.URL+"/api/"), httptransport.SetClient(ts.Client()))

	resp, err := c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "text"})
	if err != nil {
		t.Fatal(err)
	}
	if want, have := `{"looks":"like json"}`, resp.Body; want != have {
		t.Errorf("want text body %q, have %#v", want, have)
	}

	resp, err = c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "empty"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Body != nil {
		t.Errorf("want nil body, have %#v", resp.Body)
	}
}

func TestClientEncodesPayload(t *testing.T) {
	ts := newServer(t)
	c := httptransport.NewClient(
		mustParse(ts.URL),
		httptransport.SetClient(ts.Client()),
		httptransport.SetClientBefore(httptransport.SetRequestHeader("X-Token", "abcde")),
	)

	resp, err := c.Do(context.Background(), transport.Request{
		Method:  http.MethodPost,
		Path:    "/api/echo",
		Payload: map[string]interface{}{"a": 1},
		Query:   url.Values{"page": {"2"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	echo := resp.Body.(map[string]interface{})
	for k, want := range map[string]string{
		"content_type": "application/json; charset=utf-8",
		"accept":       "application/json",
		"query":        "page=2",
		"body":         `{"a":1}`,
		"x_token":      "abcde",
	} {
		if have := echo[k]; want != have {
			t.Errorf("%s: want %q, have %q", k, want, have)
		}
	}
}

func TestClientEncodesFormData(t *testing.T) {
	ts := newServer(t)
	c := httptransport.NewClient(mustParse(ts.URL), httptransport.SetClient(ts.Client()))

	resp, err := c.Do(context.Background(), transport.Request{
		Method:  http.MethodPut,
		Path:    "/api/echo",
		Payload: transport.NewFormData().Add("k", "v"),
	})
	if err != nil {
		t.Fatal(err)
	}
	ct := resp.Body.(map[string]interface{})["content_type"].(string)
	if len(ct) < len("multipart/form-data") || ct[:len("multipart/form-data")] != "multipart/form-data" {
		t.Errorf("want multipart content type, have %q", ct)
	}
}

func TestClientBadStatus(t *testing.T) {
	ts := newServer(t)
	c := httptransport.NewClient(mustParse(ts.URL), httptransport.SetClient(ts.Client()))

	_, err := c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "/api/missing"})
	var te *transport.Error
	if !errors.As(err, &te) {
		t.Fatalf("want *transport.Error, have %v", err)
	}
	if te.Category != transport.BadResponse || te.StatusCode != http.StatusNotFound {
		t.Errorf("want bad_response 404, have %s %d", te.Category, te.StatusCode)
	}
	if want := map[string]interface{}{"code": "not_found"}; !reflect.DeepEqual(want, te.Body) {
		t.Errorf("want %v, have %#v", want, te.Body)
	}

	// A JSON content type with a non-JSON body is kept as text.
	_, err = c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "/api/broken"})
	if !errors.As(err, &te) {
		t.Fatalf("want *transport.Error, have %v", err)
	}
	if want, have := "<html>bad gateway</html>", te.Body; want != have {
		t.Errorf("want %q, have %#v", want, have)
	}
}

func TestClientConnectionError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	c := httptransport.NewClient(mustParse(addr))
	_, err := c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "/"})
	var te *transport.Error
	if !errors.As(err, &te) {
		t.Fatalf("want *transport.Error, have %v", err)
	}
	if want, have := transport.ConnectionError, te.Category; want != have {
		t.Errorf("want %s, have %s (%v)", want, have, err)
	}
}

func TestClientTimeout(t *testing.T) {
	ts := newServer(t)
	hc := ts.Client()
	hc.Timeout = 50 * time.Millisecond
	c := httptransport.NewClient(mustParse(ts.URL), httptransport.SetClient(hc))

	_, err := c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "/api/slow"})
	var te *transport.Error
	if !errors.As(err, &te) {
		t.Fatalf("want *transport.Error, have %v", err)
	}
	if want, have := transport.ReceiveTimeout, te.Category; want != have {
		t.Errorf("want %s, have %s (%v)", want, have, err)
	}
}

func TestClientCancel(t *testing.T) {
	ts := newServer(t)
	c := httptransport.NewClient(mustParse(ts.URL), httptransport.SetClient(ts.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/api/slow"})
	var te *transport.Error
	if !errors.As(err, &te) {
		t.Fatalf("want *transport.Error, have %v", err)
	}
	if want, have := transport.Cancel, te.Category; want != have {
		t.Errorf("want %s, have %s (%v)", want, have, err)
	}
}

func TestClientBadCertificate(t *testing.T) {
	ts := httptest.NewTLSServer(http.NotFoundHandler())
	defer ts.Close()

	// http.DefaultClient does not trust the test server's certificate.
	c := httptransport.NewClient(mustParse(ts.URL))
	_, err := c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "/"})
	var te *transport.Error
	if !errors.As(err, &te) {
		t.Fatalf("want *transport.Error, have %v", err)
	}
	if want, have := transport.BadCertificate, te.Category; want != have {
		t.Errorf("want %s, have %s (%v)", want, have, err)
	}
}

func TestClientEncodeError(t *testing.T) {
	var handled []error
	c := httptransport.NewClient(mustParse("http://localhost"),
		httptransport.SetClientErrorHandler(transport.ErrorHandlerFunc(func(_ context.Context, err error) {
			handled = append(handled, err)
		})),
	)
	_, err := c.Do(context.Background(), transport.Request{
		Method:  http.MethodPost,
		Path:    "/",
		Payload: map[string]interface{}{"ch": make(chan int)},
	})
	var te *transport.Error
	if !errors.As(err, &te) || te.Domain != transport.DomainEncode {
		t.Fatalf("want encode error, have %v", err)
	}
	if want, have := 1, len(handled); want != have {
		t.Errorf("want %d handled errors, have %d", want, have)
	}
}

func TestDecodeBody(t *testing.T) {
	for _, testcase := range []struct {
		contentType string
		raw         string
		want        interface{}
	}{
		{"application/json", `[1,"a"]`, []interface{}{1.0, "a"}},
		{"application/problem+json; charset=utf-8", `{"a":true}`, map[string]interface{}{"a": true}},
		{"application/json", "  \n", nil},
		{"application/json", "null", nil},
		{"text/html", "<p>hi</p>", "<p>hi</p>"},
		{"", `{"a":1}`, `{"a":1}`},
	} {
		if have := httptransport.DecodeBody(testcase.contentType, []byte(testcase.raw)); !reflect.DeepEqual(testcase.want, have) {
			t.Errorf("%q %q: want %#v, have %#v", testcase.contentType, testcase.raw, testcase.want, have)
		}
	}
}

func TestClientMaxBodySize(t *testing.T) {
	ts := newServer(t)
	const body = `{"id":1,"name":"ada"}`

	c := httptransport.NewClient(mustParse(ts.URL+"/api"), httptransport.SetMaxBodySize(int64(len(body))))
	resp, err := c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "/users/1"})
	if err != nil {
		t.Fatalf("body at the limit: %v", err)
	}
	if want, have := (map[string]interface{}{"id": 1.0, "name": "ada"}), resp.Body; !reflect.DeepEqual(want, have) {
		t.Errorf("want %v, have %#v", want, have)
	}

	c = httptransport.NewClient(mustParse(ts.URL+"/api"), httptransport.SetMaxBodySize(8))
	_, err = c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "/users/1"})
	var te *transport.Error
	if !errors.As(err, &te) || te.Domain != transport.DomainDecode || te.Category != transport.Unknown {
		t.Fatalf("want an unknown decode error, have %v", err)
	}
	var tooLarge *httptransport.BodyTooLargeError
	if !errors.As(err, &tooLarge) || tooLarge.Limit != 8 {
		t.Errorf("want a BodyTooLargeError with limit 8, have %v", err)
	}
	if want, have := http.StatusOK, te.StatusCode; want != have {
		t.Errorf("want status %d, have %d", want, have)
	}
	if want, have := body[:8], te.Body; want != have {
		t.Errorf("want partial body %q, have %#v", want, have)
	}
}

func TestClientZeroMaxBodySizeUsesDefault(t *testing.T) {
	ts := newServer(t)
	c := httptransport.NewClient(mustParse(ts.URL+"/api"), httptransport.SetMaxBodySize(0))
	resp, err := c.Do(context.Background(), transport.Request{Method: http.MethodGet, Path: "/users/1"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Body == nil {
		t.Error("want the body decoded, have nil")
	}
}
