package opencensus_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/plugin/ochttp/propagation/b3"
	"go.opencensus.io/trace"

	"github.com/go-kit/outcome/tracing/opencensus"
	"github.com/go-kit/outcome/transport"
)

type recordingExporter struct {
	mtx  sync.Mutex
	data []*trace.SpanData
}

func (e *recordingExporter) ExportSpan(s *trace.SpanData) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.data = append(e.data, s)
}

func (e *recordingExporter) Flush() []*trace.SpanData {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	d := e.data
	e.data = nil
	return d
}

func newExporter(t *testing.T) *recordingExporter {
	e := &recordingExporter{}
	trace.RegisterExporter(e)
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	t.Cleanup(func() { trace.UnregisterExporter(e) })
	return e
}

func TestTraceClient(t *testing.T) {
	e := newExporter(t)

	ok := transport.DoerFunc(func(context.Context, transport.Request) (transport.Response, error) {
		return transport.Response{StatusCode: http.StatusOK}, nil
	})
	if _, err := opencensus.TraceClient("")(ok).Do(context.Background(), transport.Request{Method: "GET", Path: "/users"}); err != nil {
		t.Fatal(err)
	}

	spans := e.Flush()
	if want, have := 1, len(spans); want != have {
		t.Fatalf("want %d spans, have %d", want, have)
	}
	span := spans[0]
	if want, have := opencensus.TraceClientDefaultName, span.Name; want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	if want, have := trace.SpanKindClient, span.SpanKind; want != have {
		t.Errorf("want %d, have %d", want, have)
	}
	if want, have := "GET", span.Attributes[ochttp.MethodAttribute]; want != have {
		t.Errorf("want %v, have %v", want, have)
	}
	if want, have := int32(trace.StatusCodeOK), span.Status.Code; want != have {
		t.Errorf("want %d, have %d", want, have)
	}
}

func TestTraceClientError(t *testing.T) {
	e := newExporter(t)

	for _, testcase := range []struct {
		err  error
		code int32
	}{
		{transport.NewStatusError(http.StatusNotFound, nil, nil), trace.StatusCodeNotFound},
		{&transport.Error{Category: transport.ConnectionError, Err: errors.New("refused")}, trace.StatusCodeUnknown},
	} {
		failing := transport.DoerFunc(func(context.Context, transport.Request) (transport.Response, error) {
			return transport.Response{}, testcase.err
		})
		opencensus.TraceClient("users", trace.StringAttribute("peer.service", "users"))(failing).Do(context.Background(), transport.Request{Method: "GET", Path: "/"})

		span := e.Flush()[0]
		if want, have := testcase.code, span.Status.Code; want != have {
			t.Errorf("%v: want status %d, have %d", testcase.err, want, have)
		}
		if want, have := "users", span.Attributes["peer.service"]; want != have {
			t.Errorf("want %v, have %v", want, have)
		}
	}
}

func TestContextToHTTP(t *testing.T) {
	ctx, span := trace.StartSpan(context.Background(), "test", trace.WithSampler(trace.AlwaysSample()))
	defer span.End()

	req, _ := http.NewRequest("GET", "http://test.biz/url", nil)
	opencensus.ContextToHTTP(nil)(ctx, req)

	sc, ok := (&b3.HTTPFormat{}).SpanContextFromRequest(req)
	if !ok {
		t.Fatalf("no span context in %v", req.Header)
	}
	if want, have := span.SpanContext().TraceID, sc.TraceID; want != have {
		t.Errorf("want %v, have %v", want, have)
	}
}
