package defect_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-kit/outcome/defect"
	"github.com/go-kit/outcome/diag"
	"github.com/go-kit/outcome/result"
)

type apiError struct {
	Code    string
	Message string
}

func TestConstructorsSetKind(t *testing.T) {
	c := diag.New(io.EOF)
	for _, testcase := range []struct {
		d    *defect.Defect[apiError]
		want defect.Kind
	}{
		{defect.NewUnknown[apiError](c, nil), defect.Unknown},
		{defect.NewConnection[apiError](c, nil), defect.Connection},
		{defect.NewTimeout[apiError](c, nil), defect.Timeout},
		{defect.NewCancel[apiError](c, nil), defect.Cancel},
		{defect.NewBadCertificate[apiError](c, nil), defect.BadCertificate},
		{defect.NewParse[apiError](c, "raw"), defect.Parse},
		{defect.NewInvalidPayload[apiError](c), defect.InvalidPayload},
		{defect.NewUnknownDefect[apiError](c, nil), defect.UnknownDefect},
		{defect.NewBadResponse(c, nil, 500, result.Right[defect.ParseFailure](apiError{})), defect.BadResponse},
	} {
		if want, have := testcase.want, testcase.d.Kind; want != have {
			t.Errorf("want %s, have %s", want, have)
		}
		if testcase.d.Diagnostic.IsZero() {
			t.Errorf("%s: diagnostic must be set", testcase.want)
		}
	}
}

func TestZeroDiagnosticIsReplaced(t *testing.T) {
	d := defect.New[apiError](defect.Timeout, diag.Capture{}, nil)
	if d.Diagnostic.IsZero() {
		t.Fatal("diagnostic must never be zero")
	}
	if want, have := "timeout defect", d.Diagnostic.Error(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestKindStrings(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range defect.Kinds() {
		s := k.String()
		if s == "invalid" || seen[s] {
			t.Errorf("kind %d has bad or duplicate name %q", k, s)
		}
		seen[s] = true
	}
	if want, have := 9, len(defect.Kinds()); want != have {
		t.Errorf("want %d kinds, have %d", want, have)
	}
	if want, have := "invalid", defect.Kind(99).String(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestErrorsIs(t *testing.T) {
	var err error = defect.NewParse[apiError](diag.New(io.ErrUnexpectedEOF), "{")
	if !errors.Is(err, defect.ErrParse) {
		t.Error("want errors.Is(err, ErrParse)")
	}
	if errors.Is(err, defect.ErrTimeout) {
		t.Error("parse defect must not match ErrTimeout")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("want the diagnostic's error in the chain")
	}
	var d *defect.Defect[apiError]
	if !errors.As(err, &d) || d.RawResponseData != "{" {
		t.Errorf("errors.As failed or lost raw data: %v", d)
	}
}

func TestErrorString(t *testing.T) {
	d := defect.NewBadResponse(diag.New(errors.New("server said no")), nil, 404,
		result.Right[defect.ParseFailure](apiError{Code: "not_found"}))
	if want, have := "defect: bad_response (status 404): server said no", d.Error(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	p := defect.NewParse[apiError](diag.New(errors.New("bad cast")), nil)
	if want, have := "defect: parse: bad cast", p.Error(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestDecodedError(t *testing.T) {
	d := defect.NewBadResponse(diag.New(io.EOF), nil, 422,
		result.Right[defect.ParseFailure](apiError{Code: "invalid"}))
	e, ok := d.DecodedError()
	if !ok || e.Code != "invalid" {
		t.Errorf("want decoded error, have %v (%v)", e, ok)
	}

	failed := defect.NewBadResponse(diag.New(io.EOF), "<html>", 500,
		result.Left[defect.ParseFailure, apiError](defect.ParseFailure{Diagnostic: diag.New("bad body"), RawResponseData: "<html>"}))
	if _, ok := failed.DecodedError(); ok {
		t.Error("undecodable body must not yield a decoded error")
	}
	if _, ok := defect.NewTimeout[apiError](diag.New(io.EOF), nil).DecodedError(); ok {
		t.Error("non-BadResponse must not yield a decoded error")
	}
}

func TestFromParseFailure(t *testing.T) {
	p := defect.ParseFailure{Diagnostic: diag.New("not json"), RawResponseData: "<html>"}
	d := defect.FromParseFailure[apiError](p)
	if d.Kind != defect.Parse || d.RawResponseData != "<html>" || d.Diagnostic.Err() != "not json" {
		t.Errorf("unexpected defect %#v", d)
	}
}

func TestDump(t *testing.T) {
	d := defect.NewBadResponse(diag.New(io.EOF), map[string]interface{}{"b": 2, "a": 1}, 400,
		result.Left[defect.ParseFailure, apiError](defect.ParseFailure{Diagnostic: diag.New("missing code")}))
	s := d.Dump()
	for _, want := range []string{"bad_response", `"a"`, `"b"`, "error body: missing code", "defect_test.go"} {
		if !strings.Contains(s, want) {
			t.Errorf("Dump missing %q in:\n%s", want, s)
		}
	}
	if strings.Index(s, `"a"`) > strings.Index(s, `"b"`) {
		t.Error("Dump should sort map keys")
	}
}

func TestMatch(t *testing.T) {
	cases := defect.Cases[apiError, string]{
		Timeout:     func(*defect.Defect[apiError]) string { return "retry later" },
		BadResponse: func(d *defect.Defect[apiError]) string { return "server" },
		Default:     func(d *defect.Defect[apiError]) string { return "other:" + d.Kind.String() },
	}
	if err := cases.Validate(); err != nil {
		t.Fatal(err)
	}
	for _, testcase := range []struct {
		d    *defect.Defect[apiError]
		want string
	}{
		{defect.NewTimeout[apiError](diag.New(io.EOF), nil), "retry later"},
		{defect.NewBadResponse(diag.New(io.EOF), nil, 500, result.Right[defect.ParseFailure](apiError{})), "server"},
		{defect.NewParse[apiError](diag.New(io.EOF), nil), "other:parse"},
		{nil, ""},
	} {
		if want, have := testcase.want, defect.Match(testcase.d, cases); want != have {
			t.Errorf("want %q, have %q", want, have)
		}
	}
}

func TestCasesValidate(t *testing.T) {
	cases := defect.Cases[apiError, int]{
		Parse: func(*defect.Defect[apiError]) int { return 1 },
	}
	err := cases.Validate()
	if err == nil {
		t.Fatal("want error for missing handlers")
	}
	if strings.Contains(err.Error(), "parse") {
		t.Errorf("parse is handled, have %v", err)
	}
	if !strings.Contains(err.Error(), "bad_certificate") {
		t.Errorf("want bad_certificate listed, have %v", err)
	}
}
