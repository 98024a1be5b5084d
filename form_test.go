package goForms

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/MrEthical07/goForms/session"
	"github.com/MrEthical07/goForms/settings"
)

func postForm(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestWrapFormDataNotSubmitted(t *testing.T) {
	app := newTestApp(t, nil, nil, nil)
	fc := mustFormConfig(t, newRequestCtx(session.New()), app)

	data, err := fc.WrapFormData(httptest.NewRequest(http.MethodGet, "/?name=x", nil))
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data for GET, got %+v", data)
	}
	if data.Get("name") != "" {
		t.Fatal("nil data must read as empty")
	}
}

func TestWrapFormDataURLEncoded(t *testing.T) {
	app := newTestApp(t, nil, nil, nil)
	fc := mustFormConfig(t, newRequestCtx(session.New()), app)

	data, err := fc.WrapFormData(postForm(url.Values{"name": {"alice"}}))
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if got := data.Get("name"); got != "alice" {
		t.Fatalf("expected alice, got %q", got)
	}
	if _, ok := data.File("upload"); ok {
		t.Fatal("expected no files")
	}
}

func TestWrapFormDataMultipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("name", "bob"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := mw.CreateFormFile("upload", "notes.txt")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	if _, err := fw.Write([]byte("hello")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r := httptest.NewRequest(http.MethodPut, "/submit", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	app := newTestApp(t, nil, nil, nil)
	fc := mustFormConfig(t, newRequestCtx(session.New()), app)
	data, err := fc.WrapFormData(r)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if got := data.Get("name"); got != "bob" {
		t.Fatalf("expected bob, got %q", got)
	}
	fh, ok := data.File("upload")
	if !ok || fh.Filename != "notes.txt" || fh.Size != 5 {
		t.Fatalf("unexpected file header %+v", fh)
	}
}

func TestFormRoundTrip(t *testing.T) {
	app := newTestApp(t, nil, nil, nil)
	sess := session.New()

	render, err := NewForm(mustFormConfig(t, newRequestCtx(sess), app), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	if render.IsSubmitted() || render.ValidateOnSubmit() {
		t.Fatal("GET form must not count as submitted")
	}
	if render.CSRF == nil || render.CSRF.CurrentToken == "" {
		t.Fatal("expected a rendered token")
	}

	r := postForm(url.Values{DefaultCSRFFieldName: {render.CSRF.CurrentToken}})
	submit, err := NewForm(mustFormConfig(t, newRequestCtx(sess), app), r)
	if err != nil {
		t.Fatalf("submit form: %v", err)
	}
	if !submit.ValidateOnSubmit() {
		t.Fatalf("expected valid submission, errors: %v", submit.CSRF.Errors)
	}
}

func TestFormValidateAttachesTranslatedError(t *testing.T) {
	s := settings.Map{KeyI18NDomain: "forms"}
	app, err := New().
		WithSettings(s).
		WithSecretKey([]byte("app-secret-for-tests")).
		WithTranslator(&recordingTranslator{}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	form, err := NewForm(mustFormConfig(t, newRequestCtx(session.New()), app), postForm(url.Values{}))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if form.Validate() {
		t.Fatal("expected missing token to fail")
	}
	if len(form.CSRF.Errors) != 1 || form.CSRF.Errors[0] != "T:The CSRF token is missing." {
		t.Fatalf("unexpected errors %v", form.CSRF.Errors)
	}

	form.Validate()
	if len(form.CSRF.Errors) != 1 {
		t.Fatalf("errors must be reset between runs, got %v", form.CSRF.Errors)
	}
}

func TestFormWithoutCSRF(t *testing.T) {
	app, err := New().WithSettings(settings.Map{KeyCSRFEnabled: false}).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	form, err := NewForm(mustFormConfig(t, newRequestCtx(nil), app), postForm(url.Values{}))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if form.CSRF != nil {
		t.Fatal("disabled CSRF must not add a field")
	}
	if !form.ValidateOnSubmit() {
		t.Fatal("expected form without CSRF to validate")
	}
}

func TestHiddenTagEscapes(t *testing.T) {
	field := &CSRFField{Name: "csrf_token", CurrentToken: `a"><script>`}
	got := string(field.HiddenTag())

	if strings.Contains(got, "<script>") {
		t.Fatalf("token must be escaped, got %s", got)
	}
	if !strings.HasPrefix(got, `<input id="csrf_token" name="csrf_token" type="hidden" value="`) {
		t.Fatalf("unexpected tag %s", got)
	}

	var nilField *CSRFField
	if nilField.HiddenTag() != "" {
		t.Fatal("nil field renders nothing")
	}
}

func TestIsSubmittedMethods(t *testing.T) {
	for method, want := range map[string]bool{
		http.MethodGet:     false,
		http.MethodHead:    false,
		http.MethodOptions: false,
		http.MethodPost:    true,
		http.MethodPut:     true,
		http.MethodPatch:   true,
		http.MethodDelete:  true,
	} {
		if got := IsSubmitted(httptest.NewRequest(method, "/", nil)); got != want {
			t.Fatalf("%s: expected %v, got %v", method, want, got)
		}
	}
	if IsSubmitted(nil) {
		t.Fatal("nil request is not a submission")
	}
}
