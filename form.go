package goForms

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
)

var hiddenTagTemplate = template.Must(template.New("csrf").Parse(
	`<input id="{{.Name}}" name="{{.Name}}" type="hidden" value="{{.Value}}">`,
))

// CSRFField is the hidden form field that carries the CSRF token.
type CSRFField struct {
	Name string
	// CurrentToken is the token rendered into the form.
	CurrentToken string
	// Data is the submitted value, empty on render.
	Data   string
	Errors []string
}

// HiddenTag renders the field as an escaped hidden input.
func (c *CSRFField) HiddenTag() template.HTML {
	if c == nil {
		return ""
	}
	var b strings.Builder
	if err := hiddenTagTemplate.Execute(&b, struct{ Name, Value string }{c.Name, c.CurrentToken}); err != nil {
		return ""
	}
	return template.HTML(b.String())
}

// Form binds a request's submitted data to a [FormConfig] and, when CSRF is enabled,
// to a [CSRFField].
type Form struct {
	Config *FormConfig
	Data   *FormData
	CSRF   *CSRFField
}

// NewForm prepares a form for r. On a submission the form data is parsed; when CSRF is
// enabled a token is generated for rendering and the submitted token is read from the
// form body.
func NewForm(fc *FormConfig, r *http.Request) (*Form, error) {
	if fc == nil {
		return nil, ErrAppNotReady
	}

	data, err := fc.WrapFormData(r)
	if err != nil {
		return nil, err
	}

	form := &Form{Config: fc, Data: data}
	if !fc.CSRFEnabled() {
		return form, nil
	}

	token, err := fc.GenerateCSRFToken()
	if err != nil {
		return nil, err
	}
	form.CSRF = &CSRFField{
		Name:         fc.CSRFFieldName(),
		CurrentToken: token,
		Data:         data.Get(fc.CSRFFieldName()),
	}
	return form, nil
}

// IsSubmitted reports whether the form was built from a submission.
func (f *Form) IsSubmitted() bool {
	return f.Data != nil
}

// Validate runs CSRF validation and attaches any failure, translated, to the CSRF
// field's error list. It reports whether the form is valid.
func (f *Form) Validate() bool {
	if f.CSRF == nil {
		return true
	}
	f.CSRF.Errors = f.CSRF.Errors[:0]

	err := f.Config.ValidateCSRFToken(f.CSRF.Data)
	if err == nil {
		return true
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		f.CSRF.Errors = append(f.CSRF.Errors, f.Config.GetTranslations().Gettext(ve.Message))
	} else {
		f.CSRF.Errors = append(f.CSRF.Errors, err.Error())
	}
	return false
}

// ValidateOnSubmit is IsSubmitted followed by Validate.
func (f *Form) ValidateOnSubmit() bool {
	return f.IsSubmitted() && f.Validate()
}
