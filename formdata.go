package goForms

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaxMemory bounds the in-memory part of multipart parsing.
const DefaultMaxMemory = 32 << 20

// FormData combines submitted form values and uploaded files.
type FormData struct {
	Values url.Values
	Files  map[string][]*multipart.FileHeader
}

// Get returns the first value for key.
func (d *FormData) Get(key string) string {
	if d == nil {
		return ""
	}
	return d.Values.Get(key)
}

// File returns the first uploaded file for key.
func (d *FormData) File(key string) (*multipart.FileHeader, bool) {
	if d == nil || len(d.Files[key]) == 0 {
		return nil, false
	}
	return d.Files[key][0], true
}

// IsSubmitted reports whether r carries a form submission: POST, PUT, PATCH or DELETE.
func IsSubmitted(r *http.Request) bool {
	if r == nil {
		return false
	}
	switch strings.ToUpper(r.Method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// WrapFormData returns the combined body values and files of a submitted request, or
// nil when r is not a submission.
func (f *FormConfig) WrapFormData(r *http.Request) (*FormData, error) {
	return wrapFormData(r)
}

func wrapFormData(r *http.Request) (*FormData, error) {
	if !IsSubmitted(r) {
		return nil, nil
	}

	if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}

	data := &FormData{
		Values: r.PostForm,
		Files:  map[string][]*multipart.FileHeader{},
	}
	if data.Values == nil {
		data.Values = url.Values{}
	}
	if r.MultipartForm != nil {
		for k, v := range r.MultipartForm.File {
			data.Files[k] = v
		}
	}
	return data, nil
}
