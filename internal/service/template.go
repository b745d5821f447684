package service

import (
	"bytes"
	"text/template"

	"github.com/pkg/errors"
)

// ErrInvalidTemplate is returned when a query template can not be rendered
var ErrInvalidTemplate = errors.New("Invalid query template")

// RenderQuery renders text/template query with values. A value missing in
// values is an error.
func RenderQuery(tmpl string, values map[string]interface{}) (string, error) {
	t, err := template.New("query").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", errors.Wrap(ErrInvalidTemplate, err.Error())
	}

	if values == nil {
		values = map[string]interface{}{}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, values); err != nil {
		return "", errors.Wrap(ErrInvalidTemplate, err.Error())
	}

	return buf.String(), nil
}
