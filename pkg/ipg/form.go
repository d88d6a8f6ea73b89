package ipg

import (
	"fmt"
	"html/template"
	"io"
	"maps"
	"slices"
)

type formField struct {
	Name  string
	Value string
}

var formTemplate = template.Must(template.New("ipg-form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex">
<title>Redirecting to payment</title>
</head>
<body onload="document.forms[0].submit()">
<form method="POST" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue to payment</button></noscript>
</form>
</body>
</html>
`))

// RenderForm writes an HTML page that POSTs fields to action as soon as it
// loads. Every field is a hidden input, empty ones included, in key order.
func RenderForm(w io.Writer, action string, fields Params) error {
	values := fields.Strings()

	data := struct {
		Action string
		Fields []formField
	}{Action: action}
	for _, name := range slices.Sorted(maps.Keys(values)) {
		data.Fields = append(data.Fields, formField{Name: name, Value: values[name]})
	}

	if err := formTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render payment form: %w", err)
	}
	return nil
}
