// Package templates renders the plain-text bodies for OTP emails. Data keys
// are the ones the identity service puts on the EmailJob: Name, Code,
// ExpiresInMinutes, AppName.
package templates

import (
	"bytes"
	"fmt"
	"text/template"
)

var bodies = map[string]*template.Template{
	"verify_email": template.Must(template.New("verify_email").Parse(
		`Hi {{.Name}},

Welcome to {{.AppName}}. Your email verification code is:

    {{.Code}}

The code expires in {{.ExpiresInMinutes}} minutes. If you did not create an
account, you can ignore this message.
`)),
	"password_reset": template.Must(template.New("password_reset").Parse(
		`Hi {{.Name}},

We received a request to reset your {{.AppName}} password. Your reset code is:

    {{.Code}}

The code expires in {{.ExpiresInMinutes}} minutes. If you did not request a
reset, no action is needed; your password is unchanged.
`)),
}

var subjects = map[string]string{
	"verify_email":   "Verify your email address",
	"password_reset": "Reset your password",
}

// Render returns subject and text body for a known template name.
func Render(name string, data map[string]any) (subject, text string, err error) {
	tpl, ok := bodies[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subjects[name], buf.String(), nil
}
