package messaging

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/challenge"
)

const (
	registrationSubject  = "Your Daily Dish verification code"
	passwordResetSubject = "Reset your Daily Dish password"

	registrationTemplate = `Hi,

your verification code for Daily Dish is:

	{{.code}}

Enter it in the app to finish setting up your account. The code is valid until {{.validUntil}}.

If you did not request this, you can ignore this message.

The Daily Dish team`

	passwordResetTemplate = `Hi,

we received a request to reset your Daily Dish password. Your reset code is:

	{{.code}}

The code is valid until {{.validUntil}}.

If you did not request a password reset, you can ignore this message and your password stays unchanged.

The Daily Dish team`
)

func templateForPurpose(purpose challenge.Purpose) (subject string, templateDef string, err error) {
	switch purpose {
	case challenge.PurposeRegistration:
		return registrationSubject, registrationTemplate, nil
	case challenge.PurposePasswordReset:
		return passwordResetSubject, passwordResetTemplate, nil
	default:
		return "", "", fmt.Errorf("no message template for purpose %s", purpose)
	}
}

func ResolveTemplate(tempName string, templateDef string, contentInfos map[string]string) (content string, err error) {
	if strings.TrimSpace(templateDef) == "" {
		return "", errors.New("empty template `" + tempName + "`")
	}
	tmpl, err := template.New(tempName).Parse(templateDef)
	if err != nil {
		err = fmt.Errorf("error when parsing template %s: %v", tempName, err)
		return "", err
	}
	var tpl bytes.Buffer

	err = tmpl.Execute(&tpl, contentInfos)
	if err != nil {
		err = fmt.Errorf("error during executing template %s: %v", tempName, err)
		return "", err
	}
	return tpl.String(), nil
}

// GenerateCodeMessage renders subject and body for the given payload.
func GenerateCodeMessage(payload CodePayload) (subject string, content string, err error) {
	subject, templateDef, err := templateForPurpose(payload.Purpose)
	if err != nil {
		return "", "", err
	}

	contentInfos := map[string]string{
		"code":       payload.Code,
		"validUntil": payload.ExpiresAt.Format("15:04 MST, Jan 2 2006"),
	}
	content, err = ResolveTemplate(string(payload.Purpose), templateDef, contentInfos)
	if err != nil {
		return "", "", err
	}
	return subject, content, nil
}
