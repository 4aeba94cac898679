package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"eventhub/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// Parsed once; the files are compiled into the binary so a parse failure is a build defect.
var (
	htmlTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// templateRenderer implements domain.EmailTemplateRenderer over the embedded templates folder.
// Every template has <name>_subject.txt, <name>.html and <name>.txt.
type templateRenderer struct{}

func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{}
}

func (r *templateRenderer) Render(tmpl domain.EmailTemplate, data any) (subject, htmlBody, textBody string, err error) {
	if err := checkData(tmpl, data); err != nil {
		return "", "", "", err
	}
	name := string(tmpl)

	var buf bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&buf, name+"_subject.txt", data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	// Header injection guard: a subject is a single line.
	subject = strings.Join(strings.Fields(buf.String()), " ")

	buf.Reset()
	if err := htmlTemplates.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err := textTemplates.ExecuteTemplate(&buf, name+".txt", data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return subject, htmlBody, buf.String(), nil
}

// checkData rejects unknown templates and payloads of the wrong type before anything executes.
func checkData(tmpl domain.EmailTemplate, data any) error {
	var ok bool
	switch tmpl {
	case domain.EmailRegistrationConfirmation:
		var d *domain.RegistrationEmailData
		d, ok = data.(*domain.RegistrationEmailData)
		ok = ok && d != nil
	case domain.EmailModerationDecision:
		var d *domain.ModerationEmailData
		d, ok = data.(*domain.ModerationEmailData)
		ok = ok && d != nil
	default:
		return fmt.Errorf("unknown email template %q", tmpl)
	}
	if !ok {
		return fmt.Errorf("template %s: unexpected data %T", tmpl, data)
	}
	return nil
}
