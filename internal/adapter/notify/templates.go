package notify

import (
	"bytes"
	"embed"
	"strings"
	"text/template"
	"time"

	"sailclub/internal/core/domain"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

const dateLayout = "Mon 02 Jan 2006 15:04"

type mailData struct {
	Recipient domain.MemberRef
	Actor     domain.MemberRef
	Task      domain.HelperTask
	Groups    []domain.ChangeGroup
	Removed   []domain.MemberRef
	Warnings  []domain.TaskWarning
	Tasks     []domain.HelperTask
}

func parseTemplates(location *time.Location) *template.Template {
	funcs := template.FuncMap{
		"timing": func(t domain.HelperTask) string {
			return formatTiming(t, location)
		},
		"warning": func(w domain.TaskWarning) string {
			switch w {
			case domain.WarningMissingCaptain:
				return "no captain has signed up yet"
			case domain.WarningNotEnoughHelpers:
				return "fewer helpers than needed have signed up"
			}
			return string(w)
		},
	}
	return template.Must(template.New("mail").Funcs(funcs).ParseFS(templateFiles, "templates/*.tmpl"))
}

func render(templates *template.Template, name string, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

func formatTiming(t domain.HelperTask, location *time.Location) string {
	switch t.Type() {
	case domain.TaskTypeShift:
		return t.Timing.StartsAt.In(location).Format(dateLayout) + " - " + t.Timing.EndsAt.In(location).Format(dateLayout)
	case domain.TaskTypeDeadline:
		return "due " + t.Timing.Deadline.In(location).Format(dateLayout)
	}
	return "no date"
}
