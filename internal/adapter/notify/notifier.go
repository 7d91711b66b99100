package notify

import (
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"go.uber.org/zap"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
	"sailclub/pkg/translator"
)

const (
	subjectUpdated         = "mailSubjectUpdated"
	subjectCaptainSignedUp = "mailSubjectCaptainSignedUp"
	subjectHelperSignedUp  = "mailSubjectHelperSignedUp"
	subjectCaptainRemoved  = "mailSubjectCaptainRemoved"
	subjectHelperRemoved   = "mailSubjectHelperRemoved"
	subjectMarkedAsDone    = "mailSubjectMarkedAsDone"
	subjectValidated       = "mailSubjectValidated"
	subjectUpcoming        = "mailSubjectUpcoming"
	subjectOverdue         = "mailSubjectOverdue"
)

// Notifier turns task events and reminders into one mail per recipient.
type Notifier struct {
	mailer    Mailer
	templates *template.Template
}

var _ ports.Notifier = (*Notifier)(nil)

func NewNotifier(mailer Mailer, location *time.Location) *Notifier {
	if location == nil {
		location = time.Local
	}
	return &Notifier{mailer: mailer, templates: parseTemplates(location)}
}

func (n *Notifier) NotifyTaskEvent(ctx context.Context, event domain.TaskEvent) error {
	var (
		recipients []domain.MemberRef
		subject    string
		removed    []domain.MemberRef
	)
	task := event.Task

	switch event.Kind {
	case domain.EventTaskUpdated:
		recipients = participants(task)
		subject = subjectUpdated
	case domain.EventCaptainSignedUp:
		recipients = []domain.MemberRef{task.Contact}
		subject = subjectCaptainSignedUp
	case domain.EventHelperSignedUp:
		recipients = []domain.MemberRef{task.Contact}
		subject = subjectHelperSignedUp
	case domain.EventCaptainRemoved:
		if event.Previous != nil && event.Previous.Captain != nil {
			removed = []domain.MemberRef{*event.Previous.Captain}
		}
		recipients = append([]domain.MemberRef{task.Contact}, removed...)
		subject = subjectCaptainRemoved
	case domain.EventHelperRemoved:
		removed = event.RemovedHelpers()
		recipients = append([]domain.MemberRef{task.Contact}, removed...)
		subject = subjectHelperRemoved
	case domain.EventTaskMarkedAsDone:
		recipients = []domain.MemberRef{task.Contact}
		subject = subjectMarkedAsDone
	case domain.EventTaskValidated:
		recipients = participants(task)
		subject = subjectValidated
	default:
		return nil
	}

	data := mailData{Actor: event.Actor, Task: task, Groups: event.Groups(), Removed: removed}
	return n.sendAll(ctx, withoutMember(recipients, event.Actor.ID), string(event.Kind), subject, data)
}

// SendUpcomingReminder mails the captain and helpers. The contact is only
// included when the task is short of people.
func (n *Notifier) SendUpcomingReminder(ctx context.Context, reminder domain.UpcomingReminder) error {
	recipients := participants(reminder.Task)
	if len(reminder.Warnings) > 0 {
		recipients = append(recipients, reminder.Task.Contact)
	}
	data := mailData{Task: reminder.Task, Warnings: reminder.Warnings}
	return n.sendAll(ctx, recipients, "upcoming", subjectUpcoming, data)
}

func (n *Notifier) SendOverdueReminder(ctx context.Context, reminder domain.OverdueReminder) error {
	data := mailData{Tasks: reminder.Tasks}
	if len(reminder.Tasks) > 0 {
		data.Task = reminder.Tasks[0]
	}
	return n.sendAll(ctx, []domain.MemberRef{reminder.Contact}, "overdue", subjectOverdue, data)
}

// sendAll reports an error only when nobody could be reached, so a retry never
// mails someone twice.
func (n *Notifier) sendAll(ctx context.Context, recipients []domain.MemberRef, tmpl, subjectKey string, data mailData) error {
	var (
		sent int
		errs []error
	)
	for _, recipient := range unique(recipients) {
		if recipient.Email == "" {
			zap.L().Warn("member has no email address", zap.Uint64("member_id", recipient.ID))
			continue
		}
		data.Recipient = recipient
		body, err := render(n.templates, tmpl, data)
		if err != nil {
			return fmt.Errorf("failed to render %s mail: %w", tmpl, err)
		}
		msg := Message{
			To:      recipient.Email,
			Subject: n.subject(recipient.Language, subjectKey, data),
			Body:    body,
		}
		if err := n.mailer.Send(ctx, msg); err != nil {
			zap.L().Error("failed to send mail", zap.Uint64("member_id", recipient.ID), zap.String("template", tmpl), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		sent++
	}
	if sent == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (n *Notifier) subject(lang, key string, data mailData) string {
	templateData := map[string]any{"Title": data.Task.Title, "Count": len(data.Tasks)}
	if lang == "" {
		lang = translator.LanguageEn
	}
	subject, err := translator.Translate(lang, key, templateData)
	if err != nil {
		zap.L().Warn("translation not found", zap.String("lang", lang), zap.String("message_id", key), zap.Error(err))
		return data.Task.Title
	}
	return subject
}

func participants(t domain.HelperTask) []domain.MemberRef {
	members := make([]domain.MemberRef, 0, len(t.Helpers)+1)
	if t.Captain != nil {
		members = append(members, *t.Captain)
	}
	for _, h := range t.Helpers {
		members = append(members, h.Member)
	}
	return members
}

func withoutMember(members []domain.MemberRef, id uint64) []domain.MemberRef {
	kept := make([]domain.MemberRef, 0, len(members))
	for _, m := range members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return kept
}

func unique(members []domain.MemberRef) []domain.MemberRef {
	seen := make(map[uint64]struct{}, len(members))
	out := make([]domain.MemberRef, 0, len(members))
	for _, m := range members {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
