package email

import (
	"context"
	"errors"
	"fmt"

	"placement_backend/internal/logger"
)

// ApplicationNotice - данные о заявке для письма
type ApplicationNotice struct {
	To           string
	StudentName  string
	CompanyName  string
	PostingTitle string
	Status       string
	Notes        string
}

// PostingNotice - данные о решении модератора
type PostingNotice struct {
	To           string
	PostingTitle string
	Status       string
	Reason       string
}

// Notifier - уведомления о событиях. Вызывается после коммита,
// ошибка доставки не откатывает операцию.
type Notifier interface {
	ApplicationSubmitted(ctx context.Context, n ApplicationNotice) error
	ApplicationStatusChanged(ctx context.Context, n ApplicationNotice) error
	PostingDecided(ctx context.Context, n PostingNotice) error
}

// EmailNotifier рендерит шаблон и отправляет письмо через Provider
type EmailNotifier struct {
	provider  Provider
	templates *TemplateManager
}

func NewEmailNotifier(provider Provider, templates *TemplateManager) *EmailNotifier {
	return &EmailNotifier{provider: provider, templates: templates}
}

func (n *EmailNotifier) ApplicationSubmitted(ctx context.Context, notice ApplicationNotice) error {
	return n.send(notice.To, "New application: "+notice.PostingTitle, TemplateApplicationSubmitted, TemplateData{
		"StudentName":  notice.StudentName,
		"PostingTitle": notice.PostingTitle,
	})
}

func (n *EmailNotifier) ApplicationStatusChanged(ctx context.Context, notice ApplicationNotice) error {
	return n.send(notice.To, "Application update: "+notice.PostingTitle, TemplateApplicationStatus, TemplateData{
		"StudentName":  notice.StudentName,
		"CompanyName":  notice.CompanyName,
		"PostingTitle": notice.PostingTitle,
		"Status":       notice.Status,
		"Notes":        notice.Notes,
	})
}

func (n *EmailNotifier) PostingDecided(ctx context.Context, notice PostingNotice) error {
	return n.send(notice.To, "Posting "+notice.Status+": "+notice.PostingTitle, TemplatePostingDecided, TemplateData{
		"PostingTitle": notice.PostingTitle,
		"Status":       notice.Status,
		"Reason":       notice.Reason,
	})
}

func (n *EmailNotifier) send(to, subject, templateName string, data TemplateData) error {
	if to == "" {
		return fmt.Errorf("recipient is empty")
	}
	body, err := n.templates.Render(templateName, data)
	if err != nil {
		return err
	}
	return n.provider.Send(&Email{To: []string{to}, Subject: subject, HTMLBody: body})
}

// AsyncNotifier отправляет письма в фоне, чтобы SMTP не задерживал ответ
type AsyncNotifier struct {
	next Notifier
}

func NewAsyncNotifier(next Notifier) *AsyncNotifier {
	return &AsyncNotifier{next: next}
}

func (a *AsyncNotifier) ApplicationSubmitted(ctx context.Context, n ApplicationNotice) error {
	a.run(ctx, "application_submitted", func(ctx context.Context) error { return a.next.ApplicationSubmitted(ctx, n) })
	return nil
}

func (a *AsyncNotifier) ApplicationStatusChanged(ctx context.Context, n ApplicationNotice) error {
	a.run(ctx, "application_status_changed", func(ctx context.Context) error { return a.next.ApplicationStatusChanged(ctx, n) })
	return nil
}

func (a *AsyncNotifier) PostingDecided(ctx context.Context, n PostingNotice) error {
	a.run(ctx, "posting_decided", func(ctx context.Context) error { return a.next.PostingDecided(ctx, n) })
	return nil
}

func (a *AsyncNotifier) run(ctx context.Context, kind string, send func(context.Context) error) {
	// запрос к этому моменту может завершиться, контекст отвязываем
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := send(detached); err != nil {
			logger.CtxWithError(detached, "failed to send notification", err, "kind", kind)
		}
	}()
}

// MultiNotifier рассылает событие всем получателям, ошибки собираются вместе
type MultiNotifier []Notifier

func (m MultiNotifier) ApplicationSubmitted(ctx context.Context, n ApplicationNotice) error {
	return m.each(func(next Notifier) error { return next.ApplicationSubmitted(ctx, n) })
}

func (m MultiNotifier) ApplicationStatusChanged(ctx context.Context, n ApplicationNotice) error {
	return m.each(func(next Notifier) error { return next.ApplicationStatusChanged(ctx, n) })
}

func (m MultiNotifier) PostingDecided(ctx context.Context, n PostingNotice) error {
	return m.each(func(next Notifier) error { return next.PostingDecided(ctx, n) })
}

func (m MultiNotifier) each(send func(Notifier) error) error {
	var errs []error
	for _, next := range m {
		if err := send(next); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopNotifier - уведомления выключены
type NoopNotifier struct{}

func (NoopNotifier) ApplicationSubmitted(context.Context, ApplicationNotice) error     { return nil }
func (NoopNotifier) ApplicationStatusChanged(context.Context, ApplicationNotice) error { return nil }
func (NoopNotifier) PostingDecided(context.Context, PostingNotice) error               { return nil }
