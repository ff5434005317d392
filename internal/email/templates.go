package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const (
	TemplateApplicationSubmitted = "application_submitted"
	TemplateApplicationStatus    = "application_status"
	TemplatePostingDecided       = "posting_decided"
)

var defaultTemplates = map[string]string{
	TemplateApplicationSubmitted: `<p>New application for <b>{{.PostingTitle}}</b> from {{.StudentName}}.</p>
<p>Open the applicants list to review it.</p>`,
	TemplateApplicationStatus: `<p>Hello {{.StudentName}},</p>
<p>Your application for <b>{{.PostingTitle}}</b> at {{.CompanyName}} is now <b>{{.Status}}</b>.</p>
{{if .Notes}}<p>{{.Notes}}</p>{{end}}`,
	TemplatePostingDecided: `<p>Your posting <b>{{.PostingTitle}}</b> was <b>{{.Status}}</b> by a moderator.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}`,
}

// TemplateManager рендерит html шаблоны писем
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер со встроенными шаблонами
func NewTemplateManager() (*TemplateManager, error) {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}
	for name, body := range defaultTemplates {
		if err := tm.AddTemplate(name, body); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// AddTemplate добавляет или заменяет шаблон
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
