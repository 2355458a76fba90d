package notifier

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"booking-service/internal/service"

	gopkgmail "gopkg.in/gomail.v2"
)

//go:embed templates/*
var builtin embed.FS

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
	// TmplDir overrides the built-in templates file by file when set.
	TmplDir string
}

type mailDialer interface {
	DialAndSend(m ...*gopkgmail.Message) error
}

type EmailSender struct {
	cfg    SMTPConfig
	dialer mailDialer
}

func NewEmailSender(cfg SMTPConfig) *EmailSender {
	d := gopkgmail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return &EmailSender{cfg: cfg, dialer: d}
}

var funcs = map[string]any{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}

func (s *EmailSender) Send(_ context.Context, e service.EmailEvent) error {
	htmlBody, plainBody, err := s.Render(e.Template, e.Data)
	if err != nil {
		return err
	}

	m := gopkgmail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if s.cfg.TmplDir != "" && strings.Contains(htmlBody, "cid:logo") {
		iconPath := filepath.Join(s.cfg.TmplDir, "icon.png")
		if _, errStat := os.Stat(iconPath); errStat == nil {
			m.Embed(iconPath, gopkgmail.SetHeader(map[string][]string{"Content-ID": {"<logo>"}}))
		}
	}
	return s.dialer.DialAndSend(m)
}

// Render returns the HTML and plain-text bodies of a template.
func (s *EmailSender) Render(name string, data map[string]any) (string, string, error) {
	htmlSrc, err := s.load(name + ".html")
	if err != nil {
		return "", "", err
	}
	plainSrc, err := s.load(name + ".txt")
	if err != nil {
		return "", "", err
	}

	var htmlBuf, plainBuf bytes.Buffer
	ht, err := htmltemplate.New(name).Funcs(funcs).Parse(htmlSrc)
	if err != nil {
		return "", "", fmt.Errorf("parse %s.html: %w", name, err)
	}
	if err := ht.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	pt, err := texttemplate.New(name).Funcs(funcs).Parse(plainSrc)
	if err != nil {
		return "", "", fmt.Errorf("parse %s.txt: %w", name, err)
	}
	if err := pt.Execute(&plainBuf, data); err != nil {
		return "", "", fmt.Errorf("render plain: %w", err)
	}
	return htmlBuf.String(), plainBuf.String(), nil
}

func (s *EmailSender) load(file string) (string, error) {
	if s.cfg.TmplDir != "" {
		content, err := os.ReadFile(filepath.Join(s.cfg.TmplDir, file))
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
	content, err := fs.ReadFile(builtin, "templates/"+file)
	if err != nil {
		return "", fmt.Errorf("unknown template %q: %w", file, err)
	}
	return string(content), nil
}
