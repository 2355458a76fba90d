package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"booking-service/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	gopkgmail "gopkg.in/gomail.v2"
)

type MockSender struct {
	SendFunc func(ctx context.Context, e service.EmailEvent) error
}

func (m *MockSender) Send(ctx context.Context, e service.EmailEvent) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, e)
	}
	return nil
}

type MockReader struct {
	msgs   []kafka.Message
	closed bool
}

func (m *MockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(m.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := m.msgs[0]
	m.msgs = m.msgs[1:]
	return msg, nil
}

func (m *MockReader) Close() error {
	m.closed = true
	return nil
}

type MockDialer struct {
	sent []*gopkgmail.Message
}

func (m *MockDialer) DialAndSend(msgs ...*gopkgmail.Message) error {
	m.sent = append(m.sent, msgs...)
	return nil
}

func encode(t *testing.T, e service.EmailEvent) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return kafka.Message{Key: []byte("k"), Value: raw}
}

func TestConsumer_HandleValidatesAndSends(t *testing.T) {
	var got []service.EmailEvent
	c := &KafkaEmailConsumer{
		sender: &MockSender{SendFunc: func(ctx context.Context, e service.EmailEvent) error {
			got = append(got, e)
			return nil
		}},
		log: zap.NewNop(),
	}
	ctx := context.Background()

	if err := c.handle(ctx, kafka.Message{Value: []byte("{not json")}); err == nil {
		t.Fatalf("bad payload accepted")
	}
	if err := c.handle(ctx, encode(t, service.EmailEvent{Template: "notification"})); !errors.Is(err, errInvalidEvent) {
		t.Fatalf("missing recipient: %v", err)
	}
	ok := service.EmailEvent{Type: "order.ready", To: "ana@example.com", Template: "notification"}
	if err := c.handle(ctx, encode(t, ok)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(got) != 1 || got[0].Type != "order.ready" {
		t.Fatalf("sent: %+v", got)
	}
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	sends := 0
	r := &MockReader{msgs: []kafka.Message{
		encode(t, service.EmailEvent{To: "a@example.com", Template: "notification"}),
		{Value: []byte("garbage")},
		encode(t, service.EmailEvent{To: "b@example.com", Template: "notification"}),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	c := &KafkaEmailConsumer{
		reader: r,
		sender: &MockSender{SendFunc: func(context.Context, service.EmailEvent) error {
			sends++
			if sends == 2 {
				cancel()
			}
			return nil
		}},
		log: zap.NewNop(),
	}

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sends != 2 {
		t.Fatalf("sends: %d", sends)
	}
	if err := c.Close(); err != nil || !r.closed {
		t.Fatalf("Close: %v", err)
	}
}

func TestEmailSender_RenderBuiltins(t *testing.T) {
	s := &EmailSender{}

	html, plain, err := s.Render("notification", map[string]any{
		"name": "Ana", "title": "Reservation <2030-06-01>", "message": "line one\nline two",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "&lt;2030-06-01&gt;") || !strings.Contains(html, "line one<br>line two") {
		t.Fatalf("html: %s", html)
	}
	if !strings.Contains(plain, "Reservation <2030-06-01>") {
		t.Fatalf("plain: %s", plain)
	}

	_, plain, err = s.Render("order_created", map[string]any{
		"name": "Ana", "order_number": "ORD-ABCD1234", "order_type": "Takeout", "total": "RD$35.00",
		"items": []any{
			map[string]any{"name": "Mofongo", "quantity": 2, "unit_price": "RD$10.00", "subtotal": "RD$20.00"},
		},
	})
	if err != nil {
		t.Fatalf("Render order: %v", err)
	}
	if !strings.Contains(plain, "2 x Mofongo") || !strings.Contains(plain, "Total: RD$35.00") {
		t.Fatalf("order plain: %s", plain)
	}

	if _, _, err := s.Render("missing", nil); err == nil {
		t.Fatalf("unknown template rendered")
	}
}

func TestEmailSender_OverrideDirAndSend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notification.txt"), []byte("custom {{.name}}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d := &MockDialer{}
	s := &EmailSender{cfg: SMTPConfig{From: "noreply@example.com", TmplDir: dir}, dialer: d}

	_, plain, err := s.Render("notification", map[string]any{"name": "Ana", "title": "t", "message": "m"})
	if err != nil || plain != "custom Ana" {
		t.Fatalf("override: %q %v", plain, err)
	}

	err = s.Send(context.Background(), service.EmailEvent{
		To: "ana@example.com", Subject: "Hello", Template: "notification",
		Data: map[string]any{"name": "Ana", "title": "t", "message": "m"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(d.sent) != 1 || d.sent[0].GetHeader("To")[0] != "ana@example.com" {
		t.Fatalf("sent: %+v", d.sent)
	}
}
