package notifications

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"audiopref/internal/config"
)

const userAgent = "audiopref/0.1.0"

// Service defines the notification surface exposed to the HTTP server and CLI.
type Service interface {
	NotifyTestCompleted(ctx context.Context, userID string, rated int) error
	PublishExport(ctx context.Context, filename string, csv []byte) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		testCompleted: cfg.Notifications.TestCompleted,
		attachExport:  cfg.Notifications.AttachExport,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
	filename string
	body     []byte
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	testCompleted bool
	attachExport  bool
}

func (n *ntfyService) NotifyTestCompleted(ctx context.Context, userID string, rated int) error {
	if !n.testCompleted {
		return nil
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "unknown rater"
	}
	data := payload{
		title:   "audiopref - Test Complete",
		message: fmt.Sprintf("✅ %s finished the listening test (%d pairs rated)", userID, rated),
		tags:    []string{"audiopref", "test", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) PublishExport(ctx context.Context, filename string, csv []byte) error {
	if !n.attachExport || len(csv) == 0 {
		return nil
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "audio_ratings.csv"
	}
	data := payload{
		title:    "audiopref - Ratings Export",
		message:  fmt.Sprintf("📎 %s (%d rows)", filename, bytes.Count(csv, []byte("\n"))),
		tags:     []string{"audiopref", "export"},
		filename: filename,
		body:     csv,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "audiopref - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"audiopref", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

// send posts a plain message, or PUTs body as an attachment with the message
// carried in a header.
func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	method := http.MethodPost
	var body io.Reader = strings.NewReader(data.message)
	if data.filename != "" {
		method = http.MethodPut
		body = bytes.NewReader(data.body)
	}

	req, err := http.NewRequestWithContext(ctx, method, n.endpoint, body)
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if data.filename != "" {
		req.Header.Set("Filename", data.filename)
		req.Header.Set("Message", data.message)
		req.Header.Set("Content-Type", "text/csv; charset=utf-8")
	} else {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTestCompleted(context.Context, string, int) error { return nil }
func (noopService) PublishExport(context.Context, string, []byte) error    { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }
