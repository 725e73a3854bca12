package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/secrets"
	"github.com/shuliakovsky/peer-monitor/pkg/transport"
)

const discordLimit = 2000

var tagRe = regexp.MustCompile(`<[^>]+>`)

type discordMessage struct {
	Content string `json:"content"`
}

// Discord mirrors messages to a webhook as plain text.
type Discord struct {
	webhook string
	http    *http.Client
	logger  *zap.Logger
}

func NewDiscord(webhook string, hc *http.Client, logger *zap.Logger) *Discord {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Discord{webhook: webhook, http: hc, logger: logger}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(discordMessage{Content: PlainText(text)})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhook, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := transport.LogRequest(d.logger, "discord", http.MethodPost, d.webhook, nil, nil)
	resp, err := d.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("discord send: %s", secrets.RedactString(err.Error()))
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	transport.LogResponse(d.logger, "discord", resp.StatusCode, raw, start)

	res := Result{OK: resp.StatusCode/100 == 2, Status: resp.StatusCode}
	if !res.OK {
		res.Description = string(transport.LogSafe(raw))
	}
	return res, nil
}

// PlainText strips HTML markup, decodes entities and fits Discord's limit.
func PlainText(s string) string {
	s = html.UnescapeString(tagRe.ReplaceAllString(s, ""))
	r := []rune(s)
	if len(r) > discordLimit {
		s = string(r[:discordLimit-1]) + "…"
	}
	return s
}
