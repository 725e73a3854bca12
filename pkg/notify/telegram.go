package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/message"
	"github.com/shuliakovsky/peer-monitor/pkg/secrets"
	"github.com/shuliakovsky/peer-monitor/pkg/transport"
)

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          *bool  `json:"ok"`
	Description string `json:"description"`
}

type Telegram struct {
	maxLen int
	apiURL string
	token  string
	chatID string
	http   *http.Client
	logger *zap.Logger
}

func NewTelegram(apiURL, token, chatID string, hc *http.Client, logger *zap.Logger) *Telegram {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Telegram{
		maxLen: message.MaxLength,
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		chatID: chatID,
		http:   hc,
		logger: logger,
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Send posts text as HTML with link previews disabled. Text over the API
// limit goes out as several messages; the first rejected part ends the send.
func (t *Telegram) Send(ctx context.Context, text string) (Result, error) {
	var (
		res Result
		err error
	)
	for _, part := range message.Split(text, t.maxLen) {
		res, err = t.send(ctx, part)
		if err != nil || !res.OK {
			break
		}
	}
	return res, err
}

func (t *Telegram) send(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(telegramMessage{
		ChatID:                t.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return Result{}, err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := transport.LogRequest(t.logger, "telegram", http.MethodPost, url, nil, nil)
	resp, err := t.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("telegram send: %s", secrets.RedactString(err.Error()))
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	transport.LogResponse(t.logger, "telegram", resp.StatusCode, raw, start)

	var tr telegramResponse
	_ = json.Unmarshal(raw, &tr)
	res := Result{
		OK:          resp.StatusCode/100 == 2 && (tr.OK == nil || *tr.OK),
		Status:      resp.StatusCode,
		Description: tr.Description,
	}
	if res.Description == "" && !res.OK {
		res.Description = strings.TrimSpace(string(transport.LogSafe(raw)))
	}
	return res, nil
}
