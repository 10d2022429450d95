package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"prizewheel/internal/conf"

	"github.com/google/wire"
	jsoniter "github.com/json-iterator/go"
)

var ProviderSet = wire.NewSet(NewFeishu)

type Feishu struct {
	WebhookURL    string
	SigningSecret string
	Prefix        string
	Client        *http.Client
	// now 测试中固定签名时间
	now func() time.Time
}

func NewFeishu(c *conf.Notify) Notifier {
	if !c.GetEnabled() || strings.TrimSpace(c.GetWebhookUrl()) == "" {
		return Noop{}
	}
	return &Feishu{
		WebhookURL:    strings.TrimSpace(c.GetWebhookUrl()),
		SigningSecret: strings.TrimSpace(c.GetSigningSecret()),
		Prefix:        strings.TrimSpace(c.GetPrefix()),
		Client:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *Feishu) Send(ctx context.Context, msg *Message) error {
	if f.WebhookURL == "" || msg == nil {
		return nil
	}

	body, err := jsoniter.Marshal(f.card(msg))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu: status %d", resp.StatusCode)
	}
	var r struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	_ = jsoniter.NewDecoder(resp.Body).Decode(&r)
	if r.Code != 0 {
		return fmt.Errorf("feishu: code=%d msg=%s", r.Code, r.Msg)
	}
	return nil
}

func (f *Feishu) card(msg *Message) map[string]any {
	content := msg.Content
	if content == "" {
		content = msg.Title
	}
	title := msg.Title
	if title == "" {
		title = "通知"
	}
	if f.Prefix != "" {
		title = f.Prefix + " " + title
	}
	level := msg.Level
	if level == "" {
		level = LevelInfo
	}
	payload := map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"config":   map[string]bool{"wide_screen_mode": true},
			"header":   map[string]any{"title": map[string]string{"tag": "plain_text", "content": title}, "template": string(level)},
			"elements": []map[string]any{{"tag": "div", "text": map[string]string{"tag": "lark_md", "content": content}}},
		},
	}
	if f.SigningSecret != "" {
		now := time.Now
		if f.now != nil {
			now = f.now
		}
		ts := strconv.FormatInt(now().Unix(), 10)
		payload["timestamp"] = ts
		payload["sign"] = f.sign(ts)
	}
	return payload
}

// sign 飞书加签：HMAC-SHA256(key=timestamp+\n+secret, message="")
func (f *Feishu) sign(ts string) string {
	key := ts + "\n" + f.SigningSecret
	h := hmac.New(sha256.New, []byte(key))
	h.Write(nil)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
