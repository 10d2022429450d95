package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prizewheel/internal/conf"

	jsoniter "github.com/json-iterator/go"
)

func TestNewFeishuDisabled(t *testing.T) {
	if _, ok := NewFeishu(nil).(Noop); !ok {
		t.Fatal("nil config should give Noop")
	}
	if _, ok := NewFeishu(&conf.Notify{Enabled: true}).(Noop); !ok {
		t.Fatal("empty webhook should give Noop")
	}
}

func TestFeishuSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = jsoniter.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"code":0,"msg":"ok"}`))
	}))
	defer srv.Close()

	f := NewFeishu(&conf.Notify{Enabled: true, WebhookUrl: srv.URL, SigningSecret: "s3cr3t", Prefix: "[wheel]"}).(*Feishu)
	f.now = func() time.Time { return time.Unix(1700000000, 0) }
	msg := BuildPrizeAwardMessage(PrizeAward{WheelID: "merch", SessionID: "20260101-merch-1", SpinNumber: 10, Segment: 4, Label: "Cap"})
	if err := f.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["timestamp"] != "1700000000" || got["sign"] != f.sign("1700000000") {
		t.Fatalf("signature fields: %v", got)
	}
	header := got["card"].(map[string]any)["header"].(map[string]any)
	if header["template"] != string(LevelAlert) {
		t.Fatalf("template=%v", header["template"])
	}
	title := header["title"].(map[string]any)["content"].(string)
	if !strings.HasPrefix(title, "[wheel] ") {
		t.Fatalf("title=%q", title)
	}
}

func TestFeishuSendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":19021,"msg":"sign match fail"}`))
	}))
	defer srv.Close()
	f := &Feishu{WebhookURL: srv.URL}
	if err := f.Send(context.Background(), &Message{Title: "x"}); err == nil {
		t.Fatal("expected error for non-zero code")
	}
}

func TestBuildSimulationMessage(t *testing.T) {
	msg := BuildSimulationMessage(SimulationSummary{
		WheelID:     "merch",
		Sessions:    2,
		Spins:       20,
		LabelCounts: map[string]int64{"Tote Bag": 4, "Cap": 2},
	})
	if msg.Level != LevelOK {
		t.Fatalf("level=%s", msg.Level)
	}
	if strings.Index(msg.Content, "Cap") > strings.Index(msg.Content, "Tote Bag") {
		t.Fatalf("labels not sorted:\n%s", msg.Content)
	}
	msg = BuildSimulationMessage(SimulationSummary{CadenceViolations: 1})
	if msg.Level != LevelAlert {
		t.Fatalf("violations should alert")
	}
}
