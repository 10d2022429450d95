package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"prizewheel/pkg/xgo"
)

type options struct {
	baseURL     string
	wheelID     string
	players     int
	spins       int
	concurrency int
	poll        time.Duration
}

type spinResult struct {
	SpinNumber int    `json:"spin_number"`
	PrizeLabel string `json:"prize_label"`
	Tier       string `json:"tier"`
}

type sessionReply struct {
	SessionID string `json:"session_id"`
}

type spinReply struct {
	Accepted bool        `json:"accepted"`
	Result   *spinResult `json:"result"`
}

type revealReply struct {
	Revealed bool        `json:"revealed"`
	Result   *spinResult `json:"result"`
}

type tally struct {
	mu      sync.Mutex
	labels  map[string]int
	spins   atomic.Int64
	failed  atomic.Int64
	latency atomic.Int64
}

func main() {
	baseURL := flag.String("base-url", "http://127.0.0.1:8000", "")
	wheelID := flag.String("wheel", "", "wheel id, empty for default")
	players := flag.Int("players", 20, "")
	spins := flag.Int("spins", 30, "spins per player")
	concurrency := flag.Int("concurrency", 6, "")
	poll := flag.Duration("poll", 250*time.Millisecond, "reveal poll interval")
	flag.Parse()

	opts := options{
		baseURL:     strings.TrimRight(*baseURL, "/"),
		wheelID:     *wheelID,
		players:     *players,
		spins:       *spins,
		concurrency: max(*concurrency, 1),
		poll:        *poll,
	}
	client := &http.Client{Timeout: 30 * time.Second}
	t := &tally{labels: make(map[string]int)}

	start := time.Now()
	runConcurrent(client, opts, t)
	elapsed := time.Since(start)

	fmt.Printf("players=%d spins=%d failed=%d elapsed=%s spins/s=%.2f avg_spin_latency=%s\n",
		opts.players, t.spins.Load(), t.failed.Load(), xgo.ShortDuration(elapsed),
		xgo.PerSecond(t.spins.Load(), elapsed),
		xgo.ShortDuration(avg(t.latency.Load(), t.spins.Load())))
	labels := make([]string, 0, len(t.labels))
	for l := range t.labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		n := t.labels[l]
		fmt.Printf("  %-24s %6d  %6.2f%%\n", l, n, xgo.Pct(int64(n), t.spins.Load()))
	}
}

func avg(total, n int64) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(total / n)
}

func runConcurrent(client *http.Client, opts options, t *tally) {
	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < opts.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if err := play(client, opts, t); err != nil {
					t.failed.Add(1)
					fmt.Printf("player %d failed: %v\n", p, err)
				}
			}
		}()
	}
	for p := 0; p < opts.players; p++ {
		jobs <- p
	}
	close(jobs)
	wg.Wait()
}

// play 一个玩家：建会话，逐次旋转并轮询揭晓，最后删除会话
func play(client *http.Client, opts options, t *tally) error {
	var sess sessionReply
	if err := call(client, http.MethodPost, opts.baseURL+"/wheel/sessions", map[string]any{"wheel_id": opts.wheelID}, &sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	base := opts.baseURL + "/wheel/sessions/" + sess.SessionID
	defer func() { _ = call(client, http.MethodDelete, base, nil, nil) }()

	for i := 0; i < opts.spins; i++ {
		began := time.Now()
		var sr spinReply
		if err := call(client, http.MethodPost, base+"/spin", nil, &sr); err != nil {
			return fmt.Errorf("spin: %w", err)
		}
		if !sr.Accepted {
			return fmt.Errorf("spin %d not accepted", i+1)
		}
		res, err := waitReveal(client, base, opts.poll)
		if err != nil {
			return err
		}
		if res.SpinNumber != sr.Result.SpinNumber {
			return fmt.Errorf("revealed spin %d, requested %d", res.SpinNumber, sr.Result.SpinNumber)
		}
		t.spins.Add(1)
		t.latency.Add(int64(time.Since(began)))
		t.mu.Lock()
		t.labels[res.PrizeLabel]++
		t.mu.Unlock()
	}
	return nil
}

func waitReveal(client *http.Client, base string, poll time.Duration) (*spinResult, error) {
	deadline := time.Now().Add(time.Minute)
	for time.Now().Before(deadline) {
		time.Sleep(poll)
		var rr revealReply
		if err := call(client, http.MethodPost, base+"/reveal", nil, &rr); err != nil {
			return nil, fmt.Errorf("reveal: %w", err)
		}
		if rr.Revealed {
			return rr.Result, nil
		}
	}
	return nil, fmt.Errorf("reveal timed out")
}

func call(client *http.Client, method, url string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := xgo.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return xgo.Unmarshal(data, out)
}
