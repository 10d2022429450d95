package service

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"prizewheel/internal/biz"
	"prizewheel/internal/conf"
	"prizewheel/internal/notify"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	jsoniter "github.com/json-iterator/go"
)

type memRepo struct {
	mu sync.Mutex
	n  int
}

func (r *memRepo) LoadWheels(context.Context) ([]*biz.WheelDefinition, error) { return nil, nil }
func (r *memRepo) IncrAward(context.Context, string, string) error            { return nil }
func (r *memRepo) PublishManifest(context.Context, string, []byte) (string, error) {
	return "", nil
}
func (r *memRepo) AwardTally(context.Context, time.Time) (map[string]int64, error) {
	return map[string]int64{"merch:Cap": 2, "other:Cap": 1}, nil
}
func (r *memRepo) NextSessionID(_ context.Context, wheelID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return fmt.Sprintf("20260101-%s-%d", wheelID, r.n), nil
}

func newTestServer(t *testing.T) *http.Server {
	t.Helper()
	c := &conf.Wheel{
		DefaultWheel: "merch",
		RevealDelay:  conf.NewDuration(200 * time.Millisecond),
		Wheels: []*conf.Wheel_Definition{{
			Id:            "merch",
			Segments:      []string{"Cap", "Tote Bag", "Nothing", "Nothing"},
			MajorCadence:  10,
			MinorCadence:  5,
			MajorLabels:   []string{"Cap"},
			MinorLabel:    "Tote Bag",
			FallbackLabel: "Nothing",
			PointerAngle:  255,
		}},
	}
	uc, cleanup, err := biz.NewUseCase(&memRepo{}, log.DefaultLogger, c, notify.Noop{})
	if err != nil {
		t.Fatalf("NewUseCase: %v", err)
	}
	t.Cleanup(cleanup)
	srv := http.NewServer()
	RegisterWheelHTTPServer(srv, NewWheelService(uc, log.DefaultLogger))
	return srv
}

func do(t *testing.T, srv *http.Server, method, path, body string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if out != nil && rec.Code == 200 {
		if err := jsoniter.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestWheelHTTPFlow(t *testing.T) {
	srv := newTestServer(t)

	var wheels ListWheelsReply
	if code := do(t, srv, "GET", "/wheel/wheels", "", &wheels); code != 200 || wheels.Total != 1 || wheels.Default != "merch" {
		t.Fatalf("list wheels: %d %+v", code, wheels)
	}
	var m biz.Manifest
	if code := do(t, srv, "GET", "/wheel/wheels/merch/layout", "", &m); code != 200 || len(m.Sectors) != 4 || m.SectorAngle != 90 {
		t.Fatalf("layout: %d %+v", code, m)
	}
	if code := do(t, srv, "GET", "/wheel/wheels/ghost/layout", "", nil); code != 404 {
		t.Fatalf("unknown wheel: %d", code)
	}

	var sess Session
	if code := do(t, srv, "POST", "/wheel/sessions", `{"wheel_id":"merch"}`, &sess); code != 200 || sess.SessionId == "" {
		t.Fatalf("create: %d %+v", code, sess)
	}
	base := "/wheel/sessions/" + sess.SessionId

	var spin SpinReply
	if code := do(t, srv, "POST", base+"/spin", "", &spin); code != 200 || !spin.Accepted || spin.Result.PrizeLabel != "Nothing" {
		t.Fatalf("spin: %d %+v", code, spin)
	}
	var again SpinReply
	if do(t, srv, "POST", base+"/spin", "", &again); again.Accepted || !again.State.InProgress {
		t.Fatalf("second spin should be ignored: %+v", again)
	}

	var early RevealReply
	if do(t, srv, "POST", base+"/reveal", "", &early); early.Revealed || !early.Pending {
		t.Fatalf("reveal during animation should be pending: %+v", early)
	}

	var reveal RevealReply
	deadline := time.Now().Add(2 * time.Second)
	for !reveal.Revealed {
		if time.Now().After(deadline) {
			t.Fatal("reveal never arrived")
		}
		time.Sleep(10 * time.Millisecond)
		do(t, srv, "POST", base+"/reveal", "", &reveal)
	}
	if reveal.Result.Epoch != spin.Result.Epoch || reveal.State.Phase != "idle" || reveal.Pending {
		t.Fatalf("reveal=%+v", reveal)
	}
	var idle RevealReply
	if do(t, srv, "POST", base+"/reveal", "", &idle); idle.Revealed || idle.Pending {
		t.Fatalf("consumed reveal: %+v", idle)
	}

	var reset Session
	if code := do(t, srv, "POST", base+"/reset", "", &reset); code != 200 || reset.State.SpinNumber != 0 || reset.State.CumulativeRotation != 0 {
		t.Fatalf("reset: %d %+v", code, reset)
	}
	if code := do(t, srv, "DELETE", base, "", nil); code != 200 {
		t.Fatalf("delete: %d", code)
	}
	if code := do(t, srv, "GET", base, "", nil); code != 404 {
		t.Fatalf("get deleted: %d", code)
	}
}

func TestWheelHTTPSimulateAndAwards(t *testing.T) {
	srv := newTestServer(t)

	var sim SimulateReply
	if code := do(t, srv, "POST", "/wheel/simulate", `{"wheel_id":"merch","sessions":4,"spins":30}`, &sim); code != 200 || !sim.Passed {
		t.Fatalf("simulate: %d %+v", code, sim)
	}
	if sim.Report.TotalSpins != 120 || sim.Report.LabelCounts["Cap"] != 12 {
		t.Fatalf("report=%+v", sim.Report)
	}
	if code := do(t, srv, "POST", "/wheel/simulate", `{"wheel_id":"merch","sessions":0,"spins":30}`, nil); code != 400 {
		t.Fatalf("bad simulate: %d", code)
	}

	var awards AwardsReply
	if code := do(t, srv, "GET", "/wheel/awards?wheel_id=merch&date=20260101", "", &awards); code != 200 || len(awards.Counts) != 1 || awards.Date != "20260101" {
		t.Fatalf("awards: %d %+v", code, awards)
	}
	if code := do(t, srv, "GET", "/wheel/awards?date=yesterday", "", nil); code != 400 {
		t.Fatalf("bad date: %d", code)
	}
}
