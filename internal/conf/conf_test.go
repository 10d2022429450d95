package conf

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{`"5s"`, 5 * time.Second, false},
		{`"1m30s"`, 90 * time.Second, false},
		{`1000`, time.Microsecond, false},
		{`null`, 0, false},
		{`"soon"`, 0, true},
	}
	for _, tt := range tests {
		var d Duration
		err := json.Unmarshal([]byte(tt.in), &d)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: err=%v", tt.in, err)
		}
		if err == nil && d.Duration != tt.want {
			t.Fatalf("%s: got %v want %v", tt.in, d.Duration, tt.want)
		}
	}
}

func TestBootstrapScan(t *testing.T) {
	raw := `{
		"server": {"http": {"addr": "0.0.0.0:8000", "timeout": "2s"}},
		"wheel": {
			"default_wheel": "merch",
			"reveal_delay": "5s",
			"wheels": [{"id": "merch", "segments": ["A", "B"], "major_cadence": 10, "pointer_angle": 255}]
		}
	}`
	var bc Bootstrap
	if err := json.Unmarshal([]byte(raw), &bc); err != nil {
		t.Fatal(err)
	}
	if bc.Server.GetHttp().Timeout.AsDuration() != 2*time.Second {
		t.Fatalf("http timeout=%v", bc.Server.Http.Timeout)
	}
	if bc.Server.GetGrpc() != nil || bc.Data.GetRedis() != nil || bc.Notify.GetEnabled() {
		t.Fatalf("absent sections should be nil")
	}
	w := bc.Wheel.GetWheels()
	if len(w) != 1 || w[0].PointerAngle != 255 || len(w[0].Segments) != 2 {
		t.Fatalf("wheels=%+v", w)
	}
	if bc.Wheel.SessionTtl.AsDuration() != 0 {
		t.Fatalf("missing ttl should be zero")
	}
}
