package observ

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	if err := tm.Track("compile", func() (string, error) { return "2 demos", nil }); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	if err := tm.Track("generate", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("Track returned %v", err)
	}
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.TotalMS != 2 {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r.Phases[0].Note != "2 demos" || r.Phases[1].Note != "error" {
		t.Fatalf("unexpected notes: %+v", r.Phases)
	}

	var buf bytes.Buffer
	if err := tm.WriteSummary(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"compile", "(2 demos)", "total", "2.00 ms"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary misses %q:\n%s", want, out)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	r := NewTimer().Report()
	if r.TotalMS != 0 || len(r.Phases) != 0 {
		t.Fatalf("unexpected report: %+v", r)
	}
}
