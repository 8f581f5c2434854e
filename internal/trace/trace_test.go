package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStreamTracerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	span := Begin(tr, ScopePass, "parse", 0)
	Begin(tr, ScopePage, "page:a.md", span.ID()).End("")
	span.Attr("blocks", "3").Attr("demos", "1").End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got:\n%s", buf.String())
	}
	if !strings.Contains(lines[0], "pass   > parse") {
		t.Fatalf("bad begin line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "< parse ") || !strings.HasSuffix(lines[1], "ms (ok) blocks=3 demos=1") {
		t.Fatalf("bad end line: %q", lines[1])
	}
}

func TestSpanEndIsIdempotent(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	s := Begin(r, ScopeDriver, "build", 0)
	s.End("")
	if d := s.End("again"); d != 0 {
		t.Fatalf("second End returned %v", d)
	}
	if n := len(r.Snapshot()); n != 2 {
		t.Fatalf("want begin+end, got %d events", n)
	}

	var nilSpan *Span
	nilSpan.Attr("k", "v").End("")
	Begin(Nop, ScopeDriver, "x", 0).Attr("k", "v").End("")
}

func TestNDJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeBlock, "cache_put_failed", "a.md", 7)
	tr.Emit(&Event{Kind: KindSpanEnd, Scope: ScopePage, Name: "page", Dur: 1500 * time.Microsecond, Attrs: []Attr{{"cache", "miss"}}})

	dec := json.NewDecoder(&buf)
	var point, end map[string]any
	if err := dec.Decode(&point); err != nil {
		t.Fatal(err)
	}
	if err := dec.Decode(&end); err != nil {
		t.Fatal(err)
	}
	if point["kind"] != "point" || point["scope"] != "block" || point["parent_id"] != float64(7) {
		t.Fatalf("bad point: %v", point)
	}
	if end["dur_us"] != float64(1500) || end["attrs"].(map[string]any)["cache"] != "miss" {
		t.Fatalf("bad end: %v", end)
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopePage, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("dump: %q", buf.String())
	}

	// на уровне error точки не записываются
	quiet := NewRingTracer(2, LevelError)
	Point(quiet, ScopeDriver, "x", "", 0)
	if len(quiet.Snapshot()) != 0 {
		t.Fatal("error level must not record points")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer must be Nop")
	}
	tr := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatal("tracer not propagated")
	}
	ctx = WithSpanContext(ctx, SpanContext{SpanID: 42})
	if CurrentSpan(ctx).SpanID != 42 || CurrentSpan(context.Background()).SpanID != 0 {
		t.Fatal("span context not propagated")
	}
}

func TestParseLevelModeFormat(t *testing.T) {
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth || m.String() != "both" {
		t.Fatalf("ParseMode: %v %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
	if LevelDetail.ShouldEmit(ScopeBlock) || !LevelDetail.ShouldEmit(ScopePage) || LevelOff.ShouldEmit(ScopeDriver) {
		t.Fatal("ShouldEmit table is wrong")
	}
}

func TestNewBuildsTracers(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || Enabled(tr) {
		t.Fatalf("expected disabled tracer, got %v %v", tr, err)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil || !Enabled(tr) {
		t.Fatalf("expected enabled tracer: %v", err)
	}
	Begin(tr, ScopeDriver, "build", 0).End("")
	if !strings.Contains(buf.String(), "build") {
		t.Fatalf("stream half of the tee did not write: %q", buf.String())
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{Level: LevelPhase, Mode: 9}); err == nil {
		t.Fatal("unknown mode must fail")
	}
}
