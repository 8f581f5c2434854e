package diag

import (
	"testing"

	"demomark/internal/source"
)

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		MdUnterminatedFence:   "MD1001",
		DemoSourceInvalid:     "DEMO2001",
		PrjDuplicatePage:      "PRJ5002",
		InternalUnknownBlock:  "INT9001",
		InternalUnknownInline: "INT9003",
		UnknownCode:           "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if MdMalformedLink.String() != "[MD1002]: Malformed link" {
		t.Errorf("unexpected String(): %s", MdMalformedLink.String())
	}
}

func TestFirstErrorReporter(t *testing.T) {
	bag := NewBag(10)
	r := &FirstErrorReporter{Next: BagReporter{Bag: bag}}

	r.Report(MdInfo, SevInfo, source.Span{}, "info", nil)
	if r.Failed() {
		t.Fatal("info must not fail the reporter")
	}
	r.Report(MdUnterminatedFence, SevError, source.Span{Start: 3}, "first", nil)
	r.Report(MdMalformedLink, SevError, source.Span{Start: 1}, "second", nil)

	first, ok := r.First()
	if !ok || first.Message != "first" {
		t.Fatalf("expected first error to be kept, got %+v", first)
	}
	if bag.Len() != 3 {
		t.Errorf("expected all diagnostics forwarded, got %d", bag.Len())
	}
	bag.Sort()
	if bag.Items()[0].Message != "info" || bag.Items()[1].Message != "second" {
		t.Errorf("unexpected order after sort: %+v", bag.Items())
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(MdMalformedLink, source.Span{}, "a")) {
		t.Fatal("first add must succeed")
	}
	if bag.Add(NewError(MdMalformedLink, source.Span{}, "b")) {
		t.Fatal("second add must hit the limit")
	}
	if !bag.HasErrors() {
		t.Fatal("expected HasErrors")
	}
}
