package caption

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestSplitTwoParts(t *testing.T) {
	got := Split("Top line | Bottom line")
	if !reflect.DeepEqual(got, []string{"Top line", "Bottom line"}) {
		t.Fatalf("split mismatch: %q", got)
	}
	got = Split("first - second\nthird")
	if !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("只取前两段，实际 %q", got)
	}
	got = Split("line one\nline two")
	if !reflect.DeepEqual(got, []string{"line one", "line two"}) {
		t.Fatalf("newline split mismatch: %q", got)
	}
}

func TestSplitSingleCaption(t *testing.T) {
	got := Split("Single caption")
	if !reflect.DeepEqual(got, []string{"Single caption"}) {
		t.Fatalf("expected caption unchanged, got %q", got)
	}
	got = Split("  padded  ")
	if !reflect.DeepEqual(got, []string{"  padded  "}) {
		t.Fatalf("单段文案应原样返回（不去空白），实际 %q", got)
	}
}

func TestTemplateSource(t *testing.T) {
	src := TemplateSource{}
	got, err := src.Captions(context.Background(), "Mondays", "savage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 || got[0] != "Mondays said what now?" {
		t.Fatalf("savage captions mismatch: %q", got)
	}

	got, err = src.Captions(context.Background(), "coffee", "unknown-vibe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != "When coffee hits different" {
		t.Fatalf("unknown vibe should fall back to funny: %q", got[0])
	}
	if parts := Split(got[2]); len(parts) != 2 || parts[0] != "coffee: exists" {
		t.Fatalf("template should split into two lines: %q", parts)
	}
}

func TestTemplateSourceErrors(t *testing.T) {
	if _, err := (TemplateSource{}).Captions(context.Background(), "  ", "funny"); !errors.Is(err, ErrEmptyTopic) {
		t.Fatalf("expected ErrEmptyTopic, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (TemplateSource{}).Captions(ctx, "x", "funny"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEveryVibeHasFiveTemplates(t *testing.T) {
	for _, vibe := range Vibes {
		if n := len(templates[vibe]); n != 5 {
			t.Fatalf("vibe %s has %d templates", vibe, n)
		}
	}
}
