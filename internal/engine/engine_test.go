package engine

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/nmaxcom/smartpad-go/internal/evaluator"
	"github.com/nmaxcom/smartpad-go/internal/fx"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC) }
}

func TestEvaluateSheetReactive(t *testing.T) {
	e := New(WithClock(fixedClock()))
	nodes, err := e.EvaluateSheet(strings.Join([]string{
		"price = 3",
		"qty = 2",
		"total = price * qty =>",
	}, "\n"))
	if err != nil {
		t.Fatal(err)
	}
	if nodes[2].DisplayText != "total = price * qty => 6" {
		t.Fatalf("display = %q", nodes[2].DisplayText)
	}

	e.EvaluateLine("price = 4", 1)
	if v, _ := e.Variables().Get("total"); v.(value.Number).V != 8 {
		t.Fatalf("total = %v, want 8", v)
	}
	node := e.EvaluateLine("total = price * qty =>", 3)
	if node.DisplayText != "total = price * qty => 8" {
		t.Fatalf("display = %q", node.DisplayText)
	}
}

func TestFrontMatter(t *testing.T) {
	e := New(WithClock(fixedClock()))
	nodes, err := e.EvaluateSheet(strings.Join([]string{
		"---",
		"decimalPlaces: 2",
		"groupThousands: true",
		"aliases:",
		"  workweek: 40 h",
		"---",
		"2 workweeks to h =>",
		"1234567.891 =>",
	}, "\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(nodes[0].DisplayText, "80 h") {
		t.Errorf("alias line = %q", nodes[0].DisplayText)
	}
	if !strings.Contains(nodes[1].DisplayText, "1,234,567.89") {
		t.Errorf("grouping line = %q", nodes[1].DisplayText)
	}
}

func TestFrontMatterAbsent(t *testing.T) {
	meta, body, err := ExtractFrontMatter("x = 1\nx =>")
	if err != nil || meta != nil || body != "x = 1\nx =>" {
		t.Fatalf("meta=%v body=%q err=%v", meta, body, err)
	}
}

func TestFXConversion(t *testing.T) {
	snapshot := &fx.Snapshot{Base: "USD", Rates: map[string]float64{"EUR": 0.5}}
	e := New(WithFXSnapshot(snapshot), WithClock(fixedClock()))
	node := e.EvaluateLine("$100 to EUR =>", 1)
	if !strings.Contains(node.DisplayText, "50 EUR") {
		t.Fatalf("display = %q", node.DisplayText)
	}

	bare := New(WithClock(fixedClock()))
	node = bare.EvaluateLine("$100 to EUR =>", 1)
	if node.Kind != evaluator.RenderError || node.ErrKind != "RateUnavailable" {
		t.Fatalf("node = %+v, want RateUnavailable", node)
	}
}

func TestListMaxLengthOption(t *testing.T) {
	e := New(WithListMaxLength(2), WithClock(fixedClock()))
	if node := e.EvaluateLine("xs = 1, 2", 1); node.Kind == evaluator.RenderError {
		t.Fatalf("exact max length must pass: %+v", node)
	}
	if node := e.EvaluateLine("ys = 1, 2, 3", 2); node.Kind != evaluator.RenderError || node.ErrKind != "ListTooLong" {
		t.Fatalf("over max length must error: %+v", node)
	}
}

func TestTraceWriter(t *testing.T) {
	var buf bytes.Buffer
	e := New(WithTrace(&buf), WithClock(fixedClock()))
	if _, err := e.EvaluateSheet("price = 3\nprice * 2 =>"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "variable") || !strings.Contains(out, "mathResult") {
		t.Fatalf("trace output = %q", out)
	}
}

func TestParseContent(t *testing.T) {
	e := New(WithClock(fixedClock()))
	prog := e.ParseContent("price = 3\nsome notes\nprice * 2 =>")
	if len(prog.Lines) != 3 {
		t.Fatalf("lines = %d", len(prog.Lines))
	}
}

// TestSheetTranscript locks a whole-sheet evaluation transcript so
// rendering drift is visible in review.
func TestSheetTranscript(t *testing.T) {
	e := New(WithClock(fixedClock()))
	nodes, err := e.EvaluateSheet(strings.Join([]string{
		"# groceries and travel",
		"budget = $250",
		"spent = $12, $15, $9, $100",
		"left = budget - sum(spent) =>",
		"100 ft to m =>",
		"trip = 2026-08-07 + 3 business days =>",
	}, "\n"))
	if err != nil {
		t.Fatal(err)
	}
	var lines []string
	for _, n := range nodes {
		lines = append(lines, string(n.Kind)+" | "+n.DisplayText)
	}
	snaps.MatchSnapshot(t, strings.Join(lines, "\n"))
}
