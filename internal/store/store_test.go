package store

import (
	"strings"
	"testing"
	"time"

	"github.com/nmaxcom/smartpad-go/internal/value"
)

func testClock() func() time.Time {
	t := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestSetGetTimestamps(t *testing.T) {
	s := New()
	s.SetClock(testClock())

	if err := s.Set("price", "3", value.Number{V: 3}, nil); err != nil {
		t.Fatal(err)
	}
	rec, _ := s.Record("price")
	created := rec.CreatedAt

	if err := s.Set("price", "4", value.Number{V: 4}, nil); err != nil {
		t.Fatal(err)
	}
	rec, _ = s.Record("price")
	if rec.CreatedAt != created {
		t.Error("CreatedAt must be immutable per name")
	}
	if !rec.UpdatedAt.After(created) {
		t.Error("UpdatedAt must refresh on write")
	}
	if v, _ := s.Get("price"); v.(value.Number).V != 4 {
		t.Errorf("Get(price) = %v", v)
	}
}

func TestTopologicalOrder(t *testing.T) {
	s := New()
	// price -> cost -> total; qty -> cost
	s.Set("price", "3", value.Number{V: 3}, nil)
	s.Set("qty", "2", value.Number{V: 2}, nil)
	s.Set("cost", "price * qty", value.Number{V: 6}, []string{"price", "qty"})
	s.Set("total", "cost + 1", value.Number{V: 7}, []string{"cost"})

	order := s.DependentsOf("price")
	if len(order) != 2 || order[0] != "cost" || order[1] != "total" {
		t.Fatalf("DependentsOf(price) = %v, want [cost total]", order)
	}
}

func TestTopologicalOrderDiamond(t *testing.T) {
	s := New()
	s.Set("a", "1", value.Number{V: 1}, nil)
	s.Set("b", "a", value.Number{V: 1}, []string{"a"})
	s.Set("c", "a", value.Number{V: 1}, []string{"a"})
	s.Set("d", "b + c", value.Number{V: 2}, []string{"b", "c"})

	order := s.DependentsOf("a")
	if len(order) != 3 {
		t.Fatalf("order = %v, want each node exactly once", order)
	}
	if order[2] != "d" {
		t.Errorf("d must come after b and c: %v", order)
	}
}

func TestCycleDetectionAndRecovery(t *testing.T) {
	s := New()
	s.Set("a", "1", value.Number{V: 1}, nil)
	s.Set("b", "a", value.Number{V: 1}, []string{"a"})

	err := s.Set("a", "b", value.Number{V: 1}, []string{"b"})
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !s.IsCircular("a") || !s.IsCircular("b") {
		t.Error("every node on the cycle must be flagged circular")
	}
	if v, _ := s.Get("a"); v.Kind() != value.KindError {
		t.Error("offender must hold an error value")
	}

	// Breaking the cycle clears the flags chain-wide.
	if err := s.Set("a", "5", value.Number{V: 5}, nil); err != nil {
		t.Fatal(err)
	}
	if s.IsCircular("a") || s.IsCircular("b") {
		t.Error("flags must clear once the cycle is broken")
	}
}

func TestDependentsOfIncludesCycleMembers(t *testing.T) {
	s := New()
	s.Set("a", "1", value.Number{V: 1}, nil)
	s.Set("b", "a + 1", value.Number{V: 2}, []string{"a"})
	s.Set("c", "b + 1", value.Number{V: 3}, []string{"b"})
	if err := s.Set("a", "b + 1", value.Number{V: 3}, []string{"b"}); err == nil {
		t.Fatal("expected cycle error")
	}

	// The closed cycle must not starve propagation: b (on the cycle) and
	// c (downstream of it) both come back, in dependency order.
	order := s.DependentsOf("a")
	if len(order) != 2 || order[0] != "b" || order[1] != "c" {
		t.Fatalf("DependentsOf(a) = %v, want [b c]", order)
	}
}

func TestDeleteRemovesEdges(t *testing.T) {
	s := New()
	s.Set("a", "1", value.Number{V: 1}, nil)
	s.Set("b", "a", value.Number{V: 1}, []string{"a"})
	s.Delete("b")
	if got := s.DependentsOf("a"); len(got) != 0 {
		t.Errorf("DependentsOf(a) = %v after delete", got)
	}
	if s.Has("b") {
		t.Error("b still present")
	}
}

func TestDOT(t *testing.T) {
	s := New()
	s.Set("a", "1", value.Number{V: 1}, nil)
	s.Set("b", "a", value.Number{V: 1}, []string{"a"})
	dot := s.Graph().DOT()
	if !strings.Contains(dot, `"b" -> "a";`) {
		t.Errorf("DOT output missing edge:\n%s", dot)
	}
}
