package closure

import (
	"math"
	"testing"

	"github.com/wippyai/cairobind/native"
)

func TestTable_RegisterLookup(t *testing.T) {
	tbl := NewTable[string](0)

	a := tbl.Register("a")
	b := tbl.Register("b")

	if a == 0 || b == 0 {
		t.Fatalf("ids must be non-zero: %d %d", a, b)
	}
	if a == b {
		t.Fatal("ids must be distinct")
	}

	if v, ok := tbl.Lookup(a); !ok || v != "a" {
		t.Errorf("Lookup(a) = %q, %v", v, ok)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}

	if v, ok := tbl.Unregister(a); !ok || v != "a" {
		t.Errorf("Unregister(a) = %q, %v", v, ok)
	}
	if _, ok := tbl.Lookup(a); ok {
		t.Error("Lookup after Unregister should fail")
	}
	if _, ok := tbl.Unregister(a); ok {
		t.Error("second Unregister should fail")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tbl.Len())
	}
}

func TestTable_SkipsZeroOnWrap(t *testing.T) {
	tbl := NewTable[int](native.Closure(math.MaxUint32))

	first := tbl.Register(1)
	second := tbl.Register(2)

	if first != math.MaxUint32 {
		t.Errorf("first = %d, want MaxUint32", first)
	}
	if second != 1 {
		t.Errorf("second = %d, want 1 (zero skipped)", second)
	}
}

func TestTable_SkipsLiveIDs(t *testing.T) {
	tbl := NewTable[int](native.Closure(math.MaxUint32))
	tbl.Register(1) // MaxUint32
	tbl.Register(2) // 1
	tbl.next = math.MaxUint32

	id := tbl.Register(3)
	if id != 2 {
		t.Errorf("id = %d, want 2 (live ids skipped)", id)
	}
}

func TestTable_Each(t *testing.T) {
	tbl := NewTable[int](100)
	for i := range 5 {
		tbl.Register(i)
	}

	sum := 0
	tbl.Each(func(id native.Closure, v int) bool {
		if id < 100 {
			t.Errorf("id %d below start", id)
		}
		sum += v
		return true
	})
	if sum != 10 {
		t.Errorf("sum = %d, want 10", sum)
	}

	calls := 0
	tbl.Each(func(native.Closure, int) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("Each should stop after false, got %d calls", calls)
	}
}

func TestTable_ReserveCommit(t *testing.T) {
	tbl := NewTable[string](1)

	id := tbl.Reserve()
	if _, ok := tbl.Lookup(id); ok {
		t.Error("reserved id visible before Commit")
	}
	if other := tbl.Register("x"); other == id {
		t.Error("Register reused a reserved id")
	}
	if !tbl.Commit(id, "v") {
		t.Fatal("Commit of reserved id failed")
	}
	if v, ok := tbl.Lookup(id); !ok || v != "v" {
		t.Errorf("Lookup after Commit = %q, %v", v, ok)
	}
	if tbl.Commit(id, "again") {
		t.Error("second Commit succeeded")
	}

	c := tbl.Reserve()
	tbl.Cancel(c)
	if tbl.Commit(c, "late") {
		t.Error("Commit after Cancel succeeded")
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}
}
