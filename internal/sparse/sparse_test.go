package sparse

import "testing"

func TestSparseSet_Basic(t *testing.T) {
	s := NewSparseSet(100)

	if !s.IsEmpty() {
		t.Error("new set should be empty")
	}
	if s.Contains(0) {
		t.Error("empty set should not contain 0")
	}

	s.Insert(5)
	if !s.Contains(5) {
		t.Error("set should contain 5 after insert")
	}
	s.Insert(5)
	if s.Size() != 1 {
		t.Errorf("Size() = %d, want 1 (duplicate insert is a no-op)", s.Size())
	}
}

func TestSparseSet_Remove(t *testing.T) {
	s := NewSparseSet(10)
	s.Insert(1)
	s.Insert(3)
	s.Insert(5)

	s.Remove(3)
	if s.Contains(3) {
		t.Error("3 should have been removed")
	}
	if s.Size() != 2 {
		t.Errorf("Size() = %d, want 2", s.Size())
	}
	if !s.Contains(1) || !s.Contains(5) {
		t.Error("remaining elements should still be present")
	}

	s.Remove(99) // not present, no-op
	if s.Size() != 2 {
		t.Errorf("Size() after removing absent value = %d, want 2", s.Size())
	}
}

func TestSparseSet_Clear(t *testing.T) {
	s := NewSparseSet(10)
	s.Insert(1)
	s.Insert(2)
	s.Clear()

	if !s.IsEmpty() {
		t.Error("set should be empty after Clear")
	}
	if s.Contains(1) || s.Contains(2) {
		t.Error("cleared set should not contain prior elements")
	}

	s.Insert(1)
	if !s.Contains(1) || s.Size() != 1 {
		t.Error("set should be reusable after Clear")
	}
}

func TestSparseSet_ValuesAndIter(t *testing.T) {
	s := NewSparseSet(10)
	s.Insert(7)
	s.Insert(2)
	s.Insert(5)

	seen := make(map[uint32]bool)
	for _, v := range s.Values() {
		seen[v] = true
	}
	if len(seen) != 3 || !seen[7] || !seen[2] || !seen[5] {
		t.Errorf("Values() = %v, want {7, 2, 5}", s.Values())
	}

	count := 0
	s.Iter(func(uint32) { count++ })
	if count != 3 {
		t.Errorf("Iter visited %d elements, want 3", count)
	}
}

func TestSparseSet_ContainsOutOfRange(t *testing.T) {
	s := NewSparseSet(4)
	if s.Contains(100) {
		t.Error("Contains should reject values beyond capacity rather than panic")
	}
}
