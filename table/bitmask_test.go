package table

import "testing"

func TestBitmask_SetAndTest(t *testing.T) {
	m := NewBitmask(10)
	m.Set(0)
	m.Set(9)
	for i := 0; i < 10; i++ {
		want := i == 0 || i == 9
		if m.Test(i) != want {
			t.Errorf("Test(%d) = %v, want %v", i, m.Test(i), want)
		}
	}
}

func TestBitmask_TestOutOfRange(t *testing.T) {
	m := NewBitmask(10)
	if m.Test(-1) || m.Test(10) || m.Test(1000) {
		t.Error("Test() should report false for indices outside [0, size)")
	}
}

func TestBitmask_CrossesWordBoundary(t *testing.T) {
	m := NewBitmask(200)
	m.Set(63)
	m.Set(64)
	m.Set(127)
	m.Set(128)
	for _, i := range []int{63, 64, 127, 128} {
		if !m.Test(i) {
			t.Errorf("Test(%d) = false, want true", i)
		}
	}
	if m.Test(65) {
		t.Error("Test(65) should be false")
	}
}

func TestBitmask_Clear(t *testing.T) {
	m := NewBitmask(10)
	m.Set(3)
	m.Clear()
	if m.Test(3) {
		t.Error("Test(3) should be false after Clear()")
	}
}

func TestBitmask_SetTokens(t *testing.T) {
	m := NewBitmask(10)
	m.Set(2)
	m.Set(5)
	m.Set(9)
	got := m.SetTokens()
	want := []int{2, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("SetTokens() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SetTokens() = %v, want %v", got, want)
		}
	}
}

func TestBitmask_CopyFrom(t *testing.T) {
	src := NewBitmask(10)
	src.Set(4)
	dst := NewBitmask(10)
	dst.CopyFrom(src)
	if !dst.Test(4) {
		t.Error("CopyFrom() did not copy the set bit")
	}
	src.Set(7)
	if dst.Test(7) {
		t.Error("CopyFrom() should be a snapshot, not aliasing src's storage")
	}
}

func TestBitmask_Bytes(t *testing.T) {
	m := NewBitmask(16)
	m.Set(0)
	m.Set(8)
	b := m.Bytes()
	if len(b) != 2 {
		t.Fatalf("Bytes() length = %d, want 2", len(b))
	}
	if b[0] != 1 || b[1] != 1 {
		t.Errorf("Bytes() = %v, want [1 1]", b)
	}
}
