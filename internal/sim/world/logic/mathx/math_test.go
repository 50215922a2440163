package mathx

import "testing"

func TestFloorDivMod(t *testing.T) {
	cases := []struct {
		a, b, q, m int
	}{
		{7, 4, 1, 3},
		{-7, 4, -2, 1},
		{-8, 4, -2, 0},
		{0, 4, 0, 0},
		{3, 16, 0, 3},
		{-1, 16, -1, 15},
	}
	for _, c := range cases {
		if q := FloorDiv(c.a, c.b); q != c.q {
			t.Fatalf("FloorDiv(%d,%d) = %d, want %d", c.a, c.b, q, c.q)
		}
		if m := Mod(c.a, c.b); m != c.m {
			t.Fatalf("Mod(%d,%d) = %d, want %d", c.a, c.b, m, c.m)
		}
	}
}

func TestHash_DeterministicAndSeedSensitive(t *testing.T) {
	if Hash2(1, 10, -5) != Hash2(1, 10, -5) {
		t.Fatalf("Hash2 not deterministic")
	}
	if Hash2(1, 10, -5) == Hash2(2, 10, -5) {
		t.Fatalf("Hash2 ignores the seed")
	}
	if Hash3(1, 1, 2, 3) == Hash3(1, 3, 2, 1) {
		t.Fatalf("Hash3 symmetric across axes")
	}
}

func TestUnit_Range(t *testing.T) {
	for i := -50; i < 50; i++ {
		if v := Unit2(42, i, -i); v < 0 || v >= 1 {
			t.Fatalf("Unit2 out of range: %v", v)
		}
		if v := Unit3(42, i, i/2, -i); v < 0 || v >= 1 {
			t.Fatalf("Unit3 out of range: %v", v)
		}
	}
}

func TestClamp(t *testing.T) {
	if ClampInt(5, 0, 3) != 3 || ClampInt(-1, 0, 3) != 0 || ClampInt(2, 0, 3) != 2 {
		t.Fatalf("ClampInt wrong")
	}
	if ClampF(1.5, 0, 1) != 1 || ClampF(-0.5, 0, 1) != 0 || ClampF(0.25, 0, 1) != 0.25 {
		t.Fatalf("ClampF wrong")
	}
	if AbsInt(-4) != 4 || AbsInt(4) != 4 {
		t.Fatalf("AbsInt wrong")
	}
}
