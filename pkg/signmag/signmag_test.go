package signmag

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 255, -255, 1 << 32, -(1 << 32), 1<<62 - 1, -(1<<62 - 1)}
	buf := make([]byte, 8)
	for _, c := range cases {
		Encode(c, buf)
		got := Decode(buf)
		if got != c {
			t.Fatalf("round trip %d: got %d", c, got)
		}
	}
}

func TestNegativeZero(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 0, 0, 0, 0x80}
	if got := Decode(buf); got != 0 {
		t.Fatalf("negative zero: got %d, want 0", got)
	}
}

func TestDecodeKnownBytes(t *testing.T) {
	// 5 encoded as little-endian sign-magnitude.
	buf := []byte{5, 0, 0, 0, 0, 0, 0, 0}
	if got := Decode(buf); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
	// -3.
	buf = []byte{3, 0, 0, 0, 0, 0, 0, 0x80}
	if got := Decode(buf); got != -3 {
		t.Fatalf("got %d, want -3", got)
	}
}
