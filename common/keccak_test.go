package common

import (
	"testing"
)

func TestKeccak256_KnownVectors(t *testing.T) {
	tests := []struct {
		input []byte
		want  string
	}{
		{nil, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{[]byte{}, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{[]byte("abc"), "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, test := range tests {
		if got := Keccak256(test.input).String(); got != test.want {
			t.Errorf("unexpected hash for %q, wanted %s, got %s", test.input, test.want, got)
		}
	}
}

func TestKeccak256_IsDeterministicAcrossPooledHashers(t *testing.T) {
	data := []byte("some input hashed more than once")
	want := Keccak256(data)
	for i := 0; i < 100; i++ {
		if got := Keccak256(data); got != want {
			t.Fatalf("unexpected hash on iteration %d, wanted %v, got %v", i, want, got)
		}
	}
}

func BenchmarkKeccak256(b *testing.B) {
	data := make([]byte, 1024)
	for i := 0; i < b.N; i++ {
		Keccak256(data)
	}
}
