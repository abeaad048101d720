package sha256

import "testing"

func TestHasherHash(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":            "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		"hello world": "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
	}
	h := New()
	for in, want := range tests {
		if got := h.Hash([]byte(in)); got != want {
			t.Fatalf("Hash(%q) = %s, want %s", in, got, want)
		}
	}
}
