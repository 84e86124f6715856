package metrics

import "testing"

func TestStatusClass(t *testing.T) {
	tests := map[int]string{
		0:   "error",
		200: "2xx",
		204: "2xx",
		302: "3xx",
		401: "4xx",
		503: "5xx",
	}
	for code, want := range tests {
		if got := StatusClass(code); got != want {
			t.Errorf("StatusClass(%d) = %q, want %q", code, got, want)
		}
	}
}
