package main

import "testing"

func TestIsWeakSecret(t *testing.T) {
	cases := map[string]bool{
		"short":                                 true,
		"please-change-me-before-going-live-now": true,
		"atlas-your-secret-key-0123456789abcdef": true,
		"9f2c1e7a4b8d6f0e3a5c7b9d1f3e5a7c":       false,
	}
	for secret, want := range cases {
		if got := isWeakSecret(secret); got != want {
			t.Fatalf("isWeakSecret(%q)=%v want %v", secret, got, want)
		}
	}
}
