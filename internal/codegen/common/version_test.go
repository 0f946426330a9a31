package common

import "testing"

func TestGetVersionDevFallback(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = ""
	v, err := GetVersion()
	if err != nil {
		t.Fatalf("GetVersion failed: %v", err)
	}
	if v != "0.0.1-dev" {
		t.Errorf("expected dev fallback, got %q", v)
	}

	Version = "v1.4.0"
	v, err = GetVersion()
	if err != nil {
		t.Fatalf("GetVersion failed: %v", err)
	}
	if v != "1.4.0" {
		t.Errorf("expected v prefix stripped, got %q", v)
	}

	Version = "garbage"
	if _, err := GetVersion(); err == nil {
		t.Error("expected error for malformed version")
	}
}

func TestLowerCamel(t *testing.T) {
	cases := map[string]string{
		"AppWorld":      "appWorld",
		"appWorld":      "appWorld",
		"X":             "x",
		"":              "",
		"CheckoutWorld": "checkoutWorld",
	}
	for in, expected := range cases {
		if got := LowerCamel(in); got != expected {
			t.Errorf("LowerCamel(%q) = %q, expected %q", in, got, expected)
		}
	}
}
