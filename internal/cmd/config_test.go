package cmd

import (
	"reflect"
	"testing"
)

func TestGenerateConfigTemplate(t *testing.T) {
	root := buildMapFromStruct(reflect.TypeOf(Generate{}))

	for _, key := range []string{"output", "framework", "client", "dry-run"} {
		if _, ok := root[key]; !ok {
			t.Errorf("template misses key %q", key)
		}
	}
	if _, ok := root["path"]; ok {
		t.Error("positional arguments must not land in the template")
	}
	if got := root["output"]; got != "zz_generated.worlder.go" {
		t.Errorf("output default = %v", got)
	}
	if got := root["framework"]; got != "github.com/cucumber/godog" {
		t.Errorf("framework default = %v", got)
	}
	if got := root["dry-run"]; got != false {
		t.Errorf("dry-run default = %v", got)
	}
}

func TestInspectConfigTemplate(t *testing.T) {
	root := buildMapFromStruct(reflect.TypeOf(Inspect{}))

	if _, ok := root["json"]; !ok {
		t.Error("template misses the json key")
	}
	if _, ok := root["path"]; ok {
		t.Error("positional arguments must not land in the template")
	}
}

func TestNormalizeFormat(t *testing.T) {
	cases := map[string]string{
		"json": "json",
		"YAML": "yaml",
		"yml":  "yaml",
		"toml": "toml",
		"ini":  "",
	}
	for in, want := range cases {
		if got := normalizeFormat(in); got != want {
			t.Errorf("normalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
