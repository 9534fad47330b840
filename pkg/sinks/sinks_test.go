package sinks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const yamlSinks = `
sinks:
  - id: console
    type: log
  - id: hook
    type: http
    http:
      url: https://hooks.example.com/results
  - id: archive
    type: sqs
    enabled: false
    sqs:
      uri: https://sqs.ap-south-1.amazonaws.com/123/results
      region: ap-south-1
`

func writeTempSinks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sinks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadRegistryAndEnabled(t *testing.T) {
	reg, err := LoadRegistry(writeTempSinks(t, yamlSinks))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := len(reg.All()); got != 3 {
		t.Fatalf("expected 3 sinks, got %d", got)
	}

	enabled := reg.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled sinks, got %d", len(enabled))
	}
	for _, cfg := range enabled {
		if cfg.ID == "archive" {
			t.Fatalf("disabled sink returned by Enabled")
		}
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	dup := `
sinks:
  - id: console
    type: log
  - id: console
    type: log
`
	if _, err := LoadRegistry(writeTempSinks(t, dup)); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidateSinkConfigRequiresTypeSettings(t *testing.T) {
	cases := []SinkConfig{
		{ID: "x", Type: TypeHTTP},
		{ID: "x", Type: TypeSQS},
		{ID: "x", Type: TypeSNS},
		{ID: "x", Type: TypePubSub},
		{ID: "x", Type: "kafka"},
		{ID: "x"},
		{Type: TypeLog},
	}
	for i, cfg := range cases {
		if err := validateSinkConfig(cfg); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, cfg)
		}
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	built, err := BuildAll(context.Background(), reg, []SinkConfig{
		{ID: "console", Type: TypeLog},
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPSinkConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 1}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(built) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(built))
	}
}

func TestBuildAllFailsOnUnknownType(t *testing.T) {
	reg := NewRegistry(nil)
	if _, err := BuildAll(context.Background(), reg, []SinkConfig{{ID: "x", Type: TypeLog}}, nil); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}
