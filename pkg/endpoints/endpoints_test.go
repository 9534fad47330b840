package endpoints

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const yamlRegistry = `
endpoints:
  - name: users_list
    path: /users
    expect:
      status: 200
  - name: user_by_id
    method: get
    path: /users/{id}
    params:
      id: "1"
    expect:
      status: 200
      required_keys: [id, email]
`

const jsonRegistry = `{
  "endpoints": [
    {"name": "user_by_id", "method": "GET", "path": "/users/{id}"}
  ]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	reg, err := LoadRegistry(writeTemp(t, "endpoints.yaml", yamlRegistry))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := len(reg.All()); got != 2 {
		t.Fatalf("expected 2 endpoints, got %d", got)
	}

	ep, ok := reg.Endpoint("user_by_id")
	if !ok {
		t.Fatalf("user_by_id not found")
	}
	if ep.Method != "GET" {
		t.Fatalf("method not normalized: %q", ep.Method)
	}
	if ep.Expect == nil || ep.Expect.Status != 200 || len(ep.Expect.RequiredKeys) != 2 {
		t.Fatalf("expectations not loaded: %+v", ep.Expect)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	reg, err := LoadRegistry(writeTemp(t, "endpoints.json", jsonRegistry))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.Endpoint("user_by_id"); !ok {
		t.Fatalf("user_by_id not found")
	}
}

func TestParseRegistryRejectsDuplicates(t *testing.T) {
	dup := `
endpoints:
  - name: a
    path: /a
  - name: a
    path: /b
`
	if _, err := ParseRegistry([]byte(dup), ".yaml"); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}

func TestParseRegistryRejectsBadMethod(t *testing.T) {
	bad := `
endpoints:
  - name: a
    method: FETCH
    path: /a
`
	if _, err := ParseRegistry([]byte(bad), ".yaml"); err == nil {
		t.Fatalf("expected unsupported method error")
	}
}

func TestExpandSubstitutesParams(t *testing.T) {
	ep := Endpoint{Name: "user_by_id", Path: "/users/{id}/posts/{post_id}", Params: map[string]string{"id": "1"}}

	path, err := ep.Expand(map[string]string{"post_id": "42"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if path != "/users/1/posts/42" {
		t.Fatalf("path = %q", path)
	}

	// Caller params override declared defaults.
	path, err = ep.Expand(map[string]string{"id": "9", "post_id": "42"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if path != "/users/9/posts/42" {
		t.Fatalf("path = %q", path)
	}
}

func TestExpandFailsOnUnresolvedPlaceholder(t *testing.T) {
	ep := Endpoint{Name: "user_by_id", Path: "/users/{id}"}
	_, err := ep.Expand(nil)
	if err == nil {
		t.Fatalf("expected unresolved param error")
	}
	if !strings.Contains(err.Error(), "id") {
		t.Fatalf("error does not name the missing param: %v", err)
	}
}
