package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package endpoints maps logical endpoint names to path templates so checks
// reference "user_by_id" instead of hard-coded paths. Registry files are
// YAML or JSON.

// Endpoint is one named endpoint entry declared in the registry file.
type Endpoint struct {
	Name   string            `json:"name" yaml:"name"`
	Method string            `json:"method" yaml:"method"`
	Path   string            `json:"path" yaml:"path"`
	Params map[string]string `json:"params" yaml:"params"`
	Expect *Expect           `json:"expect" yaml:"expect"`
}

// Expect declares the response expectations the runner applies to this
// endpoint. Zero values are skipped.
type Expect struct {
	Status       int               `json:"status" yaml:"status"`
	MaxMs        int64             `json:"max_ms" yaml:"max_ms"`
	RequiredKeys []string          `json:"required_keys" yaml:"required_keys"`
	Headers      map[string]string `json:"headers" yaml:"headers"`
	SchemaFile   string            `json:"schema_file" yaml:"schema_file"`
}

type registryFile struct {
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints"`
}

// Registry holds the endpoints loaded from a registry file.
type Registry struct {
	endpoints []Endpoint
	idx       map[string]Endpoint
}

// LoadRegistry loads the endpoint registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("endpoints file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open endpoints file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	return ParseRegistry(raw, filepath.Ext(path))
}

// ParseRegistry parses registry content; ext selects the format, empty or
// unknown extensions try YAML first and fall back to JSON.
func ParseRegistry(data []byte, ext string) (*Registry, error) {
	var fileReg registryFile

	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fileReg); err != nil {
			return nil, fmt.Errorf("parse endpoints yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &fileReg); err != nil {
			return nil, fmt.Errorf("parse endpoints json: %w", err)
		}
	default:
		if yamlErr := yaml.Unmarshal(data, &fileReg); yamlErr != nil {
			if jsonErr := json.Unmarshal(data, &fileReg); jsonErr != nil {
				return nil, fmt.Errorf("parse endpoints file: %v", errors.Join(yamlErr, jsonErr))
			}
		}
	}

	if len(fileReg.Endpoints) == 0 {
		return nil, errors.New("endpoints file contains no endpoints entries")
	}

	reg := &Registry{
		endpoints: make([]Endpoint, len(fileReg.Endpoints)),
		idx:       make(map[string]Endpoint, len(fileReg.Endpoints)),
	}

	for i := range fileReg.Endpoints {
		ep := sanitizeEndpoint(fileReg.Endpoints[i])
		if err := validateEndpoint(ep); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		if _, exists := reg.idx[ep.Name]; exists {
			return nil, fmt.Errorf("duplicate endpoint name %q", ep.Name)
		}
		reg.endpoints[i] = ep
		reg.idx[ep.Name] = ep
	}

	return reg, nil
}

// All returns a copy of the loaded endpoints in file order.
func (r *Registry) All() []Endpoint {
	if r == nil || len(r.endpoints) == 0 {
		return nil
	}
	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// Endpoint returns the entry for the given name, if loaded.
func (r *Registry) Endpoint(name string) (Endpoint, bool) {
	name = strings.TrimSpace(name)
	if r == nil || name == "" {
		return Endpoint{}, false
	}
	ep, ok := r.idx[name]
	return ep, ok
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Expand substitutes {param} placeholders in the path template. Caller params
// override the endpoint's declared defaults; an unresolved placeholder is an
// error.
func (e Endpoint) Expand(params map[string]string) (string, error) {
	merged := make(map[string]string, len(e.Params)+len(params))
	for k, v := range e.Params {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}

	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(e.Path, func(match string) string {
		key := match[1 : len(match)-1]
		if v, ok := merged[key]; ok {
			return v
		}
		missing = append(missing, key)
		return match
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("endpoint %q: unresolved path params: %s", e.Name, strings.Join(missing, ", "))
	}
	return out, nil
}

func sanitizeEndpoint(ep Endpoint) Endpoint {
	ep.Name = strings.TrimSpace(ep.Name)
	ep.Path = strings.TrimSpace(ep.Path)
	ep.Method = strings.ToUpper(strings.TrimSpace(ep.Method))
	if ep.Method == "" {
		ep.Method = http.MethodGet
	}
	return ep
}

func validateEndpoint(ep Endpoint) error {
	if ep.Name == "" {
		return errors.New("endpoint name is empty")
	}
	if ep.Path == "" {
		return fmt.Errorf("endpoint %q has no path", ep.Name)
	}
	switch ep.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead:
	default:
		return fmt.Errorf("endpoint %q has unsupported method %q", ep.Name, ep.Method)
	}
	if ep.Expect != nil {
		if ep.Expect.Status < 0 || ep.Expect.Status > 599 {
			return fmt.Errorf("endpoint %q has invalid expected status %d", ep.Name, ep.Expect.Status)
		}
		if ep.Expect.MaxMs < 0 {
			return fmt.Errorf("endpoint %q has negative max_ms", ep.Name)
		}
	}
	return nil
}
