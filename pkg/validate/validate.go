package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-apicheck/pkg/apiclient"
	"github.com/xeipuuv/gojsonschema"
)

// Package validate holds pure checks comparing a Response to an expectation.
// Each validator returns nil on success and a *ValidationError describing the
// mismatch otherwise. Validators hold no state and are never retried.

// ValidationError describes a response that did not meet an expectation.
type ValidationError struct {
	Check    string
	Expected string
	Actual   string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s validation failed: %s", e.Check, e.Message)
	}
	return fmt.Sprintf("%s validation failed: expected %s, got %s", e.Check, e.Expected, e.Actual)
}

// StatusCode fails iff the response status differs from want.
func StatusCode(resp *apiclient.Response, want int) error {
	got := resp.StatusCode()
	if got == want {
		return nil
	}
	return &ValidationError{
		Check:    "status_code",
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
		Message:  fmt.Sprintf("expected status code %d, got %d (body: %s)", want, got, bodySnippet(resp.Body())),
	}
}

// MaxElapsed fails when the call took longer than max.
func MaxElapsed(resp *apiclient.Response, max time.Duration) error {
	got := resp.Elapsed()
	if got <= max {
		return nil
	}
	return &ValidationError{
		Check:    "response_time",
		Expected: fmt.Sprintf("<= %s", max),
		Actual:   got.String(),
		Message:  fmt.Sprintf("response time %s exceeded maximum %s", got, max),
	}
}

// JSONSchema validates the response body against a JSON schema document.
// Evaluator errors are surfaced verbatim, one per line.
func JSONSchema(resp *apiclient.Response, schema string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(resp.Body()),
	)
	if err != nil {
		return &ValidationError{
			Check:   "json_schema",
			Message: fmt.Sprintf("schema evaluation: %v", err),
		}
	}
	if result.Valid() {
		return nil
	}

	lines := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		lines = append(lines, desc.String())
	}
	return &ValidationError{
		Check:   "json_schema",
		Message: strings.Join(lines, "\n"),
	}
}

// RequiredKeys fails when any of the keys is absent from the JSON object body.
func RequiredKeys(resp *apiclient.Response, keys ...string) error {
	data, err := decodeObject(resp)
	if err != nil {
		return err
	}

	var missing []string
	for _, key := range keys {
		if _, ok := data[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{
		Check:    "required_keys",
		Expected: strings.Join(keys, ", "),
		Actual:   fmt.Sprintf("missing %s", strings.Join(missing, ", ")),
		Message:  fmt.Sprintf("missing required keys: %s", strings.Join(missing, ", ")),
	}
}

// FieldValue fails when the named field is absent or differs from want.
// The body is decoded with encoding/json, so numeric expectations must be
// given as float64.
func FieldValue(resp *apiclient.Response, field string, want any) error {
	data, err := decodeObject(resp)
	if err != nil {
		return err
	}

	got, ok := data[field]
	if !ok {
		return &ValidationError{
			Check:   "field_value",
			Message: fmt.Sprintf("field %q not found in response body", field),
		}
	}
	if reflect.DeepEqual(got, want) {
		return nil
	}
	return &ValidationError{
		Check:    "field_value",
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Message:  fmt.Sprintf("field %q has value %v, expected %v", field, got, want),
	}
}

// FieldType fails when the named field is absent or is not of the given JSON
// type: string, number, integer, boolean, array, object, or null.
func FieldType(resp *apiclient.Response, field, want string) error {
	data, err := decodeObject(resp)
	if err != nil {
		return err
	}

	value, ok := data[field]
	if !ok {
		return &ValidationError{
			Check:   "field_type",
			Message: fmt.Sprintf("field %q not found in response body", field),
		}
	}

	got := jsonTypeOf(value)
	if got == want {
		return nil
	}
	// Integers decode as float64; accept whole numbers for "integer".
	if want == "integer" && got == "number" {
		if f, ok := value.(float64); ok && f == math.Trunc(f) {
			return nil
		}
	}
	return &ValidationError{
		Check:    "field_type",
		Expected: want,
		Actual:   got,
		Message:  fmt.Sprintf("field %q has type %s, expected %s", field, got, want),
	}
}

func jsonTypeOf(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// Headers fails when any expected header is absent or has a different value.
func Headers(resp *apiclient.Response, want map[string]string) error {
	for header, expected := range want {
		actual := resp.Header().Get(header)
		if actual != expected {
			return &ValidationError{
				Check:    "headers",
				Expected: fmt.Sprintf("%s: %s", header, expected),
				Actual:   fmt.Sprintf("%s: %s", header, actual),
				Message:  fmt.Sprintf("header %q has value %q, expected %q", header, actual, expected),
			}
		}
	}
	return nil
}

// Expectation bundles the optional checks applied by Response. Zero values
// are skipped.
type Expectation struct {
	Status       int
	MaxElapsed   time.Duration
	Schema       string
	RequiredKeys []string
	Headers      map[string]string
}

// Response applies every configured check; the first failure wins.
func Response(resp *apiclient.Response, want Expectation) error {
	if want.Status != 0 {
		if err := StatusCode(resp, want.Status); err != nil {
			return err
		}
	}
	if want.MaxElapsed > 0 {
		if err := MaxElapsed(resp, want.MaxElapsed); err != nil {
			return err
		}
	}
	if len(want.Headers) > 0 {
		if err := Headers(resp, want.Headers); err != nil {
			return err
		}
	}
	if len(want.RequiredKeys) > 0 {
		if err := RequiredKeys(resp, want.RequiredKeys...); err != nil {
			return err
		}
	}
	if want.Schema != "" {
		if err := JSONSchema(resp, want.Schema); err != nil {
			return err
		}
	}
	return nil
}

func decodeObject(resp *apiclient.Response) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, &ValidationError{
			Check:   "json_body",
			Message: fmt.Sprintf("response is not a JSON object: %v", err),
		}
	}
	return data, nil
}

func bodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
