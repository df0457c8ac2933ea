package schemavalidation

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/qduc/fcitx5-unikey/internal/config"
)

func TestConfigFixtureMatchesSchema(t *testing.T) {
	root := repoRoot(t)
	schema := compileSchema(t, filepath.Join(root, "docs", "schema", "unikey-config-v1.schema.json"))

	instancePath := filepath.Join(root, "docs", "spec", "fixtures", "unikey-config-v1.json")
	instanceData, err := os.ReadFile(instancePath)
	if err != nil {
		t.Fatalf("read instance: %v", err)
	}

	var instance any
	if err := json.Unmarshal(instanceData, &instance); err != nil {
		t.Fatalf("unmarshal instance: %v", err)
	}

	if err := schema.Validate(instance); err != nil {
		t.Fatalf("schema validation failed for %s: %v", filepath.Base(instancePath), err)
	}
}

func TestDefaultConfigMatchesSchema(t *testing.T) {
	root := repoRoot(t)
	schema := compileSchema(t, filepath.Join(root, "docs", "schema", "unikey-config-v1.schema.json"))

	data, err := json.Marshal(config.DefaultConfig())
	if err != nil {
		t.Fatalf("marshal default config: %v", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		t.Fatalf("unmarshal default config: %v", err)
	}

	if err := schema.Validate(instance); err != nil {
		t.Fatalf("default config does not match schema: %v", err)
	}
}

func TestSchemaRejectsBadConfig(t *testing.T) {
	root := repoRoot(t)
	schema := compileSchema(t, filepath.Join(root, "docs", "schema", "unikey-config-v1.schema.json"))

	bad := []string{
		`{"version": 2, "input": {}, "commit": {}}`,
		`{"version": 1, "input": {"method": "morse"}, "commit": {}}`,
		`{"version": 1, "input": {}, "commit": {"max_word_length": 0}}`,
		`{"version": 1, "input": {}, "commit": {}, "hosts": [{"shadow_only": true}]}`,
	}
	for i, raw := range bad {
		var instance any
		if err := json.Unmarshal([]byte(raw), &instance); err != nil {
			t.Fatalf("case %d: unmarshal: %v", i, err)
		}
		if err := schema.Validate(instance); err == nil {
			t.Errorf("case %d: expected validation failure for %s", i, raw)
		}
	}
}

func compileSchema(t *testing.T, schemaPath string) *jsonschema.Schema {
	t.Helper()

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaPath, bytes.NewReader(schemaData)); err != nil {
		t.Fatalf("add schema resource: %v", err)
	}
	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	return schema
}

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to resolve caller path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
