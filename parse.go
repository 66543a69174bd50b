package chatflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ParseFlow decodes a flow from JSON or YAML. Both a bare {nodes, edges}
// document and an exported Document are accepted; metadata is ignored.
// Edges without an id get a generated one. Input that is not valid JSON is
// read as YAML, so YAML flow mappings ({nodes: [...]}) work too.
func ParseFlow(data []byte) (Flow, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Flow{}, fmt.Errorf("chatflow: empty flow document")
	}
	if trimmed[0] == '{' && json.Valid(trimmed) {
		return parseJSON(trimmed)
	}
	return parseYAML(trimmed)
}

// ReadFlowFile reads and parses a .json, .yaml or .yml flow file. The
// extension picks the decoder.
func ReadFlowFile(path string) (Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Flow{}, fmt.Errorf("chatflow: read flow file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return Flow{}, fmt.Errorf("chatflow: unsupported flow file extension: %s", ext)
	}
}

func parseJSON(data []byte) (Flow, error) {
	var f Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return Flow{}, fmt.Errorf("chatflow: parse flow: %w", err)
	}
	normalize(&f)
	return f, nil
}

func parseYAML(data []byte) (Flow, error) {
	converted, err := yamlToJSON(data)
	if err != nil {
		return Flow{}, err
	}
	return parseJSON(converted)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("chatflow: parse yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("chatflow: convert yaml: %w", err)
	}
	return out, nil
}

func normalize(f *Flow) {
	if f.Nodes == nil {
		f.Nodes = []Node{}
	}
	if f.Edges == nil {
		f.Edges = []Edge{}
	}
	for i := range f.Edges {
		if f.Edges[i].ID == "" {
			f.Edges[i].ID = uuid.NewString()
		}
	}
}
