package chatflow

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed library/*.yaml
var library embed.FS

// Example is a predefined flow users can load onto the canvas.
type Example struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category"`
	Preview     string `json:"preview"`
	Flow        Flow   `json:"flow"`
}

type exampleFile struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Difficulty  string `yaml:"difficulty"`
	Category    string `yaml:"category"`
	Preview     string `yaml:"preview"`
	Flow        any    `yaml:"flow"`
}

// Examples returns the built-in example flows sorted by id. Each call
// returns fresh copies.
func Examples() ([]Example, error) {
	paths, err := fs.Glob(library, "library/*.yaml")
	if err != nil {
		return nil, err
	}
	out := make([]Example, 0, len(paths))
	for _, p := range paths {
		ex, err := readExample(p)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LookupExample returns the example with the given id.
func LookupExample(id string) (Example, bool, error) {
	all, err := Examples()
	if err != nil {
		return Example{}, false, err
	}
	for _, ex := range all {
		if ex.ID == id {
			return ex, true, nil
		}
	}
	return Example{}, false, nil
}

func readExample(path string) (Example, error) {
	data, err := library.ReadFile(path)
	if err != nil {
		return Example{}, err
	}
	var ef exampleFile
	if err := yaml.Unmarshal(data, &ef); err != nil {
		return Example{}, fmt.Errorf("chatflow: example %s: %w", path, err)
	}
	raw, err := json.Marshal(ef.Flow)
	if err != nil {
		return Example{}, fmt.Errorf("chatflow: example %s: %w", path, err)
	}
	f, err := ParseFlow(raw)
	if err != nil {
		return Example{}, fmt.Errorf("chatflow: example %s: %w", path, err)
	}
	return Example{
		ID:          ef.ID,
		Title:       ef.Title,
		Description: ef.Description,
		Difficulty:  ef.Difficulty,
		Category:    ef.Category,
		Preview:     ef.Preview,
		Flow:        f,
	}, nil
}
