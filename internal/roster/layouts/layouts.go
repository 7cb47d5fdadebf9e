// Package layouts provides the column layouts a roster upload may follow.
// Built-in presets are embedded; deployments may supply their own YAML file.
package layouts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lin871229/lottery-app-v4/internal/roster"
	"github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

// Default is the preset used when a caller names none.
const Default = "legacy"

//go:embed presets/*.yaml
var presetFS embed.FS

// Names lists the built-in presets in sorted order.
func Names() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Load returns the built-in preset called name. An empty name selects Default.
//
// Errors: CodeInvalidArgument for unknown presets.
func Load(name string) (roster.Layout, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = Default
	}
	data, err := presetFS.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return roster.Layout{}, dErrors.New(dErrors.CodeInvalidArgument,
			fmt.Sprintf("unknown layout %q (available: %s)", name, strings.Join(Names(), ", ")))
	}
	return Parse(data)
}

// LoadFile reads a layout from a YAML file on disk.
func LoadFile(filename string) (roster.Layout, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return roster.Layout{}, fmt.Errorf("read layout file %s: %w", filename, err)
	}
	layout, err := Parse(data)
	if err != nil {
		return roster.Layout{}, fmt.Errorf("layout file %s: %w", filename, err)
	}
	return layout, nil
}

// Parse decodes and validates a YAML layout. Categories may be given by code
// or by label. Unknown keys are rejected.
func Parse(data []byte) (roster.Layout, error) {
	var layout roster.Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&layout); err != nil {
		return roster.Layout{}, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "decode layout")
	}
	for i, e := range layout.Eligibility {
		category, err := domain.ParseServiceCategory(string(e.Category))
		if err != nil {
			return roster.Layout{}, dErrors.Wrap(err, dErrors.CodeInvalidArgument,
				fmt.Sprintf("layout %q: eligibility column %q", layout.Name, e.Column))
		}
		layout.Eligibility[i].Category = category
	}
	if err := layout.Validate(); err != nil {
		return roster.Layout{}, err
	}
	return layout, nil
}
