package questionnaire

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed questionnaire.yaml
var defaultCatalog []byte

type Prompt struct {
	Label       string `yaml:"label" json:"label"`
	Placeholder string `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
}

// Catalog holds the display text of the form. Vocabularies are not part of
// the catalog; they are fixed by the field table.
type Catalog struct {
	Title       string            `yaml:"title" json:"title"`
	Description string            `yaml:"description" json:"description"`
	Submit      string            `yaml:"submit" json:"submit"`
	Prompts     map[string]Prompt `yaml:"prompts" json:"prompts"`
}

// FormField is a renderable description of one control.
type FormField struct {
	Name        string   `json:"name"`
	Column      string   `json:"column"`
	Kind        Kind     `json:"kind"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

type Form struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Submit      string      `json:"submit"`
	Fields      []FormField `json:"fields"`
}

func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Catalog{}, fmt.Errorf("read questionnaire catalog: %w", err)
	}
	return ParseCatalog(content)
}

func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

func ParseCatalog(content []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, fmt.Errorf("decode questionnaire catalog: %w", err)
	}
	for _, f := range Fields() {
		if _, ok := cat.Prompts[f.String()]; !ok {
			return Catalog{}, fmt.Errorf("questionnaire catalog missing prompt for %s", f)
		}
	}
	return cat, nil
}

// Form joins the catalog text with the field table in column order.
func (c Catalog) Form() Form {
	form := Form{
		Title:       c.Title,
		Description: c.Description,
		Submit:      c.Submit,
		Fields:      make([]FormField, 0, FieldCount),
	}
	for _, f := range Fields() {
		spec := f.Spec()
		prompt := c.Prompts[spec.Name]
		form.Fields = append(form.Fields, FormField{
			Name:        spec.Name,
			Column:      spec.Column,
			Kind:        spec.Kind,
			Label:       prompt.Label,
			Placeholder: prompt.Placeholder,
			Choices:     f.Choices(),
		})
	}
	return form
}
