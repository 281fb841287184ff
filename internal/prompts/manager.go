package prompts

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// fallback variant every template should define
const DefaultVariant = "default"

// PromptProvider builds prompts from loaded templates
type PromptProvider interface {
	BuildPrompt(mode, variant string, data map[string]string) (string, error)
	GetTemplates() map[string][]string
}

type PromptManager struct {
	prompts map[string]map[string]string // mode -> variant -> complete prompt
}

// loaded prompt template
type PromptTemplate struct {
	BasePrompt    string            `yaml:"base_prompt"`
	ClosingPrompt string            `yaml:"closing_prompt"`
	Variants      map[string]string `yaml:"variants"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		prompts: make(map[string]map[string]string),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// BuildPrompt renders the prompt for mode and variant. A variant such as
// "technical/dsa" falls back to "technical" and then to the default variant.
func (pm *PromptManager) BuildPrompt(mode, variant string, data map[string]string) (string, error) {
	modePrompts, exists := pm.prompts[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}

	promptTemplate, ok := lookupVariant(modePrompts, variant)
	if !ok {
		return "", fmt.Errorf("variant '%s' not found for mode '%s'", variant, mode)
	}

	return placeholders(data).Replace(promptTemplate), nil
}

// placeholders substitutes every {{.Key}} in a single scan of the template,
// so substituted values are never expanded again.
func placeholders(data map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...)
}

// GetTemplates lists the loaded variants per mode.
func (pm *PromptManager) GetTemplates() map[string][]string {
	out := make(map[string][]string, len(pm.prompts))
	for mode, variants := range pm.prompts {
		names := make([]string, 0, len(variants))
		for name := range variants {
			names = append(names, name)
		}
		sort.Strings(names)
		out[mode] = names
	}
	return out
}

func lookupVariant(modePrompts map[string]string, variant string) (string, bool) {
	candidates := []string{variant}
	if i := strings.Index(variant, "/"); i > 0 {
		candidates = append(candidates, variant[:i])
	}
	candidates = append(candidates, DefaultVariant)

	for _, name := range candidates {
		if p, ok := modePrompts[name]; ok {
			return p, true
		}
	}
	return "", false
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.prompts[name] = compose(promptTemplate)
	}

	return nil
}

// compose joins base, variant and closing sections into complete prompts
func compose(t PromptTemplate) map[string]string {
	out := make(map[string]string, len(t.Variants))
	for variant, body := range t.Variants {
		sections := make([]string, 0, 3)
		for _, s := range []string{t.BasePrompt, body, t.ClosingPrompt} {
			if s != "" {
				sections = append(sections, s)
			}
		}
		out[variant] = strings.Join(sections, "\n\n")
	}
	return out
}
