package generation

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptFile struct {
	Careers       map[string]string `yaml:"careers"`
	Persona       string            `yaml:"persona"`
	Instruction   string            `yaml:"instruction"`
	FallbackTitle string            `yaml:"fallback_title"`
}

// Prompts renders the persona and instruction sent to the text service.
type Prompts struct {
	careers       map[types.ContentKind]string
	persona       *template.Template
	instruction   *template.Template
	fallbackTitle *template.Template
}

var defaultPrompts = mustLoadPrompts(promptsYAML)

func mustLoadPrompts(raw []byte) *Prompts {
	p, err := LoadPrompts(raw)
	if err != nil {
		panic(fmt.Sprintf("generation: embedded prompts: %v", err))
	}
	return p
}

func LoadPrompts(raw []byte) (*Prompts, error) {
	var f promptFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}
	p := &Prompts{careers: map[types.ContentKind]string{}}
	for k, v := range f.Careers {
		kind, ok := types.ParseContentKind(k)
		if !ok {
			return nil, fmt.Errorf("prompts: unknown kind %q in careers", k)
		}
		p.careers[kind] = strings.TrimSpace(v)
	}
	for _, kind := range []types.ContentKind{types.ContentKindStory, types.ContentKindPoem} {
		if p.careers[kind] == "" {
			return nil, fmt.Errorf("prompts: missing career for %q", kind)
		}
	}
	var err error
	if p.persona, err = parseTemplate("persona", f.Persona); err != nil {
		return nil, err
	}
	if p.instruction, err = parseTemplate("instruction", f.Instruction); err != nil {
		return nil, err
	}
	if p.fallbackTitle, err = parseTemplate("fallback_title", f.FallbackTitle); err != nil {
		return nil, err
	}
	return p, nil
}

func parseTemplate(name, body string) (*template.Template, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("prompts: %s is empty", name)
	}
	t, err := template.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("prompts: parse %s: %w", name, err)
	}
	return t, nil
}

func execute(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		// Templates are validated at load and data is built here, so this is a programming error.
		panic(fmt.Sprintf("generation: render %s: %v", t.Name(), err))
	}
	return b.String()
}

// Persona is the system message. Story requests get an author, poem requests a poet.
func (p *Prompts) Persona(kind types.ContentKind) string {
	return execute(p.persona, map[string]any{"Career": p.careers[kind]})
}

// Instruction is the user message. Each label set renders as "(a, b, c)";
// an empty set renders as "()". A blank theme omits the theme sentence.
func (p *Prompts) Instruction(labels [3][]string, theme string, kind types.ContentKind) string {
	var elements [3]string
	for i, set := range labels {
		elements[i] = "(" + strings.Join(set, ", ") + ")"
	}
	return execute(p.instruction, map[string]any{
		"Kind":     string(kind),
		"Elements": elements,
		"Theme":    strings.TrimSpace(theme),
	})
}

func (p *Prompts) FallbackTitle(kind types.ContentKind) string {
	return execute(p.fallbackTitle, map[string]any{"Kind": string(kind)})
}

func Persona(kind types.ContentKind) string { return defaultPrompts.Persona(kind) }

func BuildPrompt(labels [3][]string, theme string, kind types.ContentKind) string {
	return defaultPrompts.Instruction(labels, theme, kind)
}
