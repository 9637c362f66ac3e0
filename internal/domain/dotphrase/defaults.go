package dotphrase

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Default is a built-in phrase available to every user.
type Default struct {
	Name     string `yaml:"name" json:"name"`
	Content  string `yaml:"content" json:"content"`
	Category string `yaml:"category" json:"category"`
}

// Library is the ordered set of built-in phrases.
type Library struct {
	phrases []Default
	byName  map[string]Default
}

func ParseLibrary(data []byte) (*Library, error) {
	var doc struct {
		Phrases []Default `yaml:"phrases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse dot phrase library: %w", err)
	}
	lib := &Library{phrases: doc.Phrases, byName: make(map[string]Default, len(doc.Phrases))}
	for i, p := range doc.Phrases {
		if err := validate(p.Name, p.Content); err != nil {
			return nil, fmt.Errorf("phrase %d: %w", i, err)
		}
		if p.Category == "" {
			lib.phrases[i].Category = DefaultCategory
		}
		lib.byName[p.Name] = lib.phrases[i]
	}
	return lib, nil
}

// DefaultLibrary returns the library compiled into the binary.
func DefaultLibrary() *Library {
	lib, err := ParseLibrary(defaultsYAML)
	if err != nil {
		panic(err)
	}
	return lib
}

func (l *Library) All() []Default {
	out := make([]Default, len(l.phrases))
	copy(out, l.phrases)
	return out
}

func (l *Library) Lookup(name string) (Default, bool) {
	p, ok := l.byName[name]
	return p, ok
}
