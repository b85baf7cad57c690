package prompt

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.txt
var templates embed.FS

// Versioned prompt names. A new wording gets a new version instead of
// changing an existing file.
const (
	HazardStructured = "hazard.structured.v1"
	HazardText       = "hazard.text.v1"
	Reader           = "reader.v1"
)

// Store loads prompts from Dir (<Dir>/<name>.txt) and falls back to the
// embedded copies.
type Store struct {
	Dir string
}

func (s Store) Load(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("prompt name is empty")
	}
	if s.Dir != "" {
		p := filepath.Join(s.Dir, name+".txt")
		if b, err := os.ReadFile(p); err == nil {
			if txt := strings.TrimSpace(string(b)); txt != "" {
				return txt, nil
			}
		}
	}
	b, err := templates.ReadFile("templates/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt %q not found (dir=%q)", name, s.Dir)
	}
	return strings.TrimSpace(string(b)), nil
}

// Render replaces {{key}} placeholders.
func Render(tpl string, vars map[string]string) string {
	for k, v := range vars {
		tpl = strings.ReplaceAll(tpl, "{{"+k+"}}", v)
	}
	return tpl
}
