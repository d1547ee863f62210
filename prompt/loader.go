package prompt

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/openbatch/errors"
)

// templateFile is the on-disk YAML layout:
//
//	name: classify
//	messages:
//	  - role: system
//	    content: You label {kind} reviews.
//	  - role: user
//	    content: "{review}"
type templateFile struct {
	Name     string    `yaml:"name"`
	Messages []Message `yaml:"messages"`
}

// LoadTemplate reads and validates a YAML template file.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Template{}, errors.NotFound("template", path)
		}
		return Template{}, errors.FileIO("read", path, err)
	}
	return ParseTemplate(data)
}

// ParseTemplate decodes a YAML template document.
func ParseTemplate(data []byte) (Template, error) {
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Template{}, errors.InvalidInput("template", err.Error()).WithCause(err)
	}
	t := NewNamedTemplate(f.Name, f.Messages...)
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}
