package questionbank

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultYAML []byte

var defaultBank = sync.OnceValue(func() *Bank {
	bank, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded question bank is invalid: %v", err))
	}
	return bank
})

// Default returns the built-in question bank.
func Default() *Bank {
	return defaultBank()
}

// Load reads a YAML question bank from path, or returns Default when path is empty.
func Load(path string) (*Bank, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %q: %w", path, err)
	}

	bank, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load question bank %q: %w", path, err)
	}
	return bank, nil
}

type document struct {
	InterviewTypes []string       `yaml:"interview_types"`
	Roles          []documentRole `yaml:"roles"`
}

type documentRole struct {
	Name      string              `yaml:"name"`
	Questions map[string][]string `yaml:"questions"`
}

// Parse validates YAML content against the bank schema and builds a Bank.
func Parse(data []byte) (*Bank, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if problems := validateDocument(raw); len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return doc.build()
}

func (doc document) build() (*Bank, error) {
	bank := &Bank{
		roles:     make([]Role, 0, len(doc.Roles)),
		types:     make([]InterviewType, 0, len(doc.InterviewTypes)),
		questions: make(map[Role]map[InterviewType][]string, len(doc.Roles)),
	}

	for _, name := range doc.InterviewTypes {
		bank.types = append(bank.types, InterviewType(strings.TrimSpace(name)))
	}

	for _, entry := range doc.Roles {
		role := Role(strings.TrimSpace(entry.Name))
		if role == "" {
			return nil, fmt.Errorf("role name must not be empty")
		}
		if _, exists := bank.questions[role]; exists {
			return nil, fmt.Errorf("duplicate role %q", role)
		}

		byType := make(map[InterviewType][]string, len(entry.Questions))
		for rawType, list := range entry.Questions {
			kind := InterviewType(strings.TrimSpace(rawType))
			if !bank.HasType(kind) {
				return nil, fmt.Errorf("role %q: %w: %q", role, ErrUnknownType, kind)
			}
			questions := make([]string, 0, len(list))
			for _, q := range list {
				if q = strings.TrimSpace(q); q != "" {
					questions = append(questions, q)
				}
			}
			byType[kind] = questions
		}

		bank.roles = append(bank.roles, role)
		bank.questions[role] = byType
	}

	return bank, nil
}
