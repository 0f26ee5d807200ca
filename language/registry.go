package language

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownLanguage is returned when a name resolves to no registered runtime.
var ErrUnknownLanguage = errors.New("unknown language")

// Tool is one entry in a runtime's validation battery. The command runs
// inside a container with the candidate source mounted at /code. Keywords
// are the case-insensitive substrings that escalate the tool's output into
// a diagnostic. Image, when set, replaces the runtime image for this tool;
// linters are usually absent from slim runtime images, so batteries point
// at images that bundle them.
type Tool struct {
	Name     string   `yaml:"name"`
	Image    string   `yaml:"image"`
	Command  []string `yaml:"command"`
	Keywords []string `yaml:"keywords"`
}

// Spec describes one supported runtime.
type Spec struct {
	Name       string   `yaml:"name"`
	Aliases    []string `yaml:"aliases"`
	Image      string   `yaml:"image"`
	FileName   string   `yaml:"file_name"`
	RunCommand []string `yaml:"run_command"`
	Battery    []Tool   `yaml:"battery"`
}

// Registry maps language names (and aliases) to runtime specs.
type Registry struct {
	mu      sync.RWMutex
	specs   map[string]Spec
	aliases map[string]string
}

// NewRegistry creates a registry populated with the default runtimes.
func NewRegistry() *Registry {
	r := &Registry{
		specs:   make(map[string]Spec),
		aliases: make(map[string]string),
	}
	r.registerDefaults()
	return r
}

// Register adds or replaces a runtime spec and its aliases.
func (r *Registry) Register(spec Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.ToLower(spec.Name)
	r.specs[name] = spec
	r.aliases[name] = name
	for _, alias := range spec.Aliases {
		r.aliases[strings.ToLower(alias)] = name
	}
}

// Lookup resolves a language name or alias to its spec.
func (r *Registry) Lookup(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	canonical, ok := r.aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Spec{}, false
	}
	spec, ok := r.specs[canonical]
	return spec, ok
}

// Names returns the canonical names of all registered runtimes, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// overridesFile is the shape of an optional YAML file that adjusts images
// or run commands without recompiling, e.g.:
//
//	languages:
//	  python:
//	    image: python:3.12-slim
type overridesFile struct {
	Languages map[string]struct {
		Image      string   `yaml:"image"`
		RunCommand []string `yaml:"run_command"`
	} `yaml:"languages"`
}

// ApplyOverridesYAML merges image/run-command overrides into registered
// specs. Unknown language keys are rejected so typos fail loudly.
func (r *Registry) ApplyOverridesYAML(data []byte) error {
	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse language overrides: %w", err)
	}

	for name, override := range file.Languages {
		spec, ok := r.Lookup(name)
		if !ok {
			return fmt.Errorf("%w in overrides: %s", ErrUnknownLanguage, name)
		}
		if override.Image != "" {
			spec.Image = override.Image
		}
		if len(override.RunCommand) > 0 {
			spec.RunCommand = override.RunCommand
		}
		r.Register(spec)
	}

	return nil
}

// Tool-bearing validation images. The slim runtime images ship neither
// python linters nor cppcheck; tools that only exist in these images name
// them explicitly, while compiler-based tools reuse the runtime image.
const (
	PythonToolsImage = "codeforge/python-tools:latest"
	CppToolsImage    = "codeforge/cpp-tools:latest"
)

// registerDefaults installs the six supported runtimes. Compiled languages
// use a compile-then-run shell pipeline so compiler diagnostics surface as
// nonzero exit with messages on stderr. Build output goes to /tmp because
// /code is mounted read-only during execution.
func (r *Registry) registerDefaults() {
	r.Register(Spec{
		Name:       "python",
		Aliases:    []string{"py", "python3"},
		Image:      "python:3.11-slim",
		FileName:   "main.py",
		RunCommand: []string{"python", "/code/main.py"},
		Battery: []Tool{
			{Name: "pylint", Image: PythonToolsImage, Command: []string{"pylint", "--disable=all", "--enable=E,W,F,C", "/code/main.py"}, Keywords: []string{"error", "warning"}},
			{Name: "flake8", Image: PythonToolsImage, Command: []string{"flake8", "--max-line-length=120", "/code/main.py"}, Keywords: []string{"error", "issue"}},
			{Name: "bandit", Image: PythonToolsImage, Command: []string{"bandit", "-r", "/code"}, Keywords: []string{"issue"}},
			{Name: "black", Image: PythonToolsImage, Command: []string{"black", "--check", "/code/main.py"}, Keywords: []string{"reformat", "fail", "error"}},
		},
	})

	r.Register(Spec{
		Name:       "javascript",
		Aliases:    []string{"js", "node", "nodejs"},
		Image:      "node:20-alpine",
		FileName:   "main.js",
		RunCommand: []string{"node", "/code/main.js"},
		Battery: []Tool{
			{Name: "node-check", Command: []string{"node", "--check", "/code/main.js"}, Keywords: []string{"error", "exception"}},
		},
	})

	r.Register(Spec{
		Name:       "java",
		Aliases:    []string{},
		Image:      "eclipse-temurin:21-jdk",
		FileName:   "Main.java",
		RunCommand: []string{"sh", "-c", "javac -d /tmp /code/Main.java && java -cp /tmp Main"},
		Battery: []Tool{
			{Name: "javac", Command: []string{"javac", "-Xlint:all", "-d", "/code", "/code/Main.java"}, Keywords: []string{"error", "warning"}},
		},
	})

	r.Register(Spec{
		Name:       "c",
		Aliases:    []string{},
		Image:      "gcc:13",
		FileName:   "main.c",
		RunCommand: []string{"sh", "-c", "gcc /code/main.c -o /tmp/program && /tmp/program"},
		Battery: []Tool{
			{Name: "gcc-syntax", Command: []string{"gcc", "-fsyntax-only", "-Wall", "/code/main.c"}, Keywords: []string{"error", "warning"}},
			{Name: "cppcheck", Image: CppToolsImage, Command: []string{"cppcheck", "--enable=all", "/code/main.c"}, Keywords: []string{"error"}},
		},
	})

	r.Register(Spec{
		Name:       "cpp",
		Aliases:    []string{"c++", "cplusplus"},
		Image:      "gcc:13",
		FileName:   "main.cpp",
		RunCommand: []string{"sh", "-c", "g++ /code/main.cpp -o /tmp/program && /tmp/program"},
		Battery: []Tool{
			{Name: "cppcheck", Image: CppToolsImage, Command: []string{"cppcheck", "--enable=all", "/code/main.cpp"}, Keywords: []string{"error", "warning"}},
			{Name: "g++", Command: []string{"sh", "-c", "g++ /code/main.cpp -o /code/a.out"}, Keywords: []string{"error"}},
		},
	})

	r.Register(Spec{
		Name:       "go",
		Aliases:    []string{"golang"},
		Image:      "golang:1.23-alpine",
		FileName:   "main.go",
		RunCommand: []string{"sh", "-c", "GOCACHE=/tmp/gocache go run /code/main.go"},
		Battery: []Tool{
			{Name: "govet", Command: []string{"sh", "-c", "GOCACHE=/tmp/gocache go vet /code/main.go"}, Keywords: []string{"error", "undefined"}},
			{Name: "gobuild", Command: []string{"sh", "-c", "GOCACHE=/tmp/gocache go build -o /tmp/app /code/main.go"}, Keywords: []string{"error"}},
		},
	})
}
