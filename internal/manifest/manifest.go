// Package manifest loads declarative task files.
//
// Manifests come in two surface syntaxes - CUE and YAML - and both are
// validated against the same embedded CUE schema before anything reaches
// the engine. A manifest that decodes but violates the schema (empty
// operand list, blank operation name) is rejected at load time.
package manifest

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE []byte

// Spec is one validated task declaration.
type Spec struct {
	// Operation names the computation.
	Operation string

	// Operands is the ordered input sequence, length >= 1.
	Operands []float64

	// MaxLifetime bounds the instance's life. Zero means the engine
	// default.
	MaxLifetime time.Duration
}

// fileSpec mirrors the schema's #Manifest shape for decoding.
type fileSpec struct {
	Tasks []taskSpec `json:"tasks" yaml:"tasks"`
}

type taskSpec struct {
	Operation   string    `json:"operation" yaml:"operation"`
	Operands    []float64 `json:"operands" yaml:"operands"`
	MaxLifetime string    `json:"max_lifetime,omitempty" yaml:"max_lifetime,omitempty"`
}

// Load reads and validates the manifest at path. The syntax is chosen by
// extension: .cue, or .yaml/.yml.
func Load(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(path, data)
}

// Parse validates manifest data named name (used for error positions and
// syntax selection).
func Parse(name string, data []byte) ([]Spec, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cue":
		return parseCUE(name, data)
	case ".yaml", ".yml":
		return parseYAML(name, data)
	default:
		return nil, fmt.Errorf("parse manifest %s: unsupported extension (want .cue, .yaml or .yml)", name)
	}
}

// parseCUE compiles the file and unifies it with the embedded schema.
func parseCUE(name string, data []byte) ([]Spec, error) {
	ctx := cuecontext.New()

	schema, err := compileSchema(ctx)
	if err != nil {
		return nil, err
	}

	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %s", name, cueerrors.Details(err, nil))
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate manifest %s: %s", name, cueerrors.Details(err, nil))
	}

	var fs fileSpec
	if err := unified.Decode(&fs); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", name, err)
	}
	return convert(name, fs)
}

// parseYAML decodes with yaml.v3, then pushes the result through the same
// CUE schema so both syntaxes share one validation path.
func parseYAML(name string, data []byte) ([]Spec, error) {
	var fs fileSpec
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", name, err)
	}

	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return nil, err
	}

	unified := schema.Unify(ctx.Encode(fs))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate manifest %s: %s", name, cueerrors.Details(err, nil))
	}
	return convert(name, fs)
}

// compileSchema returns the #Manifest definition from the embedded schema.
func compileSchema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile manifest schema: %s", cueerrors.Details(err, nil))
	}
	def := schema.LookupPath(cue.ParsePath("#Manifest"))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("lookup #Manifest: %s", cueerrors.Details(err, nil))
	}
	return def, nil
}

// convert turns decoded task specs into engine-ready Specs, parsing the
// optional lifetime durations.
func convert(name string, fs fileSpec) ([]Spec, error) {
	specs := make([]Spec, 0, len(fs.Tasks))
	for i, t := range fs.Tasks {
		spec := Spec{
			Operation: t.Operation,
			Operands:  t.Operands,
		}
		if t.MaxLifetime != "" {
			d, err := time.ParseDuration(t.MaxLifetime)
			if err != nil {
				return nil, fmt.Errorf("manifest %s: task %d: max_lifetime: %w", name, i, err)
			}
			if d <= 0 {
				return nil, fmt.Errorf("manifest %s: task %d: max_lifetime must be positive, got %s", name, i, d)
			}
			spec.MaxLifetime = d
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
