package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/relq/internal/collection"
	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/relation"
)

// Format identifies a dataset file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported dataset extension %q (want .yaml, .yml, .json or .cue)", filepath.Ext(path))
	}
}

// Dataset is the decoded form of a dataset file.
type Dataset struct {
	// Name is the collection name and scope registry key.
	Name string `yaml:"name" json:"name"`

	// PrimaryKey names the attribute Find looks up. Default: "id".
	PrimaryKey string `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`

	// Records in collection order. Values must be strings, integers,
	// booleans, null, lists or mappings; floats are rejected.
	Records []map[string]any `yaml:"records" json:"records"`

	// Scopes declares named queries by name.
	Scopes map[string]ScopeSpec `yaml:"scopes,omitempty" json:"scopes,omitempty"`
}

// ScopeSpec declares one named query.
type ScopeSpec struct {
	// Params names the positional arguments; "$name" values refer to them.
	Params []string `yaml:"params,omitempty" json:"params,omitempty"`

	// Scopes lists other named scopes applied first, in order.
	Scopes []string `yaml:"scopes,omitempty" json:"scopes,omitempty"`

	Where    Fields    `yaml:"where,omitempty" json:"where,omitempty"`
	WhereNot Fields    `yaml:"where_not,omitempty" json:"where_not,omitempty"`
	Order    OrderSpec `yaml:"order,omitempty" json:"order,omitempty"`
	Offset   *int      `yaml:"offset,omitempty" json:"offset,omitempty"`
	Limit    *int      `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Load reads and validates a dataset file. The format follows the
// extension.
func Load(path string) (*Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	ds, err := Parse(data, format, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Decode reads and validates a dataset from r.
func Decode(r io.Reader, format Format) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Parse(data, format, "dataset."+string(format))
}

// Parse decodes data in the given format and validates the result.
// filename is only used in CUE diagnostics.
func Parse(data []byte, format Format, filename string) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch format {
	case FormatYAML:
		ds, err = parseYAML(data)
	case FormatJSON:
		ds, err = parseJSON(data)
	case FormatCUE:
		ds, err = parseCUE(data, filename)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	return ds, nil
}

func parseYAML(data []byte) (*Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &ds, nil
}

func parseJSON(data []byte) (*Dataset, error) {
	var ds Dataset
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &ds, nil
}

// parseCUE evaluates the file and decodes its JSON export, which keeps
// field declaration order.
func parseCUE(data []byte, filename string) (*Dataset, error) {
	value := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE value is not concrete: %w", err)
	}
	exported, err := value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("exporting CUE value: %w", err)
	}
	return parseJSON(exported)
}

// Validate checks names, record values, directions, parameters and scope
// references, including reference cycles.
func (d *Dataset) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := d.records(); err != nil {
		return err
	}

	for _, name := range d.ScopeNames() {
		spec := d.Scopes[name]
		if _, err := spec.Order.Clause(); err != nil {
			return fmt.Errorf("scope %s: %w", name, err)
		}
		if spec.Offset != nil && *spec.Offset < 0 {
			return fmt.Errorf("scope %s: offset must not be negative", name)
		}
		if spec.Limit != nil && *spec.Limit < 0 {
			return fmt.Errorf("scope %s: limit must not be negative", name)
		}
		bound := make(map[string]ir.IRValue, len(spec.Params))
		for _, p := range spec.Params {
			bound[p] = ir.IRNull{}
		}
		if _, err := spec.Where.resolve(bound); err != nil {
			return fmt.Errorf("scope %s: where: %w", name, err)
		}
		if _, err := spec.WhereNot.resolve(bound); err != nil {
			return fmt.Errorf("scope %s: where_not: %w", name, err)
		}
		for _, ref := range spec.Scopes {
			if _, ok := d.Scopes[ref]; !ok {
				return fmt.Errorf("scope %s: references undefined scope %q", name, ref)
			}
		}
	}

	return d.checkCycles()
}

func (d *Dataset) checkCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(d.Scopes))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("scope cycle: %s", strings.Join(append(path, name), " -> "))
		case done:
			return nil
		}
		state[name] = visiting
		for _, ref := range d.Scopes[name].Scopes {
			if err := visit(ref, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range d.ScopeNames() {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// ScopeNames returns the declared scope names in sorted order.
func (d *Dataset) ScopeNames() []string {
	names := make([]string, 0, len(d.Scopes))
	for name := range d.Scopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dataset) records() ([]ir.Record, error) {
	out := make([]ir.Record, len(d.Records))
	for i, raw := range d.Records {
		obj, err := ir.ObjectFromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		out[i] = obj
	}
	return out, nil
}

// Collection builds the collection with every scope defined as a named
// query. Extra options are applied after the dataset's own.
func (d *Dataset) Collection(opts ...collection.Option) (*collection.Collection, error) {
	records, err := d.records()
	if err != nil {
		return nil, err
	}

	all := []collection.Option{collection.WithRecords(records)}
	if d.PrimaryKey != "" {
		all = append(all, collection.WithPrimaryKey(d.PrimaryKey))
	}
	c := collection.New(d.Name, append(all, opts...)...)

	for _, name := range d.ScopeNames() {
		if err := c.Define(name, d.Scopes[name].query(c, name)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// query compiles the spec into a named query over c.
func (s ScopeSpec) query(c *collection.Collection, name string) relation.NamedQuery {
	return func(ctx context.Context, args ...ir.IRValue) (*relation.Relation, error) {
		if len(args) != len(s.Params) {
			return nil, &relation.Error{
				Code:    relation.ErrCodeInvalidArgument,
				Message: fmt.Sprintf("scope %s takes %d argument(s), got %d", name, len(s.Params), len(args)),
				Model:   c.Name(),
			}
		}
		bound := make(map[string]ir.IRValue, len(args))
		for i, p := range s.Params {
			bound[p] = args[i]
		}

		rel := c.All(ctx)
		for _, ref := range s.Scopes {
			next, err := rel.Scope(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("scope %s: %w", name, err)
			}
			rel = next
		}

		where, err := s.Where.resolve(bound)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", name, err)
		}
		whereNot, err := s.WhereNot.resolve(bound)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", name, err)
		}
		rel = rel.Where(relation.Eq(where...)).WhereNot(relation.Eq(whereNot...)).OrderDir(s.Order...)
		if s.Offset != nil {
			rel = rel.Offset(*s.Offset)
		}
		if s.Limit != nil {
			rel = rel.Limit(*s.Limit)
		}
		return rel, rel.Err()
	}
}
