package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"math"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Encoding selects the document syntax for Parse.
type Encoding string

const (
	EncodingYAML Encoding = "yaml"
	EncodingJSON Encoding = "json"
)

// rawPlan keeps steps loose so both short and long forms decode.
type rawPlan struct {
	Name  string           `json:"name" yaml:"name"`
	Steps []map[string]any `json:"steps" yaml:"steps"`
}

// Load reads a plan file. Files ending in .json are parsed as JSON,
// everything else as YAML.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	enc := EncodingYAML
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		enc = EncodingJSON
	}

	p, err := Parse(data, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Parse decodes and validates a plan document.
func Parse(data []byte, enc Encoding) (*Plan, error) {
	var raw rawPlan
	switch enc {
	case EncodingJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse plan json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse plan yaml: %w", err)
		}
	}

	p := &Plan{Name: raw.Name, Steps: make([]Step, 0, len(raw.Steps))}
	for i, m := range raw.Steps {
		step, err := decodeStep(m)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalidStep, i, err)
		}
		p.Steps = append(p.Steps, step)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// decodeStep rewrites the short form ({branch: 1}) into the long form
// ({op: branch, index: 1}) and decodes it strictly.
func decodeStep(m map[string]any) (Step, error) {
	fields := make(map[string]any, len(m))
	for k, v := range m {
		fields[strings.ToLower(k)] = v
	}

	for _, op := range []Op{OpBranch, OpLeaf} {
		v, ok := fields[string(op)]
		if !ok {
			continue
		}
		if _, dup := fields["op"]; dup {
			return Step{}, fmt.Errorf("both %q and \"op\" given", op)
		}
		delete(fields, string(op))
		fields["op"] = string(op)
		fields["index"] = v
	}

	var step Step
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &step,
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFuncType(rejectFractionalInts),
	})
	if err != nil {
		return Step{}, err
	}
	if err := decoder.Decode(fields); err != nil {
		return Step{}, err
	}
	return step, nil
}

// rejectFractionalInts stops mapstructure from truncating 1.9 into 1.
// JSON and YAML numbers arrive as float64; only whole values may become ints.
func rejectFractionalInts(from reflect.Type, to reflect.Type, data any) (any, error) {
	for to.Kind() == reflect.Pointer {
		to = to.Elem()
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}

	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a whole number", data)
	}
	return data, nil
}
