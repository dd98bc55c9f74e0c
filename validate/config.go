package validate

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

func mustJSONReader(s string) *strings.Reader { return strings.NewReader(s) }

// Config mirrors ValidatorConfig's feature toggles, loadable from a YAML
// file so a project can tune which enhanced checks run without rebuilding.
type Config struct {
	CheckUndefinedVars bool `yaml:"check_undefined_vars"`
	CheckCommandExists bool `yaml:"check_command_exists"`
	CheckQuoting       bool `yaml:"check_quoting"`
	CheckSecurity      bool `yaml:"check_security"`
}

// DefaultConfig mirrors ValidatorConfig's dataclass defaults (every check
// enabled).
func DefaultConfig() Config {
	return Config{
		CheckUndefinedVars: true,
		CheckCommandExists: true,
		CheckQuoting:       true,
		CheckSecurity:      true,
	}
}

// configSchema is the JSON Schema a loaded YAML config must satisfy,
// keeping the on-disk shape honest even though YAML itself is untyped.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "check_undefined_vars": {"type": "boolean"},
    "check_command_exists": {"type": "boolean"},
    "check_quoting": {"type": "boolean"},
    "check_security": {"type": "boolean"}
  }
}`

// LoadConfigJSON parses YAML config bytes, validates the decoded document
// against configSchema, and returns the resulting Config.
func LoadConfigJSON(data []byte) (Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("validate: parsing config: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", mustJSONReader(configSchema)); err != nil {
		return Config{}, fmt.Errorf("validate: compiling config schema: %w", err)
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		return Config{}, fmt.Errorf("validate: compiling config schema: %w", err)
	}
	if err := schema.Validate(jsonify(raw)); err != nil {
		return Config{}, fmt.Errorf("validate: config does not match schema: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("validate: decoding config: %w", err)
	}
	return cfg, nil
}

// jsonify normalizes yaml.v3's map[string]interface{} decoding (which may
// produce map[interface{}]interface{} for older-style documents) into the
// map[string]interface{}/[]interface{} shape jsonschema's Validate expects.
func jsonify(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = jsonify(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[fmt.Sprint(k)] = jsonify(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = jsonify(v)
		}
		return out
	default:
		return val
	}
}

// Apply copies the toggles in cfg onto an EnhancedValidator.
func (cfg Config) Apply(v *EnhancedValidator) {
	v.CheckUndefinedVars = cfg.CheckUndefinedVars
	v.CheckCommandExists = cfg.CheckCommandExists
	v.CheckQuoting = cfg.CheckQuoting
	v.CheckSecurity = cfg.CheckSecurity
}
