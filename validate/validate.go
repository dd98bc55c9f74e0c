package validate

import "github.com/psh-go/psh/ast"

// ValidateScript runs the structural validator, then the enhanced
// validator configured by cfg, over a parsed top level, mirroring
// original_source/psh/scripting/script_validator.py's ScriptValidator.validate.
func ValidateScript(top *ast.TopLevel, cfg Config) (structural []Issue, enhanced []Issue) {
	structural = NewStructuralValidator().Validate(top)

	ev := NewEnhancedValidator()
	cfg.Apply(ev)
	enhanced = ev.Validate(top)

	return structural, enhanced
}
