package ast

// KindName returns the abstract class name spec.md §9 requires renderers to
// use ("the abstract node class names from §3", never a host-language type
// name leaking through). A closed type switch, not reflection — per the
// design note preferring a manually maintained table over reflective
// dataclass inspection.
func KindName(n Node) string {
	switch n.(type) {
	case *TopLevel:
		return "TopLevel"
	case *StatementList:
		return "StatementList"
	case *AndOrList:
		return "AndOrList"
	case *Pipeline:
		return "Pipeline"
	case *SimpleCommand:
		return "SimpleCommand"
	case *WhileLoop:
		return "WhileLoop"
	case *ForLoop:
		return "ForLoop"
	case *CStyleForLoop:
		return "CStyleForLoop"
	case *IfConditional:
		return "IfConditional"
	case *CaseConditional:
		return "CaseConditional"
	case *CaseItem:
		return "CaseItem"
	case *SelectLoop:
		return "SelectLoop"
	case *ArithmeticEvaluation:
		return "ArithmeticEvaluation"
	case *EnhancedTestStatement:
		return "EnhancedTestStatement"
	case *SubshellGroup:
		return "SubshellGroup"
	case *BraceGroup:
		return "BraceGroup"
	case *FunctionDef:
		return "FunctionDef"
	case *BreakStatement:
		return "BreakStatement"
	case *ContinueStatement:
		return "ContinueStatement"
	case *ReturnStatement:
		return "ReturnStatement"
	case *Redirect:
		return "Redirect"
	case *ArrayInitialization:
		return "ArrayInitialization"
	case *ArrayElementAssignment:
		return "ArrayElementAssignment"
	case *BinaryTestExpression:
		return "BinaryTestExpression"
	case *UnaryTestExpression:
		return "UnaryTestExpression"
	case *CompoundTestExpression:
		return "CompoundTestExpression"
	case *NegatedTestExpression:
		return "NegatedTestExpression"
	case *Word:
		return "Word"
	default:
		return "UnknownNode"
	}
}
