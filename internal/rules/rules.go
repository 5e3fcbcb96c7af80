// Package rules defines the canonical rule codes (SM-series) reported by the
// safemath generator and analyzer.
//
// Rule numbering scheme:
//
//	000–009  Checked function shape and directive placement
//	010–019  Derive directive requests
//	020–029  Rewrite limitations
//	030–039  Source layout and operand types
package rules

import "fmt"

// Rule represents a safemath rule code.
type Rule int

const (
	ruleInvalid Rule = iota

	SM001CheckedNeedsErrorResult
	SM002CheckedWithoutBody
	SM003CheckedMisplaced
	SM004UnknownDirective
	SM010DeriveEmpty
	SM011DeriveDuplicate
	SM012DeriveUnknown
	SM013DeriveMalformed
	SM014DeriveMissingPrimitive
	SM015DeriveNotComparable
	SM016DeriveMisplaced
	SM020ArithmeticInClosure
	SM021ComplexTargetInSimpleStatement
	SM022DeferObservesError
	SM030MissingBuildConstraint
	SM031UnsupportedOperand
)

var ruleNames = map[Rule]string{
	SM001CheckedNeedsErrorResult:        "SM001: CheckedNeedsErrorResult",
	SM002CheckedWithoutBody:             "SM002: CheckedWithoutBody",
	SM003CheckedMisplaced:               "SM003: CheckedMisplaced",
	SM004UnknownDirective:               "SM004: UnknownDirective",
	SM010DeriveEmpty:                    "SM010: DeriveEmpty",
	SM011DeriveDuplicate:                "SM011: DeriveDuplicate",
	SM012DeriveUnknown:                  "SM012: DeriveUnknown",
	SM013DeriveMalformed:                "SM013: DeriveMalformed",
	SM014DeriveMissingPrimitive:         "SM014: DeriveMissingPrimitive",
	SM015DeriveNotComparable:            "SM015: DeriveNotComparable",
	SM016DeriveMisplaced:                "SM016: DeriveMisplaced",
	SM020ArithmeticInClosure:            "SM020: ArithmeticInClosure",
	SM021ComplexTargetInSimpleStatement: "SM021: ComplexTargetInSimpleStatement",
	SM022DeferObservesError:             "SM022: DeferObservesError",
	SM030MissingBuildConstraint:         "SM030: MissingBuildConstraint",
	SM031UnsupportedOperand:             "SM031: UnsupportedOperand",
}

var ruleDescriptions = map[Rule]string{
	SM001CheckedNeedsErrorResult:        "Checked functions must have error as their last result.",
	SM002CheckedWithoutBody:             "Checked functions must have a body.",
	SM003CheckedMisplaced:               "The checked directive only applies to function declarations.",
	SM004UnknownDirective:               "Known directives are //safemath:checked and //safemath:derive(...).",
	SM010DeriveEmpty:                    "Derive requires at least one operation.",
	SM011DeriveDuplicate:                "Each derived operation must be listed only once.",
	SM012DeriveUnknown:                  "Supported operations are: add, sub, mul, div, rem.",
	SM013DeriveMalformed:                "Derive must be used with a parenthesized list of operations.",
	SM014DeriveMissingPrimitive:         "Derived operations need the type's own Try<Op>(rhs T) (T, bool) method.",
	SM015DeriveNotComparable:            "Deriving div or rem needs a comparable type to detect zero divisors.",
	SM016DeriveMisplaced:                "The derive directive only applies to type declarations.",
	SM020ArithmeticInClosure:            "Arithmetic in a function literal without an error result cannot be checked.",
	SM021ComplexTargetInSimpleStatement: "Compound assignment to a non-identifier target needs its own statement.",
	SM022DeferObservesError:             "Deferred calls of a checked function run before a failure is stored and must not recover or use the error result.",
	SM030MissingBuildConstraint:         "Files with checked functions must carry the safemath build constraint.",
	SM031UnsupportedOperand:             "Arithmetic operand type has no checked implementation.",
}

// String returns the canonical code and short name of the rule.
// Example: "SM011: DeriveDuplicate"
func (r Rule) String() string {
	v, ok := ruleNames[r]
	if !ok {
		return fmt.Sprintf("rule-unknown(%d)", r)
	}

	return v
}

// Description returns the human-readable explanation of the rule.
func (r Rule) Description() string {
	v, ok := ruleDescriptions[r]
	if !ok {
		return fmt.Sprintf("unknown-rule(%d)", r)
	}

	return v
}

// Canonical constructors for readability and stable call sites.

func CheckedNeedsErrorResult() Rule { return SM001CheckedNeedsErrorResult }
func CheckedWithoutBody() Rule      { return SM002CheckedWithoutBody }
func CheckedMisplaced() Rule        { return SM003CheckedMisplaced }
func UnknownDirective() Rule        { return SM004UnknownDirective }
func DeriveEmpty() Rule             { return SM010DeriveEmpty }
func DeriveDuplicate() Rule         { return SM011DeriveDuplicate }
func DeriveUnknown() Rule           { return SM012DeriveUnknown }
func DeriveMalformed() Rule         { return SM013DeriveMalformed }
func DeriveMissingPrimitive() Rule  { return SM014DeriveMissingPrimitive }
func DeriveNotComparable() Rule     { return SM015DeriveNotComparable }
func DeriveMisplaced() Rule         { return SM016DeriveMisplaced }
func ArithmeticInClosure() Rule     { return SM020ArithmeticInClosure }
func ComplexTargetInSimpleStatement() Rule {
	return SM021ComplexTargetInSimpleStatement
}
func DeferObservesError() Rule     { return SM022DeferObservesError }
func MissingBuildConstraint() Rule { return SM030MissingBuildConstraint }
func UnsupportedOperand() Rule     { return SM031UnsupportedOperand }
