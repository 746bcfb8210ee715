package cursorpaging

import (
	"fmt"
	"maps"
	"slices"
)

// FilterRule is a named custom condition. Its parameters are serialized
// together with the page request, a RuleFactory rebuilds the rule from them.
type FilterRule interface {
	Name() string
	Parameters() map[string][]string
	Condition() Condition
}

// RuleFactory rebuilds a filter rule from its name and parameters.
type RuleFactory func(name string, parameters map[string][]string) (FilterRule, error)

type rule struct {
	name       string
	parameters map[string][]string
	condition  Condition
}

// NewRule creates a filter rule with a fixed condition.
func NewRule(name string, parameters map[string][]string, condition Condition) FilterRule {
	return rule{name: name, parameters: maps.Clone(parameters), condition: condition}
}

func (r rule) Name() string {
	return r.name
}

func (r rule) Parameters() map[string][]string {
	return maps.Clone(r.parameters)
}

func (r rule) Condition() Condition {
	return r.condition
}

// RuleRegistry is a RuleFactory backed by named constructors.
type RuleRegistry map[string]func(parameters map[string][]string) (FilterRule, error)

// Factory returns the registry as a RuleFactory.
func (r RuleRegistry) Factory() RuleFactory {
	return func(name string, parameters map[string][]string) (FilterRule, error) {
		constructor, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("%w '%s'", ErrUnknownRule, name)
		}

		return constructor(parameters)
	}
}

// ParameterNames returns the sorted parameter names of a rule.
func ParameterNames(r FilterRule) []string {
	return slices.Sorted(maps.Keys(r.Parameters()))
}
