package rules

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRulesSelected = errors.New("no rules selected")
	ErrUnknownRule     = errors.New("unknown rule")
	ErrDuplicateRule   = errors.New("duplicate rule id")
)

// DefaultNavLinkSpan is the line span within which three links are treated as a navigation cluster.
const DefaultNavLinkSpan = 5

// Options tunes the built-in rules.
type Options struct {
	NavLinkSpan int // max line distance between the first and third link of a cluster
}

// Registry is an ordered, immutable set of rules with unique identifiers.
type Registry struct {
	rules []Rule
	index map[string]int
}

// NewRegistry builds a registry that keeps the given order.
func NewRegistry(rules ...Rule) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(rules))}
	for _, rule := range rules {
		if _, ok := r.index[rule.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID)
		}
		r.index[rule.ID] = len(r.rules)
		r.rules = append(r.rules, rule)
	}
	return r, nil
}

// Default returns the registry of built-in rules: element rules first, then file rules.
func Default(opts Options) *Registry {
	if opts.NavLinkSpan <= 0 {
		opts.NavLinkSpan = DefaultNavLinkSpan
	}
	all := append(elementRules(), fileRules(opts)...)
	reg, err := NewRegistry(all...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Rules returns the rules in registry order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Lookup finds a rule by identifier.
func (r *Registry) Lookup(id string) (Rule, bool) {
	i, ok := r.index[id]
	if !ok {
		return Rule{}, false
	}
	return r.rules[i], true
}

// Select returns a registry restricted to ids, in registry order.
func (r *Registry) Select(ids []string) (*Registry, error) {
	keep, err := r.resolve(ids)
	if err != nil {
		return nil, err
	}
	return r.filter(func(id string) bool { return keep[id] })
}

// Without returns a registry with ids removed.
func (r *Registry) Without(ids []string) (*Registry, error) {
	drop, err := r.resolve(ids)
	if err != nil {
		return nil, err
	}
	return r.filter(func(id string) bool { return !drop[id] })
}

func (r *Registry) resolve(ids []string) (map[string]bool, error) {
	set := make(map[string]bool, len(ids))
	var unknown []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := r.index[id]; !ok {
			unknown = append(unknown, id)
			continue
		}
		set[id] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, strings.Join(unknown, ", "))
	}
	return set, nil
}

func (r *Registry) filter(keep func(id string) bool) (*Registry, error) {
	var selected []Rule
	for _, rule := range r.rules {
		if keep(rule.ID) {
			selected = append(selected, rule)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoRulesSelected
	}
	return NewRegistry(selected...)
}

// ParseList splits a comma separated rule list.
func ParseList(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
