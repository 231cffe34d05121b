package canon

import (
	"fmt"
	"strings"
)

// Rule selects how normalized labels are joined into a canonical string.
type Rule int

const (
	RulePlain Rule = iota
	RuleNBSPInsideLabels
	RuleAllNBSP
	RuleCommaSpace
	RuleDoubleSpace
	RuleTrailingSpace
	RuleLeadingSpace
)

var ruleNames = [...]string{
	RulePlain:            "PLAIN",
	RuleNBSPInsideLabels: "NBSP_INSIDE_LABELS",
	RuleAllNBSP:          "ALL_NBSP",
	RuleCommaSpace:       "COMMA_SPACE",
	RuleDoubleSpace:      "DOUBLE_SPACE",
	RuleTrailingSpace:    "TRAILING_SPACE",
	RuleLeadingSpace:     "LEADING_SPACE",
}

// Rules returns every rule in declaration order. Variant search walks this
// order and the first match wins.
func Rules() []Rule {
	out := make([]Rule, len(ruleNames))
	for i := range ruleNames {
		out[i] = Rule(i)
	}
	return out
}

func (r Rule) Valid() bool {
	return r >= 0 && int(r) < len(ruleNames)
}

func (r Rule) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rule(%d)", int(r))
	}
	return ruleNames[r]
}

func (r Rule) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRule, int(r))
	}
	return []byte(ruleNames[r]), nil
}

func (r *Rule) UnmarshalText(b []byte) error {
	parsed, err := ParseRule(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRule accepts rule names case-insensitively, with '-' or '_'.
func ParseRule(name string) (Rule, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for i, n := range ruleNames {
		if n == key {
			return Rule(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRule, name)
}

// join applies the rule to already-normalized labels.
func (r Rule) join(labels []string, multiWord map[string]struct{}) (string, error) {
	switch r {
	case RulePlain:
		return strings.Join(labels, " "), nil
	case RuleNBSPInsideLabels:
		tokens := make([]string, len(labels))
		for i, l := range labels {
			if _, ok := multiWord[l]; ok {
				tokens[i] = strings.ReplaceAll(l, " ", nbsp)
				continue
			}
			tokens[i] = l
		}
		return strings.Join(tokens, " "), nil
	case RuleAllNBSP:
		return strings.ReplaceAll(strings.Join(labels, " "), " ", nbsp), nil
	case RuleCommaSpace:
		return strings.Join(labels, ", "), nil
	case RuleDoubleSpace:
		return strings.Join(labels, "  "), nil
	case RuleTrailingSpace:
		return strings.Join(labels, " ") + " ", nil
	case RuleLeadingSpace:
		return " " + strings.Join(labels, " "), nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownRule, int(r))
	}
}
