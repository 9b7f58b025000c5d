package model

// Rule coerces field writes: when Match accepts the field name and value,
// the stored value is Convert(value).
type Rule struct {
	Match   func(field string, value any) bool
	Convert func(value any) any
}

// Pipeline is an ordered list of rules. The first matching rule wins.
type Pipeline []Rule

// Apply returns value converted by the first rule that matches, or value
// unchanged when none does.
func (p Pipeline) Apply(field string, value any) any {
	for _, rule := range p {
		if rule.Match != nil && rule.Match(field, value) {
			if rule.Convert == nil {
				return value
			}
			return rule.Convert(value)
		}
	}
	return value
}

// FieldRule matches every write to the named field.
func FieldRule(field string, convert func(any) any) Rule {
	return Rule{
		Match:   func(name string, _ any) bool { return name == field },
		Convert: convert,
	}
}
