package matchers

// Factory creates a comparator. A host runner calls it once per registration.
type Factory func(opts ...Option) Matcher

// Factories is a set of named comparators that can be registered with a host runner.
type Factories map[string]Factory

// ToHaveNoViolations contains the no-violations comparator.
var ToHaveNoViolations = Factories{
	NameNoViolations: func(opts ...Option) Matcher { return NoViolations(opts...) },
}

// ToHaveLessThanXViolations contains the bounded-violations comparator.
var ToHaveLessThanXViolations = Factories{
	NameLessThanXViolations: func(opts ...Option) Matcher { return LessThanXViolations(opts...) },
}

// All returns every comparator in one set.
func All() Factories {
	ret := make(Factories, len(ToHaveNoViolations)+len(ToHaveLessThanXViolations))
	for _, set := range []Factories{ToHaveNoViolations, ToHaveLessThanXViolations} {
		for name, f := range set {
			ret[name] = f
		}
	}
	return ret
}

// Lookup finds a comparator by name.
func Lookup(name string) (Factory, bool) {
	f, ok := All()[name]
	return f, ok
}
