package results

// FilterByImpact narrows a list of violations to the ones whose impact is in levels, preserving
// their order. If levels is empty the input is returned unchanged, since filtering is opt-in.
// The input slice is never modified.
func FilterByImpact(violations []Violation, levels []Impact) []Violation {
	if len(levels) == 0 {
		return violations
	}
	allowed := make(map[Impact]struct{}, len(levels))
	for _, l := range levels {
		allowed[l] = struct{}{}
	}
	ret := make([]Violation, 0, len(violations))
	for _, v := range violations {
		if _, ok := allowed[v.Impact]; ok {
			ret = append(ret, v)
		}
	}
	return ret
}
