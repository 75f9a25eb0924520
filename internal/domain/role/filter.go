package role

// Filter narrows a rule listing. Zero-value fields do not filter.
type Filter struct {
	Patterns []Pattern
	Contexts []string
	MinRole  Role
}
