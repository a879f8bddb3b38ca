package access

// Filter is a single-key metadata constraint for knowledge retrieval.
// An empty Key means unrestricted: the gateway must match everything,
// not nothing.
type Filter struct {
	Key   string
	Value string
}

// Filter keys as stored on knowledge chunk metadata.
const (
	FilterKeyAll   = "allperm"
	FilterKeySuper = "superperm"
	FilterKeyPerm  = "perm"
)

// BuildFilter converts a scope into its retrieval filter. Priority order is
// load-bearing: allperm short-circuits everything, superperm beats perm, and
// a fully zero scope yields the unrestricted filter. The result always
// carries at most one key.
func BuildFilter(scope Scope) Filter {
	if scope.AllAccess {
		return Filter{Key: FilterKeyAll, Value: "1"}
	}
	if scope.SuperLevel != "" && scope.SuperLevel != "0" {
		return Filter{Key: FilterKeySuper, Value: scope.SuperLevel}
	}
	if scope.Level != "" && scope.Level != "0" {
		return Filter{Key: FilterKeyPerm, Value: scope.Level}
	}
	return Filter{}
}

// IsUnrestricted reports whether the filter matches every document.
func (f Filter) IsUnrestricted() bool {
	return f.Key == ""
}
