package access

import (
	"testing"
)

func TestResolve(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name string
		role string
		want Scope
	}{
		{
			name: "technician maps to level 3",
			role: "TECHNICIAN",
			want: Scope{Level: "3"},
		},
		{
			name: "lowercase role is normalized",
			role: "pilot",
			want: Scope{Level: "1"},
		},
		{
			name: "admin gets all access",
			role: "ADMIN",
			want: Scope{AllAccess: true},
		},
		{
			name: "senior cs gets super level",
			role: "SENIOR_CS",
			want: Scope{SuperLevel: "2"},
		},
		{
			name: "empty role falls back to USER baseline",
			role: "",
			want: Scope{Level: "2"},
		},
		{
			name: "unknown role falls back to USER baseline",
			role: "INTERGALACTIC_OVERLORD",
			want: Scope{Level: "2"},
		},
		{
			name: "role with surrounding spaces",
			role: "  customer_support  ",
			want: Scope{Level: "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.role)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.role, got, tt.want)
			}
		})
	}
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		want  Filter
	}{
		{
			name:  "all access short-circuits everything",
			scope: Scope{AllAccess: true, SuperLevel: "2", Level: "1"},
			want:  Filter{Key: FilterKeyAll, Value: "1"},
		},
		{
			name:  "super level beats level",
			scope: Scope{SuperLevel: "2", Level: "1"},
			want:  Filter{Key: FilterKeySuper, Value: "2"},
		},
		{
			name:  "plain level",
			scope: Scope{Level: "3"},
			want:  Filter{Key: FilterKeyPerm, Value: "3"},
		},
		{
			name:  "zero-string super level is not granted",
			scope: Scope{SuperLevel: "0", Level: "4"},
			want:  Filter{Key: FilterKeyPerm, Value: "4"},
		},
		{
			name:  "fully zero scope is unrestricted",
			scope: Scope{SuperLevel: "0", Level: "0"},
			want:  Filter{},
		},
		{
			name:  "empty scope is unrestricted",
			scope: Scope{},
			want:  Filter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildFilter(tt.scope)
			if got != tt.want {
				t.Errorf("BuildFilter(%+v) = %+v, want %+v", tt.scope, got, tt.want)
			}
			if got.Key == "" && !got.IsUnrestricted() {
				t.Errorf("empty filter must report unrestricted")
			}
		})
	}
}

func TestResolveThenBuildFilter(t *testing.T) {
	r := NewResolver()

	// The composed path used by every request.
	cases := map[string]Filter{
		"ADMIN":      {Key: FilterKeyAll, Value: "1"},
		"TECHNICIAN": {Key: FilterKeyPerm, Value: "3"},
		"SENIOR_CS":  {Key: FilterKeySuper, Value: "2"},
		"":           {Key: FilterKeyPerm, Value: "2"},
	}

	for role, want := range cases {
		if got := BuildFilter(r.Resolve(role)); got != want {
			t.Errorf("role %q: filter = %+v, want %+v", role, got, want)
		}
	}
}
