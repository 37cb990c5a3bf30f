package security

import "testing"

func TestCompilePathPolicy_Invalid(t *testing.T) {
	if _, err := CompilePathPolicy("path +"); err == nil {
		t.Fatal("expected compile error for malformed expression")
	}
	if _, err := CompilePathPolicy(`path + "x"`); err == nil {
		t.Fatal("expected error for non-bool expression")
	}
}

func TestPathPolicy_Allows(t *testing.T) {
	policy, err := CompilePathPolicy(`!path.startsWith("custom-documents/restricted/") || role == "manager"`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	tests := []struct {
		name string
		path string
		role string
		want bool
	}{
		{"open path default role", "custom-documents/org/a.txt", "default", true},
		{"restricted path default role", "custom-documents/restricted/a.txt", "default", false},
		{"restricted path manager role", "custom-documents/restricted/a.txt", "manager", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Allows(tt.path, "custom-documents", tt.role)
			if got != tt.want {
				t.Errorf("Allows(%q, role=%q) = %v, want %v", tt.path, tt.role, got, tt.want)
			}
		})
	}
}

func TestPathPolicy_NilAllowsAll(t *testing.T) {
	var policy *PathPolicy
	if !policy.Allows("any/path", "any", "default") {
		t.Error("nil policy must allow everything")
	}
}
