package account

import "testing"

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name  string
		pwd   string
		attrs []string
		want  string
	}{
		{name: "empty", pwd: "", want: ""},
		{name: "too short", pwd: "Ab1!", want: pwdMinLenTag},
		{name: "whitespace", pwd: "Abcd 1234!", want: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", want: pwdNotAllNumTag},
		{name: "no upper", pwd: "abcd1234!", want: pwdComplexityTag},
		{name: "no special", pwd: "Abcd12345", want: pwdComplexityTag},
		{name: "similar to username", pwd: "Jdoe1234!", attrs: []string{"John Doe", "jdoe1234", "jdoe@test.cd"}, want: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd", want: pwdNoCommonTag},
		{name: "common, other case", pwd: "p@SSW0RD", want: pwdNoCommonTag},
		{name: "valid", pwd: "Tr0ub4dor&3x", attrs: []string{"John Doe", "jdoe", "jdoe@test.cd"}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkPassword(tt.pwd, tt.attrs...); got != tt.want {
				t.Errorf("checkPassword(%q) = %q; want %q", tt.pwd, got, tt.want)
			}
		})
	}
}

func TestIsRole(t *testing.T) {
	for _, role := range AllRoles {
		if !isRole(role) {
			t.Errorf("isRole(%q) = false; want true", role)
		}
	}
	for _, role := range []string{"", "admin", "teacher:", "viewer"} {
		if isRole(role) {
			t.Errorf("isRole(%q) = true; want false", role)
		}
	}
}
