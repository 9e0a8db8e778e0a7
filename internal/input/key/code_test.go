package key

import "testing"

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeA, "A"},
		{Code0, "0"},
		{CodeF24, "F24"},
		{CodeNumpad5, "Keypad 5"},
		{CodeBackQuote, "Tilde"},
		{CodeShift, "Left Shift"},
		{CodeEnter, "Enter"},
		{Code(250), "Key 250"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.String(); got != tt.want {
				t.Errorf("Code.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeValid(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{Code(-1), false},
		{Code(0), true},
		{CodeMeta, true},
		{Code(255), true},
		{Code(256), false},
	}

	for _, tt := range tests {
		if got := tt.code.Valid(); got != tt.want {
			t.Errorf("Code(%d).Valid() = %v, want %v", int(tt.code), got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		want   Code
		wantOK bool
	}{
		{"A", CodeA, true},
		{"a", CodeA, true},
		{"keypad /", CodeDivide, true},
		{" Left Alt ", CodeAlt, true},
		{"Page Up", CodePageUp, true},
		{"Hyper", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.name)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Parse(%q) = (%d, %v), want (%d, %v)", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNamedKeys(t *testing.T) {
	keys := NamedKeys()
	if len(keys) == 0 {
		t.Fatal("NamedKeys() returned no keys")
	}
	if keys[0].Code != Code1 || keys[0].Name != "1" {
		t.Errorf("first named key = %+v, want {1 1}", keys[0])
	}

	seen := make(map[Code]bool)
	for _, k := range keys {
		if !k.Code.Valid() {
			t.Errorf("named key %q has invalid code %d", k.Name, k.Code)
		}
		if seen[k.Code] {
			t.Errorf("code %d listed twice", k.Code)
		}
		seen[k.Code] = true
	}

	keys[0].Name = "changed"
	if NamedKeys()[0].Name != "1" {
		t.Error("NamedKeys() returned shared slice")
	}
}
