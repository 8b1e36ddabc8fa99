package version

import (
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input string
		major uint16
		minor uint16
		patch uint16
	}{
		{"1.0.0", 1, 0, 0},
		{"01.02.0304", 1, 2, 304},
		{"00.00.0001", 0, 0, 1},
		{"10.23.9999", 10, 23, 9999},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if v.Major != tt.major {
				t.Errorf("Major = %d, want %d", v.Major, tt.major)
			}
			if v.Minor != tt.minor {
				t.Errorf("Minor = %d, want %d", v.Minor, tt.minor)
			}
			if v.Patch != tt.patch {
				t.Errorf("Patch = %d, want %d", v.Patch, tt.patch)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"1",
		"1.0",
		"1.0.0.0",
		"abc",
		"1..0",
		"1.0.x",
		"-1.0.0",
		"99999.0.0",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", input)
			}
		})
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "version 01.02.0304", want: "01.02.0304"},
		{input: "01.02.0304", want: "01.02.0304"},
		{input: "firmware 01.02.0304", wantErr: true},
		{input: "version 01.02.0304 extra", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseReply(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseReply(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReply(%q) returned error: %v", tt.input, err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0", "1.1.0", -1},
		{"2.0.0", "1.9.9999", 1},
	}

	for _, tt := range tests {
		a, _ := Parse(tt.a)
		b, _ := Parse(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAtLeast(t *testing.T) {
	base, _ := Parse("01.02.0000")
	newer, _ := Parse("01.02.0100")
	older, _ := Parse("01.01.9999")

	if !newer.AtLeast(base) {
		t.Error("newer.AtLeast(base) = false, want true")
	}
	if !base.AtLeast(base) {
		t.Error("base.AtLeast(base) = false, want true")
	}
	if older.AtLeast(base) {
		t.Error("older.AtLeast(base) = true, want false")
	}
}
