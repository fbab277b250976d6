package pep440

import (
	"reflect"
	"testing"
)

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		in      string
		wantOp  Op
		wantVer string
		wantErr bool
	}{
		{">=1.0", OpGte, "1.0.0", false},
		{"<=2.1.3", OpLte, "2.1.3", false},
		{">0.5", OpGt, "0.5.0", false},
		{"<3", OpLt, "3.0.0", false},
		{"==1.2.3", OpExact, "1.2.3", false},
		{"=1.2.3", OpExact, "1.2.3", false},
		{"1.2.3", OpExact, "1.2.3", false},
		{"!=1.0.0", OpNe, "1.0.0", false},
		{"^1.2.3", OpCaret, "1.2.3", false},
		{"~1.2", OpTilde, "1.2.0", false},
		{"~=2.2", OpTilde, "2.2.0", false},
		{"", 0, "", true},
		{">=abc", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseConstraint(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseConstraint(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConstraint(%q) failed: %v", tt.in, err)
			}
			if c.Op != tt.wantOp {
				t.Errorf("op = %v, want %v", c.Op, tt.wantOp)
			}
			if got := c.Version.String(); got != tt.wantVer {
				t.Errorf("version = %q, want %q", got, tt.wantVer)
			}
		})
	}
}

func TestParseConstraints(t *testing.T) {
	got, err := ParseConstraints(">=1.0, <2.0")
	if err != nil {
		t.Fatalf("ParseConstraints failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d constraints, want 2", len(got))
	}
	if got[0].Op != OpGte || got[1].Op != OpLt {
		t.Errorf("ops = %v, %v; want >=, <", got[0].Op, got[1].Op)
	}

	if _, err := ParseConstraints(">=1.0, bogus"); err == nil {
		t.Error("expected error for unparseable member, got nil")
	}
}

func TestParseConstraintsWildcard(t *testing.T) {
	for _, in := range []string{"*", "", "  "} {
		got, err := ParseConstraints(in)
		if err != nil {
			t.Fatalf("ParseConstraints(%q) failed: %v", in, err)
		}
		if len(got) != 0 {
			t.Errorf("ParseConstraints(%q) = %v, want empty", in, got)
		}
	}
}

// Parsing the same spec twice must yield equal slices.
func TestParseConstraintsDeterministic(t *testing.T) {
	specs := []string{">=1.0,<2.0", "^1.2.3", "~=2.2, !=2.2.1", "==0.1.0"}
	for _, s := range specs {
		a, err := ParseConstraints(s)
		if err != nil {
			t.Fatalf("ParseConstraints(%q) failed: %v", s, err)
		}
		b, _ := ParseConstraints(s)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("ParseConstraints(%q) not deterministic: %v vs %v", s, a, b)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		constraint string
		version    string
		want       bool
	}{
		{">=1.0", "1.0.0", true},
		{">=1.0", "0.9.9", false},
		{"<2.0", "1.9.9", true},
		{"<2.0", "2.0.0", false},
		{"==1.2.3", "1.2.3", true},
		{"==1.2.3", "1.2.4", false},
		{"!=1.2.3", "1.2.4", true},
		{"^1.2.3", "1.9.0", true},
		{"^1.2.3", "2.0.0", false},
		{"^1.2.3", "1.2.2", false},
		{"^0.2.3", "0.2.9", true},
		{"^0.2.3", "0.3.0", false},
		{"^0.0.3", "0.0.3", true},
		{"^0.0.3", "0.0.4", false},
		{"~1.2.3", "1.2.9", true},
		{"~1.2.3", "1.3.0", false},
		{"~=1.2", "1.9.0", true},
		{"~=1.2", "2.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.constraint+"/"+tt.version, func(t *testing.T) {
			c, err := ParseConstraint(tt.constraint)
			if err != nil {
				t.Fatalf("ParseConstraint failed: %v", err)
			}
			if got := c.Match(MustParse(tt.version)); got != tt.want {
				t.Errorf("Match(%s, %s) = %v, want %v", tt.constraint, tt.version, got, tt.want)
			}
		})
	}
}

func TestMatchAll(t *testing.T) {
	cs, err := ParseConstraints(">=1.0, <2.0")
	if err != nil {
		t.Fatal(err)
	}
	if !MatchAll(cs, MustParse("1.5.0")) {
		t.Error("1.5.0 should satisfy >=1.0,<2.0")
	}
	if MatchAll(cs, MustParse("2.1.0")) {
		t.Error("2.1.0 should not satisfy >=1.0,<2.0")
	}
	if !MatchAll(nil, MustParse("9.9.9")) {
		t.Error("empty constraint list should match any version")
	}
}
