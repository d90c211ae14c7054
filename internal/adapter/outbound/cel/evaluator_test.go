package cel

import (
	"strings"
	"testing"
)

var dashboardFields = []string{"magasinId", "dateStart", "dateEnd", "day"}

func TestCompile_EmptyIsAlwaysReady(t *testing.T) {
	p, err := NewEvaluator().Compile("", dashboardFields)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	ok, err := p.Ready(nil)
	if err != nil || !ok {
		t.Errorf("Ready() = %v, %v; want true, nil", ok, err)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		values map[string]string
		want   bool
	}{
		{
			name:   "both dates set",
			expr:   `dateStart != "" && dateEnd != ""`,
			values: map[string]string{"dateStart": "2024-01-01", "dateEnd": "2024-01-31"},
			want:   true,
		},
		{
			name:   "one date missing",
			expr:   `dateStart != "" && dateEnd != ""`,
			values: map[string]string{"dateStart": "2024-01-01"},
			want:   false,
		},
		{
			name:   "nil values",
			expr:   `magasinId != ""`,
			values: nil,
			want:   false,
		},
		{
			name:   "either field",
			expr:   `magasinId != "" || day != ""`,
			values: map[string]string{"day": "2024-01-02"},
			want:   true,
		},
	}

	e := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := e.Compile(tt.expr, dashboardFields)
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			got, err := p.Ready(tt.values)
			if err != nil {
				t.Fatalf("Ready() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "unknown field", expr: `barcode != ""`, want: "compilation failed"},
		{name: "non-bool", expr: `dateStart + dateEnd`, want: "must return bool"},
		{name: "syntax", expr: `dateStart ==`, want: "compilation failed"},
		{name: "too long", expr: strings.Repeat("a", maxExpressionLength+1), want: "too long"},
		{name: "too deep", expr: strings.Repeat("(", maxNestingDepth+1) + "true" + strings.Repeat(")", maxNestingDepth+1), want: "too deep"},
	}

	e := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Compile(tt.expr, dashboardFields)
			if err == nil {
				t.Fatalf("Compile(%q) = nil error", tt.expr)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}
