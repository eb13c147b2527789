package mapcode

import (
	"errors"
	"slices"
	"testing"
)

func mustResolve(t *testing.T, c *Codec, name string) *Territory {
	t.Helper()
	ter, err := c.ResolveTerritory(name, nil)
	if err != nil {
		t.Fatalf("ResolveTerritory(%q): %v", name, err)
	}
	return ter
}

func TestResolveTerritory(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		parent   string
		wantCode int
	}{
		{"NLD", "", 528},
		{" nl ", "", 528},
		{"UK", "", 826},
		{"MN", "", 496},
		{"MN", "USA", 1001},
		{"MN", "IND", 1101},
		{"MN", "US-CA", 1001}, // a state stands for its country
		{"IN", "", 356},
		{"IN", "USA", 1013},
		{"IN", "RUS", 1205},
		{"GA", "", 266},
		{"GA", "US", 1009},
		{"GA", "IND", 1107},
		{"TN", "", 788},
		{"TN", "IN", 1106},
		{"CA", "", 124},
		{"CA", "USA", 1002},
		{"DE", "", 276},
		{"DE", "USA", 1014},
		{"WA", "", 1006},
		{"WA", "AUS", 1304},
		{"RJ", "", 1102},
		{"RJ", "USA", 1102}, // unique names ignore the parent
		{"US-MN", "", 1001},
		{"usa-mn", "", 1001},
		{"IN-MN", "", 1101},
		{"IND-RJ", "", 1102},
		{"AU-WA", "", 1304},
		{"RU-MOW", "", 1201},
		{"AAA", "", 999},
	}
	for _, tt := range tests {
		var parent *Territory
		if tt.parent != "" {
			parent = mustResolve(t, c, tt.parent)
		}
		got, err := c.ResolveTerritory(tt.name, parent)
		if err != nil {
			t.Errorf("ResolveTerritory(%q, %v): %v", tt.name, parent, err)
			continue
		}
		if got.Code() != tt.wantCode {
			t.Errorf("ResolveTerritory(%q, %v) = %d %v, want %d", tt.name, parent, got.Code(), got, tt.wantCode)
		}
	}
}

func TestResolveTerritoryErrors(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	rus := mustResolve(t, c, "RUS")
	ind := mustResolve(t, c, "IND")

	tests := []struct {
		name   string
		parent *Territory
		want   error
	}{
		{"", nil, ErrUnknownTerritory},
		{"NLX", nil, ErrUnknownTerritory},
		{"Q", nil, ErrUnknownTerritory},
		{"XX-MN", nil, ErrUnknownTerritory},
		{"US-RJ", nil, ErrUnknownTerritory},
		{"US-QQ", nil, ErrUnknownTerritory},
		{"MN", rus, ErrAmbiguousTerritory},
		{"IN", ind, ErrAmbiguousTerritory},
	}
	for _, tt := range tests {
		got, err := c.ResolveTerritory(tt.name, tt.parent)
		if !errors.Is(err, tt.want) {
			t.Errorf("ResolveTerritory(%q, %v) = %v, %v, want %v", tt.name, tt.parent, got, err, tt.want)
			continue
		}
		var te *TerritoryError
		if !errors.As(err, &te) {
			t.Errorf("ResolveTerritory(%q): error %T is not a *TerritoryError", tt.name, err)
		}
	}
}

func TestAmbiguousCandidates(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.ResolveTerritory("MN", mustResolve(t, c, "RUS"))
	var te *TerritoryError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v", err)
	}
	var codes []int
	for _, ter := range te.Candidates {
		codes = append(codes, ter.Code())
	}
	slices.Sort(codes)
	if !slices.Equal(codes, []int{496, 1001, 1101}) {
		t.Errorf("candidates = %v, want [496 1001 1101]", codes)
	}
	if te.Parent == nil || te.Parent.Code() != 643 {
		t.Errorf("parent = %v", te.Parent)
	}
}

func TestSuggestions(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		want string
	}{
		{"NLX", "NLD"},
		{"GERR", "GBR"},
		{"ZX", "ZA"},
	}
	for _, tt := range tests {
		_, err := c.ResolveTerritory(tt.name, nil)
		var te *TerritoryError
		if !errors.As(err, &te) {
			t.Errorf("ResolveTerritory(%q) error = %v", tt.name, err)
			continue
		}
		if len(te.Suggestions) > maxSuggestions {
			t.Errorf("%q: %d suggestions, limit %d", tt.name, len(te.Suggestions), maxSuggestions)
		}
		if !slices.Contains(te.Suggestions, tt.want) {
			t.Errorf("suggestions for %q = %v, want %q among them", tt.name, te.Suggestions, tt.want)
		}
	}

	_, err = c.ResolveTerritory("QQQQQQ", nil)
	var te *TerritoryError
	if errors.As(err, &te) && len(te.Suggestions) != 0 {
		t.Errorf("suggestions for QQQQQQ = %v, want none", te.Suggestions)
	}
}
