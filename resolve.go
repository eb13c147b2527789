package mapcode

import (
	"slices"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestions caps the "did you mean" list of an unknown name.
const maxSuggestions = 5

// Resolve returns the territory named by text. The name may be qualified
// with its country ("US-MN", "USA-MN"); otherwise parent, if given,
// disambiguates a name shared by several territories. Without a parent a
// shared name resolves to its highest-priority territory.
//
// A subdivision passed as parent stands for its country, so "MN" in the
// context of California is Minnesota.
func (r *Registry) Resolve(text string, parent *Territory) (*Territory, error) {
	name := normalizeName(text)
	if country, sub, ok := strings.Cut(name, "-"); ok {
		p, err := r.Resolve(country, nil)
		if err != nil {
			return nil, &TerritoryError{Input: text, Err: ErrUnknownTerritory, Suggestions: suggestionsOf(err)}
		}
		if p.parent != nil {
			p = p.parent
		}
		t, err := r.resolveName(sub, p)
		if err != nil {
			return nil, withInput(err, text)
		}
		if !p.isAncestorOf(t) {
			return nil, &TerritoryError{Input: text, Parent: p, Err: ErrUnknownTerritory}
		}
		return t, nil
	}
	return r.resolveName(name, parent)
}

func (r *Registry) resolveName(name string, parent *Territory) (*Territory, error) {
	candidates := r.byAbbr[name]
	switch {
	case len(candidates) == 0:
		return nil, &TerritoryError{Input: name, Parent: parent, Err: ErrUnknownTerritory, Suggestions: r.suggest(name)}
	case len(candidates) == 1:
		return candidates[0], nil
	case parent == nil:
		return candidates[0], nil
	}

	country := parent
	if country.parent != nil {
		country = country.parent
	}
	var matches []*Territory
	for _, c := range candidates {
		if c.parent == country {
			matches = append(matches, c)
		}
	}
	if len(matches) != 1 {
		return nil, &TerritoryError{
			Input:      name,
			Parent:     parent,
			Candidates: slices.Clone(candidates),
			Err:        ErrAmbiguousTerritory,
		}
	}
	return matches[0], nil
}

// suggest returns known names within one edit of name, or two for names
// longer than two letters.
func (r *Registry) suggest(name string) []string {
	if name == "" {
		return nil
	}
	limit := 1
	if len(name) > 2 {
		limit = 2
	}
	type scored struct {
		name string
		dist int
	}
	var found []scored
	for a := range r.byAbbr {
		if d := levenshtein.ComputeDistance(name, a); d <= limit {
			found = append(found, scored{a, d})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].name < found[j].name
	})
	out := make([]string, 0, min(len(found), maxSuggestions))
	for i := 0; i < len(found) && i < maxSuggestions; i++ {
		out = append(out, found[i].name)
	}
	return out
}

func suggestionsOf(err error) []string {
	if te, ok := err.(*TerritoryError); ok {
		return te.Suggestions
	}
	return nil
}

func withInput(err error, input string) error {
	if te, ok := err.(*TerritoryError); ok {
		c := *te
		c.Input = input
		return &c
	}
	return err
}
