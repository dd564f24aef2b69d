package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Jurisdiction is one entry of the authoritative set: a state, D.C., or an
// inhabited territory. ID is the USPS two-letter code, which doubles as the
// choropleth location code.
type Jurisdiction struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Aliases   []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Territory bool     `yaml:"territory,omitempty" json:"territory,omitempty"`
}

// JurisdictionSet is the read-only authoritative jurisdiction reference data,
// initialized once at startup. Resolution order is exact name or ID, then
// case-insensitive name or ID, then alias table. No fuzzy matching: assigning
// data to the wrong jurisdiction silently is worse than an explicit failure.
type JurisdictionSet struct {
	entries []Jurisdiction
	exact   map[string]string // verbatim name/ID -> ID
	folded  map[string]string // lowercased name/ID -> ID
	aliases map[string]string // lowercased alias -> ID
}

// NewJurisdictionSet validates and indexes the authoritative entries.
// It fails on duplicate identifiers or aliases that collide across entries;
// a corrupt set is a process-level configuration error.
func NewJurisdictionSet(entries []Jurisdiction) (*JurisdictionSet, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("authoritative jurisdiction set is empty")
	}

	s := &JurisdictionSet{
		entries: make([]Jurisdiction, len(entries)),
		exact:   make(map[string]string, len(entries)*2),
		folded:  make(map[string]string, len(entries)*2),
		aliases: make(map[string]string),
	}
	copy(s.entries, entries)

	for _, j := range s.entries {
		if j.ID == "" || j.Name == "" {
			return nil, fmt.Errorf("jurisdiction entry missing id or name: %+v", j)
		}
		if _, dup := s.exact[j.ID]; dup {
			return nil, fmt.Errorf("duplicate jurisdiction id %q", j.ID)
		}
		if _, dup := s.exact[j.Name]; dup {
			return nil, fmt.Errorf("duplicate jurisdiction name %q", j.Name)
		}
		s.exact[j.ID] = j.ID
		s.exact[j.Name] = j.ID
		s.folded[strings.ToLower(j.ID)] = j.ID
		s.folded[strings.ToLower(j.Name)] = j.ID

		for _, a := range j.Aliases {
			key := strings.ToLower(strings.TrimSpace(a))
			if key == "" {
				continue
			}
			if existing, dup := s.aliases[key]; dup && existing != j.ID {
				return nil, fmt.Errorf("alias %q claimed by both %s and %s", a, existing, j.ID)
			}
			s.aliases[key] = j.ID
		}
	}

	return s, nil
}

// Len returns the number of authoritative entries.
func (s *JurisdictionSet) Len() int { return len(s.entries) }

// All returns the entries sorted alphabetically by display name.
func (s *JurisdictionSet) All() []Jurisdiction {
	out := make([]Jurisdiction, len(s.entries))
	copy(out, s.entries)
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// DisplayName returns the canonical display name for an ID, or "" if the ID
// is not in the set.
func (s *JurisdictionSet) DisplayName(id string) string {
	for _, j := range s.entries {
		if j.ID == id {
			return j.Name
		}
	}
	return ""
}

// Contains reports whether id is an authoritative identifier.
func (s *JurisdictionSet) Contains(id string) bool {
	resolved, ok := s.exact[id]
	return ok && resolved == id
}

// Resolve maps a free-text jurisdiction token to its canonical ID.
// Priority: exact match, case-insensitive match, alias lookup — first match
// wins. Returns ok=false when nothing matches.
func (s *JurisdictionSet) Resolve(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	if id, ok := s.exact[token]; ok {
		return id, true
	}
	folded := strings.ToLower(token)
	if id, ok := s.folded[folded]; ok {
		return id, true
	}
	if id, ok := s.aliases[folded]; ok {
		return id, true
	}
	return "", false
}

// Canonicalize resolves a JurisdictionRow's single jurisdiction token against
// the authoritative set. A miss is an UnknownJurisdictionError carrying the
// source file and raw text for the unresolved report.
func Canonicalize(row JurisdictionRow, set *JurisdictionSet) (CanonicalRow, error) {
	id, ok := set.Resolve(row.Jurisdiction)
	if !ok {
		return CanonicalRow{}, &UnknownJurisdictionError{SourceFile: row.SourceFile, Token: row.Jurisdiction}
	}
	return CanonicalRow{
		JurisdictionID: id,
		SourceFile:     row.SourceFile,
		Region:         row.Region,
		Fields:         row.Fields,
		Extra:          row.Extra,
	}, nil
}
