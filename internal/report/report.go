// Package report turns evaluated casts into entries and renders them as text
// tables or PDF.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/geniusisme/falldice/internal/attack"
	"github.com/geniusisme/falldice/internal/cast"
	"github.com/geniusisme/falldice/internal/dice"
)

// Entry is the evaluation of one cast.
type Entry struct {
	Name         string
	Fingerprint  string
	Scores       attack.Scores
	Mass         float64
	Combinations int
}

type entryJSON struct {
	Name         string             `json:"name"`
	Fingerprint  string             `json:"fingerprint"`
	Scores       map[string]float64 `json:"scores"`
	Mass         float64            `json:"mass"`
	Combinations int                `json:"combinations"`
}

// MarshalJSON writes scores as an object keyed by facet name.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		Name:         e.Name,
		Fingerprint:  e.Fingerprint,
		Scores:       make(map[string]float64, len(attack.Facets())),
		Mass:         e.Mass,
		Combinations: e.Combinations,
	}
	for _, f := range attack.Facets() {
		out.Scores[f.String()] = e.Scores.Get(f)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Entry{
		Name:         in.Name,
		Fingerprint:  in.Fingerprint,
		Mass:         in.Mass,
		Combinations: in.Combinations,
	}
	for name, v := range in.Scores {
		f, err := attack.ParseFacet(name)
		if err != nil {
			return err
		}
		e.Scores.Set(f, v)
	}
	return nil
}

// Evaluate builds def against cat, evaluates it and fingerprints it.
func Evaluate(def cast.Definition, cat *dice.Catalogue) (Entry, error) {
	return EvaluateWithLimit(def, cat, 0)
}

// EvaluateWithLimit is Evaluate that refuses, before enumerating anything, a
// cast with more than maxCombinations dice combinations. Zero means no limit.
func EvaluateWithLimit(def cast.Definition, cat *dice.Catalogue, maxCombinations int) (Entry, error) {
	disp, err := def.Build(cat)
	if err != nil {
		return Entry{}, err
	}
	if maxCombinations > 0 {
		n, err := disp.CountCombinations(cat)
		if err != nil {
			return Entry{}, fmt.Errorf("cast %s: %w", def.Name, err)
		}
		if n > maxCombinations {
			return Entry{}, fmt.Errorf("cast %s: %w (%d dice, limit %d combinations)",
				def.Name, attack.ErrTooManyCombinations, len(disp.Dice), maxCombinations)
		}
	}
	fingerprint, err := cast.Fingerprint(def)
	if err != nil {
		return Entry{}, err
	}
	r, err := disp.Evaluate(cat)
	if err != nil {
		return Entry{}, fmt.Errorf("cast %s: %w", def.Name, err)
	}
	return Entry{
		Name:         def.Name,
		Fingerprint:  fingerprint,
		Scores:       r.Scores,
		Mass:         r.Mass,
		Combinations: r.Combinations,
	}, nil
}

// WriteText writes entries as an aligned table, one row per cast.
func WriteText(w io.Writer, entries []Entry) error {
	return WriteTextLang(w, entries, language.English)
}

// WriteTextLang is WriteText with numbers formatted for tag.
func WriteTextLang(w io.Writer, entries []Entry, tag language.Tag) error {
	p := message.NewPrinter(tag)

	if _, err := p.Fprintf(w, "%-16s", "cast"); err != nil {
		return err
	}
	for _, f := range attack.Facets() {
		p.Fprintf(w, " %12s", f.String())
	}
	p.Fprintf(w, " %8s %14s\n", "mass", "combinations")

	for _, e := range entries {
		p.Fprintf(w, "%-16s", e.Name)
		for _, f := range attack.Facets() {
			p.Fprintf(w, " %12.4f", e.Scores.Get(f))
		}
		if _, err := p.Fprintf(w, " %8.4f %14d\n", e.Mass, e.Combinations); err != nil {
			return err
		}
	}
	return nil
}
