package airport

import (
	"fmt"
	"net/http"

	"github.com/antzucaro/matchr"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/exception"
)

var ErrAirportNotFound = exception.ApplicationError{
	Message:    "airport not found in reference table",
	StatusCode: http.StatusUnprocessableEntity,
}

// aliases maps the name the reference table is indexed under to the name
// commonly displayed for the same airport, which the provider rejects.
var aliases = map[string]string{
	"Duesseldorf":                 "Düsseldorf",
	"Basel/Mulhouse":              "Basel",
	"Cologne/Bonn":                "Cologne",
	"Karlsruhe/Baden-Baden":       "Karlsruhe",
	"Klaipeda/Palanga":            "Palanga",
	"Leipzig/Halle":               "Leipzig",
	"Lourdes/Tarbes":              "Tarbes",
	"Maastricht/Aachen (NL)":      "Maastricht",
	"Muenster/Osnabrueck (DE) 00": "Münster",
	"Paderborn/Lippstadt":         "Paderborn Lippstadt",
	"Preveza/Lefkada":             "Preveza",

	// no city id in the provider response
	"Palma de Mallorca": "Mallorca",
	"Kerkyra":           "Corfu",
	"Irakleion":         "Heraklion",
	"Eilat (IL)":        "Eilat",
	"Tel Aviv-yafo":     "Tel Aviv",
}

var aliasSources = invert(aliases)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for source, target := range m {
		out[target] = source
	}

	return out
}

// NormalizeSearchTerm returns the alias source when name is a known alias
// target, otherwise name unchanged.
func NormalizeSearchTerm(name string) string {
	if source, ok := aliasSources[name]; ok {
		return source
	}

	return name
}

// Resolver maps city or airport display names to provider airport codes.
type Resolver struct {
	codes map[string]string
	terms []string
}

// NewResolver indexes entries by normalized search term. The first entry wins
// when two rows normalize to the same term.
func NewResolver(entries []dto.AirportEntry) *Resolver {
	r := &Resolver{
		codes: make(map[string]string, len(entries)),
		terms: make([]string, 0, len(entries)),
	}

	for _, entry := range entries {
		term := NormalizeSearchTerm(entry.SearchTerm)
		if _, ok := r.codes[term]; ok {
			continue
		}

		r.codes[term] = entry.IataCode
		r.terms = append(r.terms, term)
	}

	return r
}

func (r *Resolver) Len() int {
	return len(r.codes)
}

// Resolve returns the airport code for name. A miss is returned as
// ErrAirportNotFound naming the closest indexed search term.
func (r *Resolver) Resolve(name string) (string, error) {
	term := NormalizeSearchTerm(name)
	if code, ok := r.codes[term]; ok {
		return code, nil
	}

	closest := r.closest(term)
	if closest == "" {
		return "", ErrAirportNotFound.Wrap(fmt.Errorf("no entry for %q", name))
	}

	return "", ErrAirportNotFound.Wrap(fmt.Errorf("no entry for %q, closest search term is %q", name, closest))
}

func (r *Resolver) closest(term string) string {
	var (
		best      string
		bestScore float64
	)

	for _, candidate := range r.terms {
		score := matchr.JaroWinkler(term, candidate, false)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}

	return best
}
