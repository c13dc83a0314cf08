package agents

import (
	"context"
	"regexp"
	"strings"

	"github.com/opendisaster/simflow/pkg/pipeline"
)

// Place is a resolved geographic location.
type Place struct {
	Name string
	Lat  float64
	Lng  float64
}

// Geocoder resolves a free-text location query to a best-match place.
// A nil Place with a nil error means no match; an error means the underlying
// lookup failed and should wrap pipeline.ErrExternalDependency.
type Geocoder interface {
	Forward(ctx context.Context, query string) (*Place, error)
}

// Heuristic pattern to extract a location phrase from a prompt: a location
// preposition followed by the phrase, terminated by a connective, sentence
// punctuation, or end of input.
var locationPattern = regexp.MustCompile(
	`(?i)(?:hitting|at|in|near|around|over)\s+(.+?)(?:\s+(?:after|during|with|from)|[.!?]|$)`,
)

// ExtractLocationQuery returns the location phrase found in the prompt, or
// "" when the heuristics find nothing.
func ExtractLocationQuery(prompt string) string {
	m := locationPattern.FindStringSubmatch(prompt)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ",")
}

// Location extracts a location phrase from the prompt and resolves it
// through a geocoder.
//
// Reads: "prompt". Writes: "location" (map with name/lat/lng, or nil when
// nothing was extracted or resolved).
type Location struct {
	geocoder Geocoder
}

func NewLocation(g Geocoder) *Location {
	return &Location{geocoder: g}
}

func (a *Location) Name() string {
	return "location"
}

// Run resolves the extracted phrase via the geocoder. An unextractable or
// unresolvable location yields an explicit nil value; only a failed lookup
// is an error, propagated unmodified.
func (a *Location) Run(ctx context.Context, c pipeline.Context) (pipeline.Result, error) {
	query := ExtractLocationQuery(c.Prompt())
	if query == "" {
		return pipeline.Result{"location": nil}, nil
	}

	place, err := a.geocoder.Forward(ctx, query)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return pipeline.Result{"location": nil}, nil
	}

	return pipeline.Result{
		"location": map[string]any{
			"name": place.Name,
			"lat":  place.Lat,
			"lng":  place.Lng,
		},
	}, nil
}
