// Package agents provides the concrete extraction agents run by the
// simulation pipeline. Each agent documents the context keys it reads and
// writes, so a dependency graph between agents can be derived by inspection.
package agents

import (
	"context"
	"regexp"
	"strings"

	"github.com/opendisaster/simflow/pkg/pipeline"
)

// DisasterTypes is the known disaster vocabulary, matched case-insensitively.
var DisasterTypes = []string{
	"avalanche",
	"earthquake",
	"flood",
	"wildfire",
	"hurricane",
	"tornado",
	"tsunami",
	"landslide",
	"volcanic eruption",
}

var disasterPattern = buildDisasterPattern(DisasterTypes)

func buildDisasterPattern(types []string) *regexp.Regexp {
	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
}

// DisasterType extracts the disaster kind from the prompt.
//
// Reads: "prompt". Writes: "disaster_type".
type DisasterType struct{}

func NewDisasterType() *DisasterType {
	return &DisasterType{}
}

func (a *DisasterType) Name() string {
	return "disaster_type"
}

// Run matches the prompt against the disaster vocabulary and returns the
// lowercased match. No match is not an error: the result is empty and the
// consuming layer decides on a default.
func (a *DisasterType) Run(_ context.Context, c pipeline.Context) (pipeline.Result, error) {
	match := disasterPattern.FindString(c.Prompt())
	if match == "" {
		return pipeline.Result{}, nil
	}
	return pipeline.Result{"disaster_type": strings.ToLower(match)}, nil
}
