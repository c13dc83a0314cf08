// Command extraction shows the pipeline used as a library: two stock agents
// plus an inline one, run against a single prompt with a stub geocoder.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/opendisaster/simflow/pkg/agents"
	"github.com/opendisaster/simflow/pkg/pipeline"
)

// stubGeocoder resolves every query to a fixed place, so the example runs
// without a Mapbox token.
type stubGeocoder struct{}

func (stubGeocoder) Forward(_ context.Context, query string) (*agents.Place, error) {
	return &agents.Place{Name: query + " (stubbed)", Lat: 34.05, Lng: -118.24}, nil
}

func main() {
	orchestrator, err := pipeline.New([]pipeline.Agent{
		agents.NewDisasterType(),
		agents.NewLocation(stubGeocoder{}),
		// Inline agent: later agents see everything earlier agents wrote.
		pipeline.NewAgent("summary", func(_ context.Context, c pipeline.Context) (pipeline.Result, error) {
			dt, ok := c["disaster_type"].(string)
			if !ok {
				dt = "unknown"
			}
			return pipeline.Result{"summary": fmt.Sprintf("%s scenario for %q", dt, c.Prompt())}, nil
		}),
	})
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := orchestrator.Run(ctx, "A wildfire hitting Los Angeles after the drought")
	if err != nil {
		log.Fatalf("run pipeline: %v", err)
	}

	for k, v := range result {
		fmt.Printf("%s: %v\n", k, v)
	}
}
