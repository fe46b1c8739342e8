package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/strozynskiw/transponster/internal/cli"
)

// RunWithGolden executes a scenario, checks its expectations, and compares
// the rendered final report against a golden file in
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files hold the exact CSV report, so they also pin row order
// (first-seen client order) and amount rendering.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	if err := scenario.Check(result); err != nil {
		return err
	}

	var report bytes.Buffer
	if err := cli.WriteReport(&report, result.Summaries); err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, report.Bytes())

	return nil
}
