package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hcm-labs/hcm/internal/fault"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description  string           `json:"description"`
	UseRealData  *bool            `json:"use_real_data"`
	Seed         int64            `json:"seed"`
	Interactions []Interaction    `json:"interactions"`
	Expected     []ExpectedResult `json:"expected_results"`
}

// ExpectedResult captures the expected outcome for one turn. Turn indexes
// into the interaction list.
type ExpectedResult struct {
	Turn                  int     `json:"turn"`
	Rejected              bool    `json:"rejected"`
	MinImprovementPercent float64 `json:"min_improvement_percent"`
}

// RealData reports the fixture's data mode, defaulting to the fixed set.
func (f *Fixture) RealData() bool {
	if f.UseRealData == nil {
		return true
	}
	return *f.UseRealData
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(fault.IOFailure, err, "read fixture %s", path)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fault.Wrap(fault.InvalidArgument, err, "parse fixture %s", path)
	}
	if len(f.Interactions) == 0 {
		return nil, fault.New(fault.InvalidArgument, "fixture %s has no interactions", path)
	}
	return &f, nil
}

// #endregion fixture-loader

// #region verify

// Verify checks replay results against the fixture's expectations and
// returns one message per mismatch.
func (f *Fixture) Verify(results []Result) []string {
	var mismatches []string
	for _, exp := range f.Expected {
		if exp.Turn < 0 || exp.Turn >= len(results) {
			mismatches = append(mismatches, fmt.Sprintf("turn %d: no such result", exp.Turn))
			continue
		}
		res := results[exp.Turn]
		if exp.Rejected != (res.Err != nil) {
			mismatches = append(mismatches, fmt.Sprintf(
				"turn %d: expected rejected=%v, got err=%v", exp.Turn, exp.Rejected, res.Err))
			continue
		}
		if !exp.Rejected && res.ImprovementPercent < exp.MinImprovementPercent {
			mismatches = append(mismatches, fmt.Sprintf(
				"turn %d: improvement %.2f%% below expected %.2f%%",
				exp.Turn, res.ImprovementPercent, exp.MinImprovementPercent))
		}
	}
	return mismatches
}

// #endregion verify
