// Package snapshot serializes the optimizer's profile and signal set to a
// JSON document and restores them. Brain-state transitions are deliberately
// not persisted: a reload always yields an empty transition list.
package snapshot

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hcm-labs/hcm/internal/brain"
	"github.com/hcm-labs/hcm/internal/fault"
	"github.com/hcm-labs/hcm/internal/profile"
)

// #region document

// profileDoc mirrors the consciousness_profile object on disk.
type profileDoc struct {
	Coherence      *float64 `json:"coherence"`
	Complexity     *float64 `json:"complexity"`
	Integration    *float64 `json:"integration"`
	AlphaDominance *float64 `json:"alpha_dominance"`
	Level          *string  `json:"consciousness_level"`
	Composite      *float64 `json:"composite_score"`
}

// document is the on-disk schema. Pointer fields let Load distinguish a
// missing key from a zero value and fail fast on malformed files.
type document struct {
	Profile     *profileDoc                  `json:"consciousness_profile"`
	EEGMetrics  map[string]float64           `json:"eeg_metrics"`
	PsiPatterns map[string][]float64         `json:"psi_prime_patterns"`
	Metrics     map[string]float64           `json:"consciousness_metrics"`
	Compat      *brain.TransferCompatibility `json:"transfer_compatibility"`
	Timestamp   string                       `json:"timestamp"`
	UseRealData *bool                        `json:"use_real_data"`
}

// #endregion document

// #region snapshot

// Snapshot is the in-memory form of a configuration snapshot.
type Snapshot struct {
	Profile     profile.Profile
	EEGMetrics  map[string]float64
	PsiPatterns map[string][]float64
	Metrics     map[string]float64
	Compat      brain.TransferCompatibility
	Timestamp   time.Time
	UseRealData bool
}

// Data reassembles the brain data carried by the snapshot. The transition
// list is always empty after a reload; this is documented behavior.
func (s Snapshot) Data() brain.Data {
	return brain.Data{
		EEG:      s.EEGMetrics,
		Patterns: s.PsiPatterns,
		States:   nil,
		Metrics:  s.Metrics,
		Compat:   s.Compat,
	}
}

// #endregion snapshot

// #region save

// Save writes the snapshot as indented JSON.
func Save(path string, s Snapshot) error {
	doc := document{
		Profile: &profileDoc{
			Coherence:      &s.Profile.Coherence,
			Complexity:     &s.Profile.Complexity,
			Integration:    &s.Profile.Integration,
			AlphaDominance: &s.Profile.AlphaDominance,
			Level:          &s.Profile.Level,
			Composite:      &s.Profile.Composite,
		},
		EEGMetrics:  s.EEGMetrics,
		PsiPatterns: s.PsiPatterns,
		Metrics:     s.Metrics,
		Compat:      &s.Compat,
		Timestamp:   s.Timestamp.UTC().Format(time.RFC3339Nano),
		UseRealData: &s.UseRealData,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fault.Wrap(fault.IOFailure, err, "marshal snapshot")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(fault.IOFailure, err, "write snapshot %s", path)
	}
	return nil
}

// #endregion save

// #region load

// Load reads and validates a snapshot file. Missing files are IO failures;
// structurally invalid documents are invalid arguments naming the field.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fault.Wrap(fault.IOFailure, err, "read snapshot %s", path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fault.Wrap(fault.InvalidArgument, err, "parse snapshot %s", path)
	}

	if doc.Profile == nil {
		return Snapshot{}, fault.New(fault.InvalidArgument, "snapshot missing consciousness_profile")
	}
	for name, field := range map[string]any{
		"coherence":           doc.Profile.Coherence,
		"complexity":          doc.Profile.Complexity,
		"integration":         doc.Profile.Integration,
		"alpha_dominance":     doc.Profile.AlphaDominance,
		"consciousness_level": doc.Profile.Level,
		"composite_score":     doc.Profile.Composite,
	} {
		if isNilPtr(field) {
			return Snapshot{}, fault.New(fault.InvalidArgument, "snapshot missing consciousness_profile.%s", name)
		}
	}
	if doc.EEGMetrics == nil {
		return Snapshot{}, fault.New(fault.InvalidArgument, "snapshot missing eeg_metrics")
	}
	if doc.PsiPatterns == nil {
		return Snapshot{}, fault.New(fault.InvalidArgument, "snapshot missing psi_prime_patterns")
	}
	if doc.Metrics == nil {
		return Snapshot{}, fault.New(fault.InvalidArgument, "snapshot missing consciousness_metrics")
	}
	if doc.Compat == nil {
		return Snapshot{}, fault.New(fault.InvalidArgument, "snapshot missing transfer_compatibility")
	}

	s := Snapshot{
		Profile: profile.Profile{
			Coherence:      *doc.Profile.Coherence,
			Complexity:     *doc.Profile.Complexity,
			Integration:    *doc.Profile.Integration,
			AlphaDominance: *doc.Profile.AlphaDominance,
			Level:          *doc.Profile.Level,
			Composite:      *doc.Profile.Composite,
		},
		EEGMetrics:  doc.EEGMetrics,
		PsiPatterns: doc.PsiPatterns,
		Metrics:     doc.Metrics,
		Compat:      *doc.Compat,
	}
	if doc.UseRealData != nil {
		s.UseRealData = *doc.UseRealData
	} else {
		s.UseRealData = true
	}
	if doc.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, doc.Timestamp)
		if err != nil {
			return Snapshot{}, fault.Wrap(fault.InvalidArgument, err, "snapshot timestamp")
		}
		s.Timestamp = ts
	}

	return s, nil
}

func isNilPtr(v any) bool {
	switch p := v.(type) {
	case *float64:
		return p == nil
	case *string:
		return p == nil
	default:
		return v == nil
	}
}

// #endregion load
