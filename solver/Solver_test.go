package solver

import (
	"bytes"
	"encoding/json"
	"testing"
)

// TestSolverJSONRoundTrip marshals each solver wrapper to JSON and
// back, checking that the type tag and configuration survive and that
// the wrapped Gorgonia solver is recreated.
func TestSolverJSONRoundTrip(t *testing.T) {
	adam, err := NewDefaultAdam(0.001, 32)
	if err != nil {
		t.Fatal(err)
	}
	rmsprop, err := NewDefaultRMSProp(0.001, 32)
	if err != nil {
		t.Fatal(err)
	}

	for _, wrapped := range []*Solver{adam, rmsprop} {
		data, err := json.Marshal(wrapped)
		if err != nil {
			t.Fatalf("could not marshal %v: %v", wrapped.Type, err)
		}

		restored := &Solver{}
		if err := json.Unmarshal(data, restored); err != nil {
			t.Fatalf("could not unmarshal %v: %v", wrapped.Type, err)
		}

		if restored.Type != wrapped.Type {
			t.Errorf("invalid restored type\n\twant(%v)\n\thave(%v)",
				wrapped.Type, restored.Type)
		}
		if restored.Solver == nil {
			t.Fatalf("unmarshalling %v should recreate the solver",
				wrapped.Type)
		}

		restoredConfig, err := json.Marshal(restored.Config)
		if err != nil {
			t.Fatal(err)
		}
		wrappedConfig, err := json.Marshal(wrapped.Config)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(restoredConfig, wrappedConfig) {
			t.Errorf("invalid restored configuration\n\twant(%s)"+
				"\n\thave(%s)", wrappedConfig, restoredConfig)
		}
	}
}

// TestNewRMSPropRejectsNonDefaultEta checks the Gorgonia η restriction
func TestNewRMSPropRejectsNonDefaultEta(t *testing.T) {
	if _, err := NewRMSProp(0.001, 1e-8, 0.5, 0.999, 32, -1.0); err == nil {
		t.Error("creating an RMSProp solver with η != 0.001 should fail")
	}
}
