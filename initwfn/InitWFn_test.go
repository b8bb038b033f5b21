package initwfn

import (
	"encoding/json"
	"testing"
)

// TestInitWFnJSONRoundTrip marshals each initializer wrapper to JSON
// and back, checking that the type tag and configuration survive and
// that the wrapped Gorgonia InitWFn is recreated.
func TestInitWFnJSONRoundTrip(t *testing.T) {
	glorotU, err := NewGlorotU(1.0)
	if err != nil {
		t.Fatal(err)
	}
	glorotN, err := NewGlorotN(2.0)
	if err != nil {
		t.Fatal(err)
	}
	zeroes, err := NewZeroes()
	if err != nil {
		t.Fatal(err)
	}
	ones, err := NewOnes()
	if err != nil {
		t.Fatal(err)
	}

	for _, wrapped := range []*InitWFn{glorotU, glorotN, zeroes, ones} {
		data, err := json.Marshal(wrapped)
		if err != nil {
			t.Fatalf("could not marshal %v: %v", wrapped.Type, err)
		}

		restored := &InitWFn{}
		if err := json.Unmarshal(data, restored); err != nil {
			t.Fatalf("could not unmarshal %v: %v", wrapped.Type, err)
		}

		if restored.Type != wrapped.Type {
			t.Errorf("invalid restored type\n\twant(%v)\n\thave(%v)",
				wrapped.Type, restored.Type)
		}
		if restored.Config != wrapped.Config {
			t.Errorf("invalid restored configuration\n\twant(%v)"+
				"\n\thave(%v)", wrapped.Config, restored.Config)
		}
		if restored.InitWFn() == nil {
			t.Errorf("unmarshalling %v should recreate the InitWFn",
				wrapped.Type)
		}
	}
}
