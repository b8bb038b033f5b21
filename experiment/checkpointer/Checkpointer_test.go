package checkpointer

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/gravitylab/lander/timestep"
)

// weightStore is a Serializable with a single learnable value
type weightStore struct {
	weight float64
}

func (w *weightStore) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w.weight); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *weightStore) GobDecode(in []byte) error {
	return gob.NewDecoder(bytes.NewReader(in)).Decode(&w.weight)
}

func lastStep(number int) ts.TimeStep {
	obs := mat.NewVecDense(1, []float64{0.0})
	step := ts.New(ts.Mid, 0.0, 0.99, obs, number)
	step.SetEnd(ts.TerminalStateReached)
	return step
}

func midStep(number int) ts.TimeStep {
	obs := mat.NewVecDense(1, []float64{0.0})
	return ts.New(ts.Mid, 0.0, 0.99, obs, number)
}

// TestNEpisodeCheckpointsAtInterval runs an nEpisode checkpointer over
// several episodes and checks that a snapshot is written every n
// episode ends and for no other timestep.
func TestNEpisodeCheckpointsAtInterval(t *testing.T) {
	dir := t.TempDir()
	object := &weightStore{weight: 1.5}
	c := NewNEpisode(2, object,
		FilenameEnumerator(0, filepath.Join(dir, "policy"), ".bin"))

	for episode := 1; episode <= 4; episode++ {
		object.weight = float64(episode)
		for step := 0; step < 3; step++ {
			if err := c.Checkpoint(midStep(step)); err != nil {
				t.Fatal(err)
			}
		}
		if err := c.Checkpoint(lastStep(3)); err != nil {
			t.Fatal(err)
		}
	}

	files, err := filepath.Glob(filepath.Join(dir, "policy*.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("invalid number of checkpoints\n\twant(%v)\n\thave(%v)", 2,
			len(files))
	}

	// The first snapshot was taken at the end of episode 2
	restored := &weightStore{}
	if err := Load(filepath.Join(dir, "policy1.bin"), restored); err != nil {
		t.Fatal(err)
	}
	if restored.weight != 2.0 {
		t.Errorf("invalid restored weight\n\twant(%v)\n\thave(%v)", 2.0,
			restored.weight)
	}
}

// TestSaveLoadRoundTrip checks the gob file helpers
func TestSaveLoadRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "object.bin")

	saved := &weightStore{weight: -3.25}
	if err := Save(filename, saved); err != nil {
		t.Fatal(err)
	}

	restored := &weightStore{}
	if err := Load(filename, restored); err != nil {
		t.Fatal(err)
	}
	if restored.weight != saved.weight {
		t.Errorf("invalid restored weight\n\twant(%v)\n\thave(%v)",
			saved.weight, restored.weight)
	}

	if err := Load(filepath.Join(t.TempDir(), "missing.bin"),
		restored); err == nil {
		t.Error("loading a missing file should fail")
	}
}

// TestFileTimerNamesCheckpoints checks that a FileTimer checkpointer
// writes snapshots under timestamped names with the requested prefix
// and extension.
func TestFileTimerNamesCheckpoints(t *testing.T) {
	dir := t.TempDir()
	object := &weightStore{weight: 1.0}
	c := NewNEpisode(1, object, FileTimer(filepath.Join(dir, "policy"),
		".bin"))

	if err := c.Checkpoint(lastStep(0)); err != nil {
		t.Fatal(err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("invalid number of checkpoints\n\twant(%v)\n\thave(%v)", 1,
			len(files))
	}
	name := files[0].Name()
	if !strings.HasPrefix(name, "policy-") || !strings.HasSuffix(name,
		".bin") {
		t.Errorf("invalid checkpoint name %q", name)
	}
}
