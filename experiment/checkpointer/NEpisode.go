package checkpointer

import ts "github.com/gravitylab/lander/timestep"

// nEpisode implements checkpointing every N finished episodes
type nEpisode struct {
	interval int
	episodes int
	object   Serializable

	// filename returns the string filename of the file to save the
	// object in. Use FilenameEnumerator or FileTimer to generate a
	// naming function that keeps every snapshot:
	//
	//	c := NewNEpisode(100, object, FileTimer("policy", ".bin"))
	filename func() string
}

// NewNEpisode returns a checkpointer that saves its object every n
// finished episodes.
func NewNEpisode(n int, object Serializable,
	filename func() string) Checkpointer {
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint saves the tracked object if the timestep finishes an
// episode at the checkpointing interval
func (n *nEpisode) Checkpoint(t ts.TimeStep) error {
	if !t.Last() {
		return nil
	}

	n.episodes++
	if n.episodes%n.interval != 0 {
		return nil
	}
	return Save(n.filename(), n.object)
}
