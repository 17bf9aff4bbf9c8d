package trainer

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Tracker accumulates per-episode statistics of a run.
type Tracker struct {
	Returns []float64
	Steps   []int
}

// NewTracker returns an empty Tracker with room for episodes entries.
func NewTracker(episodes int) *Tracker {
	return &Tracker{
		Returns: make([]float64, 0, episodes),
		Steps:   make([]int, 0, episodes),
	}
}

// Record appends one finished episode.
func (tr *Tracker) Record(episodeReturn float64, steps int) {
	tr.Returns = append(tr.Returns, episodeReturn)
	tr.Steps = append(tr.Steps, steps)
}

// Episodes returns the number of recorded episodes.
func (tr *Tracker) Episodes() int {
	return len(tr.Returns)
}

// MeanReturn averages the returns of the last n episodes, or of all
// episodes when fewer have been recorded.
func (tr *Tracker) MeanReturn(n int) float64 {
	if len(tr.Returns) == 0 {
		return 0
	}
	if n > len(tr.Returns) {
		n = len(tr.Returns)
	}

	sum := 0.0
	for _, r := range tr.Returns[len(tr.Returns)-n:] {
		sum += r
	}
	return sum / float64(n)
}

// Save persists the tracked statistics to path with gob.
func (tr *Tracker) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(tr); err != nil {
		return fmt.Errorf("save: could not encode run data: %v", err)
	}
	return nil
}

// LoadTracker reads statistics written by Save.
func LoadTracker(path string) (*Tracker, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: %v", err)
	}
	defer file.Close()

	var tr Tracker
	if err := gob.NewDecoder(file).Decode(&tr); err != nil {
		return nil, fmt.Errorf("load: corrupt run data %v: %v", path, err)
	}
	return &tr, nil
}
