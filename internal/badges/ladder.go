package badges

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidLadder = errors.New("invalid badge ladder")

type ladderFile struct {
	Badges []Rule `yaml:"badges"`
}

// LoadLadder reads a ladder from a YAML file of the form
//
//	badges:
//	  - id: achiever
//	    name: Achiever
//	    icon: "🌟"
//	    metric: achievements
//	    threshold: 5
func LoadLadder(path string) (Ladder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ladder: %w", err)
	}

	return ParseLadder(data)
}

func ParseLadder(data []byte) (Ladder, error) {
	var f ladderFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse ladder: %w", err)
	}

	l := Ladder(f.Badges)
	if err := l.Validate(); err != nil {
		return nil, err
	}

	return l, nil
}

// Validate checks ids are present and unique, metrics are known and
// thresholds are not negative.
func (l Ladder) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: no badges", ErrInvalidLadder)
	}

	seen := map[string]bool{}
	for i, r := range l {
		if r.ID == "" {
			return fmt.Errorf("%w: badge %d has no id", ErrInvalidLadder, i)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidLadder, r.ID)
		}
		seen[r.ID] = true

		if r.Metric != MetricAchievements && r.Metric != MetricPoints {
			return fmt.Errorf("%w: %q has unknown metric %q", ErrInvalidLadder, r.ID, r.Metric)
		}
		if r.Threshold < 0 {
			return fmt.Errorf("%w: %q has a negative threshold", ErrInvalidLadder, r.ID)
		}
	}

	return nil
}
