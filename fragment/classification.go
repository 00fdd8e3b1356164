package fragment

import (
	"strings"

	"github.com/pkg/errors"
)

// Classification is the semantic label a scene-understanding source attaches to a triangle.
type Classification uint8

// Known classifications. The numbering follows the common mobile AR mesh labelling.
const (
	Unclassified Classification = iota
	Wall
	Floor
	Ceiling
	Table
	Seat
	Window
	Door
)

var classificationNames = map[Classification]string{
	Unclassified: "unclassified",
	Wall:         "wall",
	Floor:        "floor",
	Ceiling:      "ceiling",
	Table:        "table",
	Seat:         "seat",
	Window:       "window",
	Door:         "door",
}

func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return "unknown"
}

// ClassificationFromString parses a case-insensitive classification name.
func ClassificationFromString(s string) (Classification, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for c, name := range classificationNames {
		if name == want {
			return c, nil
		}
	}
	return Unclassified, errors.Errorf("unknown classification %q", s)
}
