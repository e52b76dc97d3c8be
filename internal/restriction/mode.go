package restriction

import (
	"fmt"
	"strings"
)

// Mode is a single travel mode.
type Mode uint8

const (
	Walk Mode = iota
	Bicycle
	Car
	Bus
	Tram
	Subway
	Rail
	Ferry
	numModes
)

var modeNames = [numModes]string{"walk", "bicycle", "car", "bus", "tram", "subway", "rail", "ferry"}

func (m Mode) String() string {
	if m < numModes {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode accepts mode names plus the OSM access keys that map onto them.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "walk", "foot", "pedestrian":
		return Walk, nil
	case "bicycle", "bike":
		return Bicycle, nil
	case "car", "motorcar", "motor_vehicle":
		return Car, nil
	case "bus", "psv":
		return Bus, nil
	case "tram":
		return Tram, nil
	case "subway":
		return Subway, nil
	case "rail", "train":
		return Rail, nil
	case "ferry":
		return Ferry, nil
	}
	return 0, fmt.Errorf("unknown travel mode %q", s)
}

// ModeSet is a set of travel modes.
type ModeSet uint16

const (
	// DefaultModes are the modes a restriction applies to when the source names none.
	DefaultModes = ModeSet(1<<Car | 1<<Bicycle)
	AllModes     = ModeSet(1<<numModes - 1)
)

func NewModeSet(modes ...Mode) ModeSet {
	var s ModeSet
	for _, m := range modes {
		s |= 1 << m
	}
	return s
}

func (s ModeSet) Contains(m Mode) bool { return m < numModes && s&(1<<m) != 0 }

func (s ModeSet) Without(o ModeSet) ModeSet { return s &^ o }

func (s ModeSet) IsEmpty() bool { return s == 0 }

func (s ModeSet) String() string {
	var names []string
	for m := Mode(0); m < numModes; m++ {
		if s.Contains(m) {
			names = append(names, m.String())
		}
	}
	return strings.Join(names, ",")
}

// ParseModeSet parses a list separated by ';' or ','. An empty string is the empty set.
func ParseModeSet(s string) (ModeSet, error) {
	var set ModeSet
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		if strings.TrimSpace(f) == "" {
			continue
		}
		m, err := ParseMode(f)
		if err != nil {
			return 0, err
		}
		set |= 1 << m
	}
	return set, nil
}
