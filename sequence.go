package mga

import (
	"strconv"
	"strings"
)

// Sequence is an ordered list of body identifiers: the origin, the flyby bodies and the destination.
// Two consecutive identical bodies denote a resonant swing-by.
type Sequence []BodyID

// Origin returns the first body.
func (s Sequence) Origin() BodyID {
	if len(s) == 0 {
		return NoBody
	}
	return s[0]
}

// Destination returns the last body.
func (s Sequence) Destination() BodyID {
	if len(s) == 0 {
		return NoBody
	}
	return s[len(s)-1]
}

// Legs returns the number of legs, i.e. len-1.
func (s Sequence) Legs() int {
	if len(s) < 2 {
		return 0
	}
	return len(s) - 1
}

// Assists returns the number of gravity assists, i.e. len-2.
func (s Sequence) Assists() int {
	if len(s) < 2 {
		return 0
	}
	return len(s) - 2
}

// IsResonantLeg returns whether leg k returns to the body it departs from.
func (s Sequence) IsResonantLeg(k int) bool {
	return k >= 0 && k+1 < len(s) && s[k] == s[k+1]
}

// Resonant returns the number of resonant swing-bys.
func (s Sequence) Resonant() int {
	n := 0
	for k := 0; k < s.Legs(); k++ {
		if s.IsResonantLeg(k) {
			n++
		}
	}
	return n
}

// IsBackLeg returns whether a leg from one body to the other moves toward their attractor.
// Bodies are compared by semi major axis, hence resonant legs are never back legs.
func IsBackLeg(from, to Body) bool {
	return to.Elements.A < from.Elements.A
}

// BackLegs returns the indexes of the back legs of this sequence. Unknown bodies are ignored.
func (s Sequence) BackLegs(sys *System) []int {
	var out []int
	for k := 0; k < s.Legs(); k++ {
		from, okF := sys.Body(s[k])
		to, okT := sys.Body(s[k+1])
		if okF && okT && IsBackLeg(from, to) {
			out = append(out, k)
		}
	}
	return out
}

// BackSpacing returns the largest number of legs between two consecutive back legs,
// and zero when there are fewer than two back legs.
func (s Sequence) BackSpacing(sys *System) int {
	legs := s.BackLegs(sys)
	spacing := 0
	for i := 1; i < len(legs); i++ {
		if gap := legs[i] - legs[i-1] - 1; gap > spacing {
			spacing = gap
		}
	}
	return spacing
}

// String returns the canonical form of the sequence: the body identifiers joined by dashes.
func (s Sequence) String() string {
	ids := make([]string, len(s))
	for i, id := range s {
		ids[i] = strconv.Itoa(int(id))
	}
	return strings.Join(ids, "-")
}

// Equal returns whether both sequences visit the same bodies in the same order.
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the sequence.
func (s Sequence) Clone() Sequence {
	return append(Sequence(nil), s...)
}

// ParseSequence parses the canonical form returned by String.
func ParseSequence(str string) (Sequence, error) {
	parts := strings.Split(strings.TrimSpace(str), "-")
	if len(parts) < 2 {
		return nil, NewPrecondition("sequence %q needs at least an origin and a destination", str)
	}
	seq := make(Sequence, len(parts))
	for i, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || id < 0 {
			return nil, NewPrecondition("invalid body identifier %q in sequence %q", p, str)
		}
		seq[i] = BodyID(id)
	}
	return seq, nil
}
