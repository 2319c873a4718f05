package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

type answerKind uint8

const (
	kindUnset answerKind = iota
	kindOption
	kindBool
)

// Answer is either an option index (multiple choice) or a truth value
// (true/false question). The zero value means "no answer", so option 0 is
// never confused with an empty selection.
type Answer struct {
	kind  answerKind
	index int
	truth bool
}

// Option returns the answer selecting the option at index i.
func Option(i int) Answer {
	return Answer{kind: kindOption, index: i}
}

// Bool returns a true/false answer.
func Bool(b bool) Answer {
	return Answer{kind: kindBool, truth: b}
}

// IsSet reports whether a is a real answer rather than the empty marker.
func (a Answer) IsSet() bool { return a.kind != kindUnset }

// IsOption reports whether a selects a multiple-choice option.
func (a Answer) IsOption() bool { return a.kind == kindOption }

// IsBool reports whether a is a true/false answer.
func (a Answer) IsBool() bool { return a.kind == kindBool }

// Index returns the option index and whether a is an option answer.
func (a Answer) Index() (int, bool) {
	return a.index, a.kind == kindOption
}

// Truth returns the boolean value and whether a is a true/false answer.
func (a Answer) Truth() (bool, bool) {
	return a.truth, a.kind == kindBool
}

// Equal is strict: kinds must match before values are compared.
func (a Answer) Equal(b Answer) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case kindOption:
		return a.index == b.index
	case kindBool:
		return a.truth == b.truth
	}
	return true
}

func (a Answer) String() string {
	switch a.kind {
	case kindOption:
		return strconv.Itoa(a.index)
	case kindBool:
		return strconv.FormatBool(a.truth)
	}
	return "unset"
}

// MarshalJSON encodes an option as a number, a truth value as a boolean and
// an unset answer as null.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case kindOption:
		return []byte(strconv.Itoa(a.index)), nil
	case kindBool:
		return []byte(strconv.FormatBool(a.truth)), nil
	}
	return []byte("null"), nil
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Answer{}
		return nil
	case bytes.Equal(data, []byte("true")):
		*a = Bool(true)
		return nil
	case bytes.Equal(data, []byte("false")):
		*a = Bool(false)
		return nil
	}

	// json.Number also accepts quoted numerals; an index must be a bare number.
	if len(data) > 0 && data[0] == '"' {
		return fmt.Errorf("answer must be a number, boolean or null, got string %s", data)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer must be a number, boolean or null: %w", err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("answer index %q: %w", n, err)
	}
	i, err := optionIndex(f)
	if err != nil {
		return fmt.Errorf("answer index %q: %w", n, err)
	}
	*a = Option(i)
	return nil
}

// optionIndex accepts integral values such as 1 or 1.0, matching the
// "integer" type of the document schema.
func optionIndex(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer")
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("out of range")
	}
	return int(f), nil
}

func (a *Answer) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("answer must be a scalar, got yaml kind %d", node.Kind)
	}
	switch node.Tag {
	case "!!null":
		*a = Answer{}
		return nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*a = Bool(b)
		return nil
	case "!!int":
		var i int
		if err := node.Decode(&i); err != nil {
			return err
		}
		*a = Option(i)
		return nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		i, err := optionIndex(f)
		if err != nil {
			return fmt.Errorf("answer index %q: %w", node.Value, err)
		}
		*a = Option(i)
		return nil
	}
	return fmt.Errorf("answer %q must be an integer or boolean", node.Value)
}
