package broadcast

import (
	"errors"
	"fmt"

	"github.com/shaih/go-bbsim/communication"
)

// Variant selects the adversarial behaviors available to a broadcast node
type Variant int

const (
	// Baseline is the broadcast protocol without adversarial hooks
	Baseline Variant = iota
	// Inconsistent lets a corrupt sender choose the output of every party
	Inconsistent
	// Invalid lets any corrupt party choose a common output for all parties
	Invalid
)

func (v Variant) String() string {
	switch v {
	case Baseline:
		return "baseline"
	case Inconsistent:
		return "inconsistent"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant parses the name of a variant
func ParseVariant(s string) (Variant, error) {
	for _, v := range []Variant{Baseline, Inconsistent, Invalid} {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown broadcast variant %q", s)
}

var (
	// ErrWrongVariant is returned when a hook of another variant is used
	ErrWrongVariant = errors.New("override not supported by this variant")
	// ErrNotSender is returned when a party other than the sender overrides outputs
	ErrNotSender = errors.New("only the sender can override outputs")
	// ErrOverrideTooLate is returned when an override is set after round 1 executed
	ErrOverrideTooLate = errors.New("override must be set before round 1")
	// ErrOverrideLength is returned when the number of override values is not n
	ErrOverrideLength = errors.New("one override value per party required")
)

// override is an adversarial override set before round 1
// values[i] is the value for party i (Inconsistent) or values[0] the common value (Invalid)
type override struct {
	values [][]byte
}

// roundHook runs after the baseline logic of a round
type roundHook func(b *Broadcast, round int) error

// variantHooks is the table of round hooks of every variant
var variantHooks = map[Variant]map[int]roundHook{
	Baseline: {},
	Inconsistent: {
		1: inconsistentSend,
		2: inconsistentAdopt,
	},
	Invalid: {
		1: invalidSend,
		2: invalidAdopt,
	},
}

// SetOverrideOutputs makes party i output values[i] at the end of the protocol.
// Only the sender of an Inconsistent instance can call it, before round 1 executes.
func (b *Broadcast) SetOverrideOutputs(values [][]byte) error {
	if b.variant != Inconsistent {
		return fmt.Errorf("SetOverrideOutputs on %s broadcast: %w", b.variant, ErrWrongVariant)
	}
	if b.round > 1 {
		return fmt.Errorf("broadcast %s at round %d: %w", b.Instance, b.round, ErrOverrideTooLate)
	}
	if b.hasSender && b.sender != b.Params.ID {
		return fmt.Errorf("party %d, sender %d: %w", b.Params.ID, b.sender, ErrNotSender)
	}
	if len(values) != b.N {
		return fmt.Errorf("got %d values for %d parties: %w", len(values), b.N, ErrOverrideLength)
	}

	b.override = &override{values: values}
	b.Log.Infof("inconsistent outputs set")
	return nil
}

// SetOverrideOutput makes every party output value at the end of the protocol.
// Any party of an Invalid instance can call it, before round 1 executes.
func (b *Broadcast) SetOverrideOutput(value []byte) error {
	if b.variant != Invalid {
		return fmt.Errorf("SetOverrideOutput on %s broadcast: %w", b.variant, ErrWrongVariant)
	}
	if b.round > 1 {
		return fmt.Errorf("broadcast %s at round %d: %w", b.Instance, b.round, ErrOverrideTooLate)
	}

	b.override = &override{values: [][]byte{value}}
	b.Log.Infof("invalid output %q set", value)
	return nil
}

// inconsistentSend lets the sender send its chosen value to every party
func inconsistentSend(b *Broadcast, round int) error {
	if b.override == nil || b.sender != b.Params.ID {
		return nil
	}
	for i, value := range b.override.values {
		b.Send(communication.To(i), value)
	}
	return nil
}

// inconsistentAdopt overrides the adopted value with the first value sent by the sender at round 1
func inconsistentAdopt(b *Broadcast, round int) error {
	received, err := b.GetMessages(1, b.sender)
	if err != nil {
		return err
	}
	if len(received) > 0 {
		b.adopt(received[0])
	}
	return nil
}

// invalidSend lets the party send its chosen value to everybody
func invalidSend(b *Broadcast, round int) error {
	if b.override == nil {
		return nil
	}
	b.Send(communication.All, b.override.values[0])
	return nil
}

// invalidAdopt overrides the adopted value when exactly one value was received at round 1
func invalidAdopt(b *Broadcast, round int) error {
	contents, err := b.GetAllContents(1)
	if err != nil {
		return err
	}
	if len(contents) == 1 {
		b.adopt(contents[0])
	}
	return nil
}
