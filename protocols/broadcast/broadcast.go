package broadcast

import (
	"errors"
	"fmt"

	"github.com/shaih/go-bbsim/communication"
	"github.com/shaih/go-bbsim/protocols"
)

const (
	// MaxRounds is the number of rounds of a broadcast instance (rounds 0 to 3)
	MaxRounds = 4

	lastRound = MaxRounds - 1
)

// DefaultValue is output when no value was received from the sender
var DefaultValue = []byte("0")

// ErrMissingInput is returned when a broadcast node has no valid round 0 input
var ErrMissingInput = errors.New("missing broadcast input")

// Input is the round 0 input of every party: the id of the sender of the instance
// and, for the sender only, the value to broadcast
type Input struct {
	Sender int
	Value  []byte
}

// Broadcast is a party of a naive Byzantine broadcast:
//  - round 0: the sender sends its value to everybody
//  - rounds 1 and 2: a party adopts the first value received from the sender in the previous round,
//    unless it already adopted one
//  - round 3: a party outputs the adopted value (DefaultValue if none) and terminates
// Nobody ever checks what other parties received.
// Variants other than Baseline add adversarial behaviors (see variants.go).
type Broadcast struct {
	*protocols.BaseNode

	variant Variant

	// round is the next round to execute
	round int

	sender    int
	hasSender bool
	outval    []byte
	hasOutval bool

	// override is nil unless an adversarial override was configured
	override *override
}

// NewBroadcast creates a broadcast node of the given variant
func NewBroadcast(params protocols.Params, variant Variant) (*Broadcast, error) {
	if _, ok := variantHooks[variant]; !ok {
		return nil, fmt.Errorf("unknown broadcast variant %d", variant)
	}
	b := &Broadcast{
		BaseNode: protocols.NewBaseNode(params),
		variant:  variant,
	}
	b.Log = b.Log.WithField("variant", variant.String())
	return b, nil
}

// Constructor returns a constructor of broadcast nodes of the given variant
func Constructor(variant Variant) protocols.Constructor {
	return func(params protocols.Params) (protocols.Node, error) {
		return NewBroadcast(params, variant)
	}
}

// Variant returns the variant of the node
func (b *Broadcast) Variant() Variant {
	return b.variant
}

// Sender returns the sender of the instance, once round 0 executed
func (b *Broadcast) Sender() (int, bool) {
	return b.sender, b.hasSender
}

// Step executes round of the protocol
func (b *Broadcast) Step(round int) (bool, error) {
	if round != b.round {
		return false, fmt.Errorf("broadcast %s expected round %d, got %d: %w",
			b.Instance, b.round, round, communication.ErrInvalidRound)
	}
	if round > lastRound {
		return false, fmt.Errorf("broadcast %s already terminated: %w", b.Instance, communication.ErrInvalidRound)
	}

	done, err := b.baseStep(round)
	if err != nil {
		return false, err
	}

	if hook, ok := variantHooks[b.variant][round]; ok {
		if err := hook(b, round); err != nil {
			return false, err
		}
	}

	b.round++
	return done, nil
}

// baseStep executes the round of the baseline protocol
func (b *Broadcast) baseStep(round int) (bool, error) {
	switch {
	case round == 0:
		inp, ok := b.GetInput(0)
		if !ok {
			return false, fmt.Errorf("broadcast %s: %w", b.Instance, ErrMissingInput)
		}
		bi, ok := inp.(Input)
		if !ok {
			return false, fmt.Errorf("broadcast %s: input has type %T: %w", b.Instance, inp, ErrMissingInput)
		}
		if bi.Sender < 0 || bi.Sender >= b.N {
			return false, fmt.Errorf("broadcast %s: invalid sender %d: %w", b.Instance, bi.Sender, ErrMissingInput)
		}
		b.sender = bi.Sender
		b.hasSender = true
		if b.sender == b.Params.ID {
			b.Send(communication.All, bi.Value)
		}

	case round < lastRound:
		received, err := b.GetMessages(round-1, b.sender)
		if err != nil {
			return false, err
		}
		// We adopt the first message received.
		if len(received) > 0 && !b.hasOutval {
			b.adopt(received[0])
		}

	default:
		if b.hasOutval {
			b.Output(b.outval)
		} else {
			b.Output(DefaultValue)
		}
		return true, nil
	}

	return false, nil
}

func (b *Broadcast) adopt(value []byte) {
	b.outval = value
	b.hasOutval = true
	b.Log.Debugf("adopted value %q at round %d", value, b.round)
}
