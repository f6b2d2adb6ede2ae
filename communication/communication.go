package communication

import "errors"

var (
	// ErrRoundNotReached is returned when messages of a round the network has not
	// finished yet are requested. This is a programming error: a round r can only be
	// read once the network advanced past r.
	ErrRoundNotReached = errors.New("round not reached yet")

	// ErrInvalidRound is returned for negative rounds
	ErrInvalidRound = errors.New("invalid round")

	// ErrInputAlreadySet is returned when the input of a round is written twice
	ErrInputAlreadySet = errors.New("input already set")
)

// Message is a message sent by a party on a given instance (channel)
// Round is the absolute round at which the message was sent
type Message struct {
	_struct  struct{} `codec:",omitempty,omitemptyarray"`
	Instance string   `codec:"instance"`
	Src      int      `codec:"src"`
	Target   int      `codec:"target"`
	Payload  []byte   `codec:"payload"`
	Round    int      `codec:"round"`
}

// PendingMessage is a message sent on a partially synchronous network
// that has not been delivered yet.
// Round is relative to the base round of the instance.
type PendingMessage struct {
	ID      int
	Round   int
	Src     int
	Target  int
	Payload []byte
}

// Network is the round-indexed message store shared by all parties of a simulation.
// Messages sent at the current round can only be read after the network advanced
// to a later round.
type Network interface {
	// NewInstance registers instance with the current round as its base round.
	// Registering an existing instance does nothing.
	NewInstance(instance string)

	// SetRound advances the network to round
	SetRound(round int)

	// Round returns the current round
	Round() int

	// Send records payload sent by src to each of the targets at the current round
	Send(instance string, src int, targets []int, payload []byte)

	// GetAllMessages returns all the messages received by target at the given round
	// (relative to the instance base round), indexed by source
	GetAllMessages(instance string, round int, target int) (map[int][][]byte, error)

	// GetMessages returns the messages received by target from src at the given round
	GetMessages(instance string, round int, target int, src int) ([][]byte, error)
}
