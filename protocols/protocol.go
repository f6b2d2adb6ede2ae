package protocols

import (
	"github.com/shaih/go-bbsim/communication"
	"github.com/shaih/go-bbsim/primitives/secret"
	log "github.com/sirupsen/logrus"
)

// Node is a party executing a protocol one round at a time
type Node interface {
	// ID is the id of the party, between 0 and n-1
	ID() int

	// IO is the input/output tape of the party
	IO() *communication.IO

	// Step executes round (starting from 0) and returns true iff the protocol terminated.
	// It may read the input of round and the messages of previous rounds.
	// Step must not be called again once it returned true.
	Step(round int) (bool, error)
}

// Params are the parameters to construct a node
// Instance is a unique identifier of the protocol instance, used as channel name.
type Params struct {
	Instance string
	ID       int
	Secret   secret.Key
	N        int
	Net      *communication.Client
	IO       *communication.IO
}

// Constructor builds a node from its parameters
type Constructor func(params Params) (Node, error)

// BaseNode contains what is common to all protocol nodes:
// access to the network on the node instance, to the IO tape and to subprotocols
type BaseNode struct {
	Params

	Log   *log.Entry
	Arena *Arena
}

// NewBaseNode returns a base node and registers its instance on the network
func NewBaseNode(params Params) *BaseNode {
	params.Net.NewInstance(params.Instance)
	return &BaseNode{
		Params: params,
		Log: log.WithFields(log.Fields{
			"instance": params.Instance,
			"id":       params.ID,
			"n":        params.N,
		}),
		Arena: NewArena(),
	}
}

// ID returns the id of the party
func (b *BaseNode) ID() int {
	return b.Params.ID
}

// IO returns the IO tape of the party
func (b *BaseNode) IO() *communication.IO {
	return b.Params.IO
}

// Send sends payload to targets on the node instance
func (b *BaseNode) Send(targets communication.Targets, payload []byte) {
	b.Net.Send(b.Instance, targets, payload)
}

// GetMessages returns the messages received from src at round
func (b *BaseNode) GetMessages(round int, src int) ([][]byte, error) {
	return b.Net.GetMessages(b.Instance, round, src)
}

// GetAllMessages returns all the messages received at round, indexed by source
func (b *BaseNode) GetAllMessages(round int) (map[int][][]byte, error) {
	return b.Net.GetAllMessages(b.Instance, round)
}

// GetAllContents returns the distinct contents of the messages received at round
func (b *BaseNode) GetAllContents(round int) ([][]byte, error) {
	return b.Net.GetAllContents(b.Instance, round)
}

// Output appends msg to the outputs of the node
func (b *BaseNode) Output(msg []byte) {
	b.Params.IO.Output(msg)
}

// GetInput returns the input of round, if any
func (b *BaseNode) GetInput(round int) (interface{}, bool) {
	return b.Params.IO.GetInput(round)
}
