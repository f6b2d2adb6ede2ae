package broadcast

import (
	"testing"

	"github.com/shaih/go-bbsim/communication"
	"github.com/shaih/go-bbsim/primitives/secret"
	"github.com/shaih/go-bbsim/protocols"
	"github.com/shaih/go-bbsim/protocols/oracle"
	"github.com/stretchr/testify/require"
)

const testInstance = "test1"

// setupBroadcast creates n broadcast nodes of the given variant on net
func setupBroadcast(t *testing.T, n int, variant Variant, net communication.Network) []*Broadcast {
	require := require.New(t)

	keys, err := secret.DeriveKeys([]byte("broadcast test"), n)
	require.NoError(err)

	nodes := make([]*Broadcast, n)
	for i := 0; i < n; i++ {
		nodes[i], err = NewBroadcast(protocols.Params{
			Instance: testInstance,
			ID:       i,
			Secret:   keys[i],
			N:        n,
			Net:      communication.NewClient(i, n, net),
			IO:       communication.NewIO(),
		}, variant)
		require.NoError(err)
	}
	return nodes
}

// senderInputs gives every party the sender id at round 0, and the value to the sender
func senderInputs(sender int, value []byte) protocols.InputSource {
	return func(id int, round int) interface{} {
		if round != 0 {
			return nil
		}
		if id == sender {
			return Input{Sender: sender, Value: value}
		}
		return Input{Sender: sender}
	}
}

// corruptNode runs the honest protocol and calls afterRound0 once round 0 is done
type corruptNode struct {
	*Broadcast
	afterRound0 func(b *Broadcast) error
}

func (c *corruptNode) Step(round int) (bool, error) {
	done, err := c.Broadcast.Step(round)
	if err != nil {
		return false, err
	}
	if round == 0 {
		return done, c.afterRound0(c.Broadcast)
	}
	return done, nil
}

// silentNode never sends anything
type silentNode struct {
	id int
	io *communication.IO
}

func (s *silentNode) ID() int                      { return s.id }
func (s *silentNode) IO() *communication.IO        { return s.io }
func (s *silentNode) Step(round int) (bool, error) { return round >= lastRound, nil }

func toNodes(nodes []*Broadcast) []protocols.Node {
	res := make([]protocols.Node, len(nodes))
	for i, n := range nodes {
		res[i] = n
	}
	return res
}

// honestParties returns all the nodes except the corrupt ones
func honestParties(nodes []protocols.Node, corrupt ...int) []oracle.Party {
	isCorrupt := make(map[int]bool)
	for _, c := range corrupt {
		isCorrupt[c] = true
	}
	var res []oracle.Party
	for _, node := range nodes {
		if !isCorrupt[node.ID()] {
			res = append(res, node)
		}
	}
	return res
}
