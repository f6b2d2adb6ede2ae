package fake

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shaih/go-bbsim/communication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDelayedNetworkInvalidDelta(t *testing.T) {
	_, err := NewDelayedNetwork(0)
	require.Error(t, err)
}

func TestDelayedNetworkPending(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	net, err := NewDelayedNetwork(3)
	require.NoError(err)

	net.SetRound(2)
	net.NewInstance("test")
	net.Send("test", 0, []int{1, 2}, []byte("x"))

	pending := net.ListPending("test")
	require.Len(pending, 2)
	assert.Equal(communication.PendingMessage{ID: 0, Round: 0, Src: 0, Target: 1, Payload: []byte("x")}, pending[0])
	assert.Equal(communication.PendingMessage{ID: 1, Round: 0, Src: 0, Target: 2, Payload: []byte("x")}, pending[1])
	assert.Empty(net.ListPending("unknown"))

	// nothing is delivered before the delay bound
	net.SetRound(3)
	msgs, err := net.GetMessages("test", 0, 1, 0)
	require.NoError(err)
	assert.Empty(msgs)

	// early delivery by the adversary lands in the current round
	require.True(net.DeliverPending(0))
	require.False(net.DeliverPending(0), "already delivered")
	require.False(net.DeliverPending(42), "unknown id")
	net.SetRound(4)
	msgs, err = net.GetMessages("test", 1, 1, 0)
	require.NoError(err)
	assert.Equal([][]byte{[]byte("x")}, msgs)

	// remaining message is forced at the delay bound
	assert.Len(net.ListPending("test"), 1)
	net.SetRound(5)
	assert.Empty(net.ListPending("test"))
	msgs, err = net.GetMessages("test", 2, 2, 0)
	require.NoError(err)
	assert.Equal([][]byte{[]byte("x")}, msgs)
}

func TestDelayedNetworkDeltaOneIsSynchronous(t *testing.T) {
	require := require.New(t)

	net, err := NewDelayedNetwork(1)
	require.NoError(err)
	net.NewInstance("test")
	net.Send("test", 0, []int{1}, []byte("x"))
	net.SetRound(1)

	msgs, err := net.GetMessages("test", 0, 1, 0)
	require.NoError(err)
	require.Equal([][]byte{[]byte("x")}, msgs)
}

// TestDelayedNetworkDeltaBound checks that every message sent at round s is readable
// at some round r with s < r <= s+Delta, whatever the adversary delivers early
// and however many rounds are skipped at once.
func TestDelayedNetworkDeltaBound(t *testing.T) {
	const (
		n         = 3
		numRounds = 40
	)
	rnd := rand.New(rand.NewSource(1))

	for _, delta := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("delta=%d", delta), func(t *testing.T) {
			require := require.New(t)

			net, err := NewDelayedNetwork(delta)
			require.NoError(err)
			net.NewInstance("test")

			// sent[payload] = send round
			sent := make(map[string]int)
			readable := make(map[string]int)

			round := 0
			for round < numRounds {
				for src := 0; src < n; src++ {
					payload := fmt.Sprintf("%d/%d", round, src)
					net.Send("test", src, []int{rnd.Intn(n)}, []byte(payload))
					sent[payload] = round
				}
				for _, p := range net.ListPending("test") {
					if rnd.Intn(4) == 0 {
						require.True(net.DeliverPending(p.ID))
					}
				}

				next := round + 1 + rnd.Intn(2)
				net.SetRound(next)
				for r := round; r < next; r++ {
					for target := 0; target < n; target++ {
						all, err := net.GetAllMessages("test", r, target)
						require.NoError(err)
						for _, list := range all {
							for _, m := range list {
								readable[string(m)] = r + 1
							}
						}
					}
				}
				round = next
			}

			for payload, s := range sent {
				r, ok := readable[payload]
				if !ok {
					// only messages close to the end may still be pending
					require.Greater(s+delta, round-1, "message %s never delivered", payload)
					continue
				}
				require.Greater(r, s, "message %s", payload)
				require.LessOrEqual(r, s+delta, "message %s", payload)
			}
		})
	}
}

func TestDelayedNetworkMetrics(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	require.NoError(err)

	net, err := NewDelayedNetwork(2)
	require.NoError(err)
	net.SetMetrics(m)
	net.NewInstance("test")
	net.Send("test", 0, []int{0, 1}, []byte("x"))

	pendingGauge, err := reg.Gather()
	require.NoError(err)
	for _, mf := range pendingGauge {
		if mf.GetName() == "bbsim_network_messages_pending" {
			require.Equal(2.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}

	net.SetRound(2)
	count, err := testutil.GatherAndCount(reg, "bbsim_network_messages_delivered")
	require.NoError(err)
	require.Equal(1, count)
	require.Empty(net.ListPending("test"))
}
