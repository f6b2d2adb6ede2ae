package fake

import (
	"fmt"
	"sort"

	"github.com/shaih/go-bbsim/communication"
	log "github.com/sirupsen/logrus"
)

// DelayedNetwork simulates a partially synchronous network with delay bound Delta.
// Sent messages stay pending until they are delivered, either by the adversary
// (DeliverPending) or automatically so that a message sent at round s is readable
// at round s+Delta at the latest.
type DelayedNetwork struct {
	*Network

	Delta   int
	pending map[int]communication.Message // pending messages by id
	lastID  int
}

var _ communication.Network = (*DelayedNetwork)(nil)

// NewDelayedNetwork creates a partially synchronous network at round 0
func NewDelayedNetwork(delta int) (*DelayedNetwork, error) {
	if delta < 1 {
		return nil, fmt.Errorf("delta must be at least 1, got %d", delta)
	}
	return &DelayedNetwork{
		Network: NewNetwork(),
		Delta:   delta,
		pending: make(map[int]communication.Message),
	}, nil
}

// Send only adds the messages to the pending messages.
// Messages must be delivered in order to be read.
func (d *DelayedNetwork) Send(instance string, src int, targets []int, payload []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, target := range targets {
		d.pending[d.lastID] = communication.Message{
			Instance: instance,
			Src:      src,
			Target:   target,
			Payload:  payload,
			Round:    d.round,
		}
		d.lastID++
	}
	d.metrics.Sent.Add(float64(len(targets)))
	d.metrics.Pending.Set(float64(len(d.pending)))
}

// SetRound advances the network one round at a time.
// Before closing each round, every message that would otherwise exceed the delay bound
// is delivered.
func (d *DelayedNetwork) SetRound(round int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for r := d.round + 1; r <= round; r++ {
		d.forceDeltaDeliveries()
		d.setRound(r)
	}
}

// forceDeltaDeliveries delivers, in the bucket of the current round, all the messages
// sent at least Delta-1 rounds ago, so that they are readable at the next round
func (d *DelayedNetwork) forceDeltaDeliveries() {
	last := d.round - d.Delta + 1
	for _, id := range d.sortedIDs() {
		if d.pending[id].Round <= last {
			d.deliver(id)
		}
	}
}

// DeliverPending delivers the message id immediately, that is in the bucket of the current round.
// It returns false if there is no such pending message.
func (d *DelayedNetwork) DeliverPending(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pending[id]; !ok {
		return false
	}
	log.WithFields(log.Fields{
		"id":    id,
		"round": d.round,
	}).Info("early delivery of pending message")
	d.deliver(id)
	return true
}

func (d *DelayedNetwork) deliver(id int) {
	msg := d.pending[id]
	d.send(msg.Instance, msg.Src, []int{msg.Target}, msg.Payload)
	delete(d.pending, id)
	d.metrics.Delivered.Add(1)
	d.metrics.Pending.Set(float64(len(d.pending)))
}

// ListPending returns the messages of instance that are not delivered yet, by increasing id.
// Rounds are relative to the base round of the instance.
func (d *DelayedNetwork) ListPending(instance string) []communication.PendingMessage {
	d.mu.Lock()
	defer d.mu.Unlock()

	base, ok := d.baseRounds[instance]
	if !ok {
		return nil
	}

	var res []communication.PendingMessage
	for _, id := range d.sortedIDs() {
		msg := d.pending[id]
		if msg.Instance != instance {
			continue
		}
		res = append(res, communication.PendingMessage{
			ID:      id,
			Round:   msg.Round - base,
			Src:     msg.Src,
			Target:  msg.Target,
			Payload: msg.Payload,
		})
	}
	return res
}

func (d *DelayedNetwork) sortedIDs() []int {
	ids := make([]int, 0, len(d.pending))
	for id := range d.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
