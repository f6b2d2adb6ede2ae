package communication

import (
	"bytes"
	"sort"
)

// Targets is the set of recipients of a message: either a list of party ids
// or all the parties of the protocol
type Targets struct {
	all bool
	ids []int
}

// All targets every party of the protocol, including the sender itself
var All = Targets{all: true}

// To targets the given parties
func To(ids ...int) Targets {
	return Targets{ids: ids}
}

// Resolve returns the ids of the targets for a protocol with n parties
func (t Targets) Resolve(n int) []int {
	if !t.all {
		return t.ids
	}
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// Client is the binding of a single party to the network
type Client struct {
	ID  int
	N   int
	Net Network
}

// NewClient returns the client of party id among n parties
func NewClient(id int, n int, net Network) *Client {
	return &Client{
		ID:  id,
		N:   n,
		Net: net,
	}
}

// NewInstance registers the instance on the network
func (c *Client) NewInstance(instance string) {
	c.Net.NewInstance(instance)
}

// Send sends payload to the targets on the instance
func (c *Client) Send(instance string, targets Targets, payload []byte) {
	c.Net.Send(instance, c.ID, targets.Resolve(c.N), payload)
}

// GetMessages returns the messages src sent to this party at round
func (c *Client) GetMessages(instance string, round int, src int) ([][]byte, error) {
	return c.Net.GetMessages(instance, round, c.ID, src)
}

// GetAllMessages returns all the messages received at round, indexed by source
func (c *Client) GetAllMessages(instance string, round int) (map[int][][]byte, error) {
	return c.Net.GetAllMessages(instance, round, c.ID)
}

// GetAllContents returns the distinct contents of all the messages received at round,
// whatever their source. Contents are sorted.
func (c *Client) GetAllContents(instance string, round int) ([][]byte, error) {
	msgs, err := c.GetAllMessages(instance, round)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var contents [][]byte
	for _, list := range msgs {
		for _, m := range list {
			if seen[string(m)] {
				continue
			}
			seen[string(m)] = true
			contents = append(contents, m)
		}
	}

	sort.Slice(contents, func(i, j int) bool {
		return bytes.Compare(contents[i], contents[j]) < 0
	})
	return contents, nil
}
