package protocols

import (
	"fmt"
	"sync"

	"github.com/shaih/go-bbsim/communication"
)

// InputSource returns the input of party id at round, or nil if there is none
type InputSource func(id int, round int) interface{}

// RoundCheck is called at the end of every round with the set of terminated parties
type RoundCheck func(round int, nodes []Node, terminated map[int]bool) error

// NodeCheck is called after every node step
type NodeCheck func(round int, node Node, terminated map[int]bool) error

// SimulateParams are optional parameters of Simulate
// When Parallel is true, the nodes of a round are stepped concurrently.
// All sends of a round still complete before the next round starts, and node checks
// then run after all the nodes of the round have been stepped.
type SimulateParams struct {
	RoundCheck RoundCheck
	NodeCheck  NodeCheck
	Parallel   bool
}

// Simulate runs the nodes for the given number of rounds and returns the set of ids of
// terminated nodes.
// At each round, the network is advanced first, then every non-terminated node gets its
// input and is stepped, in the order of nodes.
// Any error of a node or of a check aborts the simulation.
func Simulate(
	rounds int,
	nodes []Node,
	net communication.Network,
	inputs InputSource,
	params *SimulateParams,
) (map[int]bool, error) {
	if params == nil {
		params = &SimulateParams{}
	}

	terminated := make(map[int]bool)
	for r := 0; r < rounds; r++ {
		net.SetRound(r)

		var active []Node
		for _, node := range nodes {
			if terminated[node.ID()] {
				continue
			}
			if inp := inputs(node.ID(), r); inp != nil {
				if err := node.IO().SetInput(r, inp); err != nil {
					return terminated, fmt.Errorf("node %d: %w", node.ID(), err)
				}
			}
			active = append(active, node)
		}

		var err error
		if params.Parallel {
			err = stepParallel(r, active, terminated, params.NodeCheck)
		} else {
			err = stepSequential(r, active, terminated, params.NodeCheck)
		}
		if err != nil {
			return terminated, err
		}

		if params.RoundCheck != nil {
			if err := params.RoundCheck(r, nodes, terminated); err != nil {
				return terminated, fmt.Errorf("round %d check failed: %w", r, err)
			}
		}
	}

	return terminated, nil
}

func stepSequential(r int, nodes []Node, terminated map[int]bool, check NodeCheck) error {
	for _, node := range nodes {
		done, err := node.Step(r)
		if err != nil {
			return fmt.Errorf("node %d failed at round %d: %w", node.ID(), r, err)
		}
		if done {
			terminated[node.ID()] = true
		}
		if check != nil {
			if err := check(r, node, terminated); err != nil {
				return fmt.Errorf("node %d check failed at round %d: %w", node.ID(), r, err)
			}
		}
	}
	return nil
}

func stepParallel(r int, nodes []Node, terminated map[int]bool, check NodeCheck) error {
	dones := make([]bool, len(nodes))
	errs := make([]error, len(nodes))

	var wg sync.WaitGroup
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node Node, wg *sync.WaitGroup) {
			defer wg.Done()
			dones[i], errs[i] = node.Step(r)
		}(i, node, &wg)
	}
	// round barrier: every send of round r is done past this point
	wg.Wait()

	for i, node := range nodes {
		if errs[i] != nil {
			return fmt.Errorf("node %d failed at round %d: %w", node.ID(), r, errs[i])
		}
		if dones[i] {
			terminated[node.ID()] = true
		}
	}
	if check != nil {
		for _, node := range nodes {
			if err := check(r, node, terminated); err != nil {
				return fmt.Errorf("node %d check failed at round %d: %w", node.ID(), r, err)
			}
		}
	}
	return nil
}
