// Package oracle checks the correctness properties of protocol outputs:
// consistency and liveness of blockchains, validity of broadcasts.
// Violations are not errors of the protocol execution: they are findings
// reported to the caller as values implementing error.
package oracle

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/shaih/go-bbsim/communication"
)

// Party is anything with an id and an IO tape, e.g. a protocols.Node
type Party interface {
	ID() int
	IO() *communication.IO
}

// ConsistencyViolation reports two honest parties whose outputs are not prefixes of one another
type ConsistencyViolation struct {
	Round   int
	NodeA   int
	OutputA []string
	NodeB   int
	OutputB []string
}

func (v *ConsistencyViolation) Error() string {
	return fmt.Sprintf("at round %d, node %d's output [%s] is inconsistent with node %d's output [%s]",
		v.Round, v.NodeA, strings.Join(v.OutputA, " "), v.NodeB, strings.Join(v.OutputB, " "))
}

// LivenessViolation reports inputs that were not output by all honest parties in time
type LivenessViolation struct {
	T       int
	Round   int
	Missing []string
}

func (v *LivenessViolation) Error() string {
	return fmt.Sprintf("not %d-live: inputs received by some honest party up to round %d "+
		"but not output by all honest parties by round %d: %v", v.T, v.Round-v.T+1, v.Round, v.Missing)
}

// ValidityViolation reports an honest party that did not output the value of an honest sender
type ValidityViolation struct {
	Node     int
	Expected []byte
	Output   [][]byte
}

func (v *ValidityViolation) Error() string {
	return fmt.Sprintf("node %d output %q instead of %q", v.Node, v.Output, v.Expected)
}

func outputStrings(p Party) []string {
	outs := p.IO().Outputs()
	res := make([]string, len(outs))
	for i, o := range outs {
		res[i] = string(o)
	}
	return res
}

func isPrefix(prefix, s []string) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if prefix[i] != s[i] {
			return false
		}
	}
	return true
}

// CheckConsistency checks that the outputs of the honest parties at round form a chain of prefixes.
// It returns a *ConsistencyViolation otherwise.
func CheckConsistency(round int, honest []Party) error {
	var longest []string
	longestNode := -1
	for _, p := range honest {
		out := outputStrings(p)
		switch {
		case isPrefix(longest, out):
			longest = out
			longestNode = p.ID()
		case isPrefix(out, longest):
		default:
			return &ConsistencyViolation{
				Round:   round,
				NodeA:   longestNode,
				OutputA: longest,
				NodeB:   p.ID(),
				OutputB: out,
			}
		}
	}
	return nil
}

// CheckLiveness checks T-liveness at round: every transaction input to an honest party
// at a round up to round-T+1 must be output by all honest parties.
// Inputs must be []string. It returns a *LivenessViolation otherwise.
func CheckLiveness(T int, round int, honest []Party) error {
	if round < T {
		// liveness cannot be violated before T rounds
		return nil
	}

	inputs := make(map[string]bool)
	for i := 0; i <= round-T+1; i++ {
		for _, p := range honest {
			inp, ok := p.IO().GetInput(i)
			if !ok {
				continue
			}
			txs, ok := inp.([]string)
			if !ok {
				return fmt.Errorf("input of node %d at round %d has type %T, expected []string", p.ID(), i, inp)
			}
			for _, tx := range txs {
				inputs[tx] = true
			}
		}
	}

	outputs := make([]map[string]bool, len(honest))
	for j, p := range honest {
		outputs[j] = make(map[string]bool)
		for _, o := range outputStrings(p) {
			outputs[j][o] = true
		}
	}

	var missing []string
	for tx := range inputs {
		for j := range honest {
			if !outputs[j][tx] {
				missing = append(missing, tx)
				break
			}
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &LivenessViolation{
			T:       T,
			Round:   round,
			Missing: missing,
		}
	}
	return nil
}

// CheckValidity checks that every honest party output exactly value, the input of an honest sender.
// It returns a *ValidityViolation otherwise.
func CheckValidity(value []byte, honest []Party) error {
	for _, p := range honest {
		outs := p.IO().Outputs()
		if len(outs) != 1 || !bytes.Equal(outs[0], value) {
			return &ValidityViolation{
				Node:     p.ID(),
				Expected: value,
				Output:   outs,
			}
		}
	}
	return nil
}
