package communication

import (
	"fmt"
	"sync"
)

// IO is the tape between a party and the outside world:
// inputs are written by the driver (once per round) and outputs are
// appended by the party and read by external readers.
type IO struct {
	mu  sync.Mutex
	inp map[int]interface{}
	out [][]byte
}

// NewIO returns an empty tape
func NewIO() *IO {
	return &IO{
		inp: make(map[int]interface{}),
	}
}

// NewSingleInputIO returns a tape whose only input is inp at round 0
func NewSingleInputIO(inp interface{}) *IO {
	io := NewIO()
	io.inp[0] = inp
	return io
}

// SetInput sets the input of round. Inputs are write-once.
func (io *IO) SetInput(round int, inp interface{}) error {
	io.mu.Lock()
	defer io.mu.Unlock()

	if _, ok := io.inp[round]; ok {
		return fmt.Errorf("round %d: %w", round, ErrInputAlreadySet)
	}
	io.inp[round] = inp
	return nil
}

// GetInput returns the input of round, if any
func (io *IO) GetInput(round int) (interface{}, bool) {
	io.mu.Lock()
	defer io.mu.Unlock()

	inp, ok := io.inp[round]
	return inp, ok
}

// Output appends msg to the outputs
func (io *IO) Output(msg []byte) {
	io.mu.Lock()
	defer io.mu.Unlock()

	io.out = append(io.out, msg)
}

// Outputs returns the current outputs without clearing them
func (io *IO) Outputs() [][]byte {
	io.mu.Lock()
	defer io.mu.Unlock()

	out := make([][]byte, len(io.out))
	copy(out, io.out)
	return out
}

// ReadOutputs returns the current outputs and clears them
func (io *IO) ReadOutputs() [][]byte {
	io.mu.Lock()
	defer io.mu.Unlock()

	out := io.out
	io.out = nil
	return out
}
