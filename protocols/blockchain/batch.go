package blockchain

import (
	"errors"
	"fmt"

	"github.com/algorand/go-algorand-sdk/encoding/msgpack"
)

// ErrInvalidTransactions is returned when the input of a blockchain node is not a list of transactions
var ErrInvalidTransactions = errors.New("invalid transactions")

// Batch is the list of transactions broadcast by the sender of an epoch.
// Transactions are length-prefixed by the encoding, so they may contain any byte.
type Batch struct {
	_struct      struct{} `codec:",omitempty,omitemptyarray"`
	Transactions []string `codec:"txs"`
}

// EncodeBatch encodes a list of transactions
func EncodeBatch(txs []string) []byte {
	return msgpack.Encode(Batch{Transactions: txs})
}

// DecodeBatch decodes a list of transactions encoded with EncodeBatch
func DecodeBatch(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	var batch Batch
	if err := msgpack.Decode(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode batch: %w", err)
	}
	return batch.Transactions, nil
}

// parseTransactions validates the input of a blockchain node
func parseTransactions(inp interface{}) ([]string, error) {
	txs, ok := inp.([]string)
	if !ok {
		return nil, fmt.Errorf("input has type %T, expected []string: %w", inp, ErrInvalidTransactions)
	}
	return txs, nil
}
