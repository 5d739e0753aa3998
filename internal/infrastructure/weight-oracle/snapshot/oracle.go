package snapshotoracle

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrMarkerNotSettled is returned when querying a snapshot that is still
	// open for changes.
	ErrMarkerNotSettled = errors.New("snapshot marker not settled yet")
	// ErrMalformedWeights is returned when a weights string can't be parsed.
	ErrMalformedWeights = errors.New("malformed weights")
	// ErrTotalWeightOverflow is returned when a weight update would make the
	// total supply overflow.
	ErrTotalWeightOverflow = errors.New("total weight overflow")
)

type checkpoint struct {
	fromMarker uint64
	value      uint64
}

type checkpoints []checkpoint

// valueAt returns the value of the latest checkpoint created at or before
// the given marker.
func (c checkpoints) valueAt(marker uint64) uint64 {
	i := sort.Search(len(c), func(i int) bool {
		return c[i].fromMarker > marker
	})
	if i == 0 {
		return 0
	}
	return c[i-1].value
}

func (c checkpoints) update(marker, value uint64) checkpoints {
	if n := len(c); n > 0 && c[n-1].fromMarker == marker {
		c[n-1].value = value
		return c
	}
	return append(c, checkpoint{marker, value})
}

// Oracle is an in-process checkpointed weight source. Every account balance
// and the total supply keep a history of checkpoints so that the weights at
// any past marker can be queried. Changes always apply to the current open
// snapshot, Advance settles it and opens the next one.
type Oracle struct {
	lock          *sync.RWMutex
	currentMarker uint64
	balances      map[string]checkpoints
	totalSupply   checkpoints
}

// NewOracle returns an oracle whose snapshot 0 is settled with the given
// weights.
func NewOracle(weights map[string]uint64) (*Oracle, error) {
	o := &Oracle{
		lock:     &sync.RWMutex{},
		balances: make(map[string]checkpoints),
	}
	for account, weight := range weights {
		if err := o.SetWeight(account, weight); err != nil {
			return nil, err
		}
	}
	o.Advance()
	return o, nil
}

// NewOracleFromString parses a comma separated list of account:weight pairs.
func NewOracleFromString(str string) (*Oracle, error) {
	weights, err := ParseWeights(str)
	if err != nil {
		return nil, err
	}
	return NewOracle(weights)
}

// ParseWeights parses a string like "alice:5,bob:3".
func ParseWeights(str string) (map[string]uint64, error) {
	weights := make(map[string]uint64)
	for _, pair := range strings.Split(str, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ":")
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedWeights, pair)
		}
		weight, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedWeights, pair)
		}
		weights[strings.TrimSpace(parts[0])] = weight
	}
	return weights, nil
}

// SetWeight sets the weight of the account in the current open snapshot.
func (o *Oracle) SetWeight(account string, weight uint64) error {
	o.lock.Lock()
	defer o.lock.Unlock()

	prev := o.balances[account].valueAt(o.currentMarker)
	total := o.totalSupply.valueAt(o.currentMarker) - prev
	newTotal, carry := bits.Add64(total, weight, 0)
	if carry != 0 {
		return ErrTotalWeightOverflow
	}

	o.balances[account] = o.balances[account].update(o.currentMarker, weight)
	o.totalSupply = o.totalSupply.update(o.currentMarker, newTotal)
	return nil
}

// Advance settles the current snapshot and returns its marker.
func (o *Oracle) Advance() uint64 {
	o.lock.Lock()
	defer o.lock.Unlock()

	settled := o.currentMarker
	o.currentMarker++
	return settled
}

func (o *Oracle) WeightAt(
	_ context.Context, account string, marker uint64,
) (uint64, uint64, error) {
	o.lock.RLock()
	defer o.lock.RUnlock()

	if marker >= o.currentMarker {
		return 0, 0, ErrMarkerNotSettled
	}
	return o.balances[account].valueAt(marker), o.totalSupply.valueAt(marker), nil
}

func (o *Oracle) CurrentMarker(_ context.Context) (uint64, error) {
	o.lock.RLock()
	defer o.lock.RUnlock()

	return o.currentMarker, nil
}
