// Package partition provides helpers for carving the UUID space of the
// report store into contiguous regions and for detecting which region a
// particular seqlinks instance is responsible for.
package partition

import (
	"bytes"
	"fmt"
	"math/big" // UUIDs are 128-bit values; big.Int stands in for the missing uint128.

	"github.com/google/uuid"
)

// Range represents a contiguous UUID region that has been split into a
// number of partitions.
type Range struct {
	// The inclusive lower bound of the range.
	start uuid.UUID

	// splits[i] holds the exclusive upper bound for partition i. The
	// lower bound for partition i is splits[i-1] (or start for the
	// first partition).
	splits []uuid.UUID
}

// NewRange creates a new range [start, end) and splits it into the
// provided number of partitions.
func NewRange(start, end uuid.UUID, numPartitions int) (Range, error) {
	if bytes.Compare(start[:], end[:]) >= 0 {
		return Range{}, fmt.Errorf("range start UUID must be less than the end UUID")
	} else if numPartitions <= 0 {
		return Range{}, fmt.Errorf("number of partitions must be at least equal to 1")
	}

	// Each partition covers ((end - start + 1) / numPartitions) UUIDs.
	partSize := big.NewInt(0)
	partSize = partSize.Sub(big.NewInt(0).SetBytes(end[:]), big.NewInt(0).SetBytes(start[:]))
	partSize = partSize.Div(partSize.Add(partSize, big.NewInt(1)), big.NewInt(int64(numPartitions)))

	var (
		to     uuid.UUID
		err    error
		splits = make([]uuid.UUID, numPartitions)
		bound  = big.NewInt(0)
	)
	for partition := 0; partition < numPartitions-1; partition++ {
		bound.Mul(partSize, big.NewInt(int64(partition+1)))
		if to, err = uuid.FromBytes(bound.Bytes()); err != nil {
			return Range{}, fmt.Errorf("partition range: %w", err)
		}
		splits[partition] = to
	}
	// The last partition always extends to the end of the range.
	splits[numPartitions-1] = end

	return Range{start: start, splits: splits}, nil
}

// NewFullRange creates a new range that covers the full UUID value
// space and splits it into the provided number of partitions.
func NewFullRange(numPartitions int) (Range, error) {
	return NewRange(
		uuid.Nil,
		uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"),
		numPartitions,
	)
}

// Extents returns the full [start, end) range this object represents.
func (r Range) Extents() (uuid.UUID, uuid.UUID) {
	return r.start, r.splits[len(r.splits)-1]
}

// PartitionExtents returns the [start, end) range for the requested
// partition.
func (r Range) PartitionExtents(partition int) (uuid.UUID, uuid.UUID, error) {
	if partition < 0 || partition >= len(r.splits) {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid partition index")
	}

	if partition == 0 {
		return r.start, r.splits[0], nil
	}
	return r.splits[partition-1], r.splits[partition], nil
}
