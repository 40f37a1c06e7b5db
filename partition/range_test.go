package partition

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestNewRangeValidation(t *testing.T) {
	end := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	if _, err := NewRange(end, uuid.Nil, 1); err == nil {
		t.Error("expected an error when start >= end")
	}
	if _, err := NewRange(uuid.Nil, end, 0); err == nil {
		t.Error("expected an error when numPartitions <= 0")
	}
}

func TestFullRangePartitionExtents(t *testing.T) {
	r, err := NewFullRange(4)
	if err != nil {
		t.Fatal(err)
	}

	expExtents := [][2]string{
		{"00000000-0000-0000-0000-000000000000", "40000000-0000-0000-0000-000000000000"},
		{"40000000-0000-0000-0000-000000000000", "80000000-0000-0000-0000-000000000000"},
		{"80000000-0000-0000-0000-000000000000", "c0000000-0000-0000-0000-000000000000"},
		{"c0000000-0000-0000-0000-000000000000", "ffffffff-ffff-ffff-ffff-ffffffffffff"},
	}

	for partition, exp := range expExtents {
		gotFrom, gotTo, err := r.PartitionExtents(partition)
		if err != nil {
			t.Fatalf("[partition %d] %v", partition, err)
		}
		if got := gotFrom.String(); got != exp[0] {
			t.Errorf("[partition %d] got start %s; want %s", partition, got, exp[0])
		}
		if got := gotTo.String(); got != exp[1] {
			t.Errorf("[partition %d] got end %s; want %s", partition, got, exp[1])
		}
	}

	if _, _, err := r.PartitionExtents(4); err == nil {
		t.Error("expected an error for an out-of-range partition index")
	}
}

func TestFixedDetector(t *testing.T) {
	det := Fixed{Partition: 1, NumPartitions: 4}

	gotPart, gotNum, err := det.PartitionInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gotPart != 1 || gotNum != 4 {
		t.Fatalf("got partition %d of %d; want 1 of 4", gotPart, gotNum)
	}
}
