package partition

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// ErrNoPartitionDataAvailableYet is returned by the Detector
// implementations to indicate that the partition assignment is not yet
// known, e.g. while a cluster is still spinning up.
var ErrNoPartitionDataAvailableYet = xerrors.New("no partition data available yet")

// Detector is implemented by objects that can assign a partition number
// to the current seqlinks instance.
type Detector interface {
	PartitionInfo(context.Context) (int, int, error)
}

// Fixed is a dummy Detector implementation that always returns back the
// same partition details.
type Fixed struct {
	// The assigned partition number.
	Partition int

	// The total number of partitions.
	NumPartitions int
}

// PartitionInfo implements Detector.
func (det Fixed) PartitionInfo(context.Context) (int, int, error) {
	return det.Partition, det.NumPartitions, nil
}

// DetectFromSRVRecords returns a Detector that obtains partition
// assignments by performing an SRV query against the DNS record of a
// headless kubernetes service. The instance's partition number is its
// hostname's position in the sorted list of returned targets.
func DetectFromSRVRecords(srvName string) Detector {
	return srvDetector{srvName: srvName}
}

type srvDetector struct {
	srvName string
}

// PartitionInfo implements Detector.
func (det srvDetector) PartitionInfo(ctx context.Context) (int, int, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return -1, -1, fmt.Errorf("partition detector: unable to detect host name: %w", err)
	}

	var resolver net.Resolver
	_, addrs, err := resolver.LookupSRV(ctx, "", "", det.srvName)
	if err != nil {
		return -1, -1, ErrNoPartitionDataAvailableYet
	}

	instances := make([]string, len(addrs))
	for i, addr := range addrs {
		instances[i] = strings.Split(addr.Target, ".")[0]
	}
	sort.Strings(instances)

	for i, instance := range instances {
		if instance == hostname {
			return i, len(instances), nil
		}
	}

	return -1, -1, ErrNoPartitionDataAvailableYet
}
