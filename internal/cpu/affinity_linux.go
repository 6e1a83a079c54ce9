//go:build linux

package cpu

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to one CPU of its current affinity
// set and returns a func that puts the original set back.
// Must be called after runtime.LockOSThread().
func pinToCore(workerID int) (restore func() error, err error) {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil { // 0 = current thread
		return nil, fmt.Errorf("read thread affinity: %w", err)
	}

	n := allowed.Count()
	if n == 0 {
		return nil, errors.New("read thread affinity: empty cpu set")
	}
	cpuID := nthCPU(&allowed, coreFor(workerID, n))

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return nil, fmt.Errorf("pin thread to cpu %d: %w", cpuID, err)
	}

	return func() error {
		return unix.SchedSetaffinity(0, &allowed)
	}, nil
}

// nthCPU returns the index of the n-th (0-based) CPU present in set.
// n must be below set.Count().
func nthCPU(set *unix.CPUSet, n int) int {
	for cpuID := 0; ; cpuID++ {
		if !set.IsSet(cpuID) {
			continue
		}
		if n == 0 {
			return cpuID
		}
		n--
	}
}
