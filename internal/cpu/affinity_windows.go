//go:build windows

package cpu

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// pinToCore pins the current OS thread to one core and returns a func that
// puts the previous mask back.
// Must be called after runtime.LockOSThread().
func pinToCore(workerID int) (restore func() error, err error) {
	cpuID := coreFor(workerID, runtime.NumCPU())
	prev, err := setAffinity(uintptr(1) << uint(cpuID))
	if err != nil {
		return nil, fmt.Errorf("pin thread to cpu %d: %w", cpuID, err)
	}

	return func() error {
		_, err := setAffinity(prev)
		return err
	}, nil
}

func setAffinity(mask uintptr) (prev uintptr, err error) {
	prev, _, callErr := setThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if prev == 0 {
		return 0, callErr
	}
	return prev, nil
}
