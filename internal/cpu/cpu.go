// Package cpu wires pool workers to dedicated OS threads and, where the
// platform allows it, to individual CPU cores.
package cpu

import "runtime"

// LockThread wires the calling goroutine to its own OS thread until the
// returned release func is called.
func LockThread() (release func()) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}

// Pin locks the calling goroutine to its OS thread and pins that thread to
// the workerID-th CPU (modulo) of the set the process may run on. On failure
// the thread is unlocked again. Platforms without an affinity API only get
// the thread lock.
//
// release restores the thread's previous affinity before unlocking it. If
// that fails the thread stays locked, and the runtime discards it once the
// goroutine exits rather than handing a pinned thread to other goroutines.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	restore, err := pinToCore(workerID)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	return func() {
		if restore() == nil {
			runtime.UnlockOSThread()
		}
	}, nil
}

// coreFor maps a worker onto one of n allowed cores.
func coreFor(workerID, n int) int {
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}
