//go:build !linux && !windows

package cpu

// pinToCore is a no-op: macOS and the BSDs expose no thread affinity API.
func pinToCore(int) (restore func() error, err error) {
	return func() error { return nil }, nil
}
