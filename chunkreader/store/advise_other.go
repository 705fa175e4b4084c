//go:build !(linux || darwin || freebsd || openbsd || netbsd)

package store

func osAdvise(data []byte, a Advice) error {
	return nil
}
