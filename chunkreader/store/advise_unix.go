//go:build linux || darwin || freebsd || openbsd || netbsd

package store

import "golang.org/x/sys/unix"

func osAdvise(data []byte, a Advice) error {
	if len(data) == 0 {
		return nil
	}
	var advice int
	switch a {
	case AdviceSequential:
		advice = unix.MADV_SEQUENTIAL
	case AdviceRandom:
		advice = unix.MADV_RANDOM
	case AdviceWillNeed:
		advice = unix.MADV_WILLNEED
	default:
		advice = unix.MADV_NORMAL
	}
	// Mappings start on MapAlign, so EINVAL only comes from kernels that
	// reject the hint itself.
	if err := unix.Madvise(data, advice); err != nil && err != unix.EINVAL {
		return err
	}
	return nil
}
