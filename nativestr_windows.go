//go:build windows

package corehost

import "golang.org/x/sys/windows"

// charT is a NUL-terminated char_t string; char_t is UTF-16 on Windows.
type charT []uint16

func newCharT(s string) charT {
	u, err := windows.UTF16FromString(s)
	if err != nil {
		// embedded NUL; hand the host an empty string rather than a truncated one
		return charT{0}
	}
	return u
}

func newCharTBuffer(n int) charT {
	return make(charT, n)
}

func (c charT) String() string {
	return windows.UTF16ToString(c)
}
