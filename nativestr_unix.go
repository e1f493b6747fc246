//go:build linux || darwin || freebsd

package corehost

import "bytes"

// charT is a NUL-terminated char_t string; char_t is UTF-8 off Windows.
type charT []byte

func newCharT(s string) charT {
	b := make(charT, len(s)+1)
	copy(b, s)
	return b
}

func newCharTBuffer(n int) charT {
	return make(charT, n)
}

func (c charT) String() string {
	if i := bytes.IndexByte(c, 0); i >= 0 {
		return string(c[:i])
	}
	return string(c)
}
