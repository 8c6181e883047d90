package common

// WipeByteArray zeroes b in place. It is used for passwords read from the
// terminal once they have been sent.
func WipeByteArray(b []byte) {
	clear(b)
}
