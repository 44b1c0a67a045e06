package security

import "crypto/rand"

// RandomString generates a random string of length s composed of
// lowercase letters, uppercase letters, and digits, suitable for
// session and request identifiers.
func RandomString(s int) string {
	const chars = "abcdefghijklmnopqrstuvwxyz" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"0123456789"
	b := make([]byte, s)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i, c := range b {
		b[i] = chars[int(c)%len(chars)]
	}
	return string(b)
}
