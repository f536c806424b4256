package type1

// decrypt reverses the Type 1 font format's eexec/charstring obfuscation
// cipher (Adobe Type 1 Font Format section 7.3's "eexec encryption"): a
// 16-bit running cipher seeded with r, discarding the first skip decrypted
// bytes (the "random" lenIV padding that defeats known-plaintext attacks
// on the first few bytes). The same algorithm, with different r/skip,
// decrypts both the eexec-protected private dictionary (r=55665, skip=4)
// and each individual charstring (r=4330, skip=lenIV, default 4).
func decrypt(cipher []byte, r uint16, skip int) []byte {
	const c1, c2 = 52845, 22719
	plain := make([]byte, len(cipher))
	for i, c := range cipher {
		p := c ^ byte(r>>8)
		r = (uint16(c)+r)*c1 + c2
		plain[i] = p
	}
	if skip > len(plain) {
		skip = len(plain)
	}
	return plain[skip:]
}
