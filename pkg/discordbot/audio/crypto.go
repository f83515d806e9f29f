package audio

import (
	"golang.org/x/crypto/nacl/secretbox"
)

// SecretKey is Discord voice's 32-byte XSalsa20/Poly1305 key, delivered
// in SESSION_DESCRIPTION (spec §4.2).
type SecretKey [32]byte

// Seal builds the 24-byte nonce (the 12-byte RTP header followed by 12
// zero bytes, spec §4.3 step 5) and encrypts the Opus payload with
// secretbox, returning the ciphertext+MAC to append after the header.
func Seal(rtpHeader []byte, opusPayload []byte, key SecretKey) []byte {
	var nonce [24]byte
	copy(nonce[:12], rtpHeader)

	return secretbox.Seal(nil, opusPayload, &nonce, (*[32]byte)(&key))
}
