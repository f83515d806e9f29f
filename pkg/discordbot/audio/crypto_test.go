package audio

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/nacl/secretbox"
)

func TestSealUsesHeaderAsNoncePrefix(t *testing.T) {
	var key SecretKey
	for i := range key {
		key[i] = byte(i)
	}

	header := make([]byte, 12)
	for i := range header {
		header[i] = byte(i + 1)
	}
	payload := []byte("opus payload bytes")

	sealed := Seal(header, payload, key)

	var nonce [24]byte
	copy(nonce[:12], header)

	opened, ok := secretbox.Open(nil, sealed, &nonce, (*[32]byte)(&key))
	if !ok {
		t.Fatal("expected secretbox.Open to succeed with the same nonce/key")
	}
	if !bytes.Equal(opened, payload) {
		t.Fatalf("round-tripped payload mismatch: got %q want %q", opened, payload)
	}
}

func TestSealDifferentHeadersProduceDifferentCiphertext(t *testing.T) {
	var key SecretKey
	payload := []byte("frame")

	h1 := make([]byte, 12)
	h2 := make([]byte, 12)
	h2[11] = 1

	s1 := Seal(h1, payload, key)
	s2 := Seal(h2, payload, key)

	if bytes.Equal(s1, s2) {
		t.Fatal("expected different RTP headers to produce different ciphertext via the nonce")
	}
}
