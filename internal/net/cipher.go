package net

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// Cipher is the per-session key-stream cipher. Both sides derive the same
// ChaCha20 key material from the 32-bit seed sent in the plaintext init
// frame; separate stream state is kept for each direction because the two
// directions consume the key stream at different rates.
type Cipher struct {
	send *chacha20.Cipher
	recv *chacha20.Cipher
}

// NewCipher derives the key and nonce from seed with an LCG expansion and
// builds both direction streams.
func NewCipher(seed uint32) (*Cipher, error) {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	s := seed
	for i := 0; i < len(key); i += 4 {
		s = s*1664525 + 1013904223
		binary.LittleEndian.PutUint32(key[i:], s)
	}
	for i := 0; i < len(nonce); i += 4 {
		s = s*1664525 + 1013904223
		binary.LittleEndian.PutUint32(nonce[i:], s)
	}

	send, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, err
	}
	recv, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &Cipher{send: send, recv: recv}, nil
}

// EncryptOut encrypts an outbound frame body in place.
func (c *Cipher) EncryptOut(data []byte) {
	c.send.XORKeyStream(data, data)
}

// DecryptIn decrypts an inbound frame body in place.
func (c *Cipher) DecryptIn(data []byte) {
	c.recv.XORKeyStream(data, data)
}
