package net

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	body := EncodeFrame(1101, 77, FlagImmediate, []byte(`{"x":1}`))
	f, err := DecodeFrame(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.CmdID != 1101 {
		t.Errorf("CmdID = %d; want 1101", f.CmdID)
	}
	if f.ClientSeq != 77 {
		t.Errorf("ClientSeq = %d; want 77", f.ClientSeq)
	}
	if !f.Immediate() {
		t.Error("immediate flag lost")
	}
	if !bytes.Equal(f.Payload, []byte(`{"x":1}`)) {
		t.Errorf("payload = %q", f.Payload)
	}
}

func TestFrameEmptyPayload(t *testing.T) {
	f, err := DecodeFrame(EncodeFrame(9001, 0, 0, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(f.Payload) != 0 || f.Immediate() {
		t.Errorf("frame = %+v; want empty non-immediate", f)
	}
}

func TestFrameTooShort(t *testing.T) {
	if _, err := DecodeFrame([]byte{1, 2, 3}); err == nil {
		t.Error("short frame decoded")
	}
}

func TestCipherRoundTrip(t *testing.T) {
	a, err := NewCipher(0xdeadbeef)
	if err != nil {
		t.Fatalf("cipher a: %v", err)
	}
	b, err := NewCipher(0xdeadbeef)
	if err != nil {
		t.Fatalf("cipher b: %v", err)
	}

	plain := []byte("the quick brown fox")
	buf := make([]byte, len(plain))
	copy(buf, plain)

	a.EncryptOut(buf)
	if bytes.Equal(buf, plain) {
		t.Error("ciphertext equals plaintext")
	}
	b.DecryptIn(buf)
	if !bytes.Equal(buf, plain) {
		t.Errorf("round trip = %q; want %q", buf, plain)
	}
}

func TestCipherStreamsAreIndependent(t *testing.T) {
	c, err := NewCipher(1)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	// two messages through the same direction must keep decoding cleanly
	// against a peer advancing its matching stream
	peer, _ := NewCipher(1)
	for i := 0; i < 3; i++ {
		msg := []byte{byte(i), 0x55, 0xaa}
		c.EncryptOut(msg)
		peer.DecryptIn(msg)
		if msg[1] != 0x55 || msg[2] != 0xaa {
			t.Fatalf("message %d corrupted: %v", i, msg)
		}
	}
}
