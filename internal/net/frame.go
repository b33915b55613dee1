package net

import (
	"encoding/binary"
	"errors"
)

// Frame layout, after the 2-byte little-endian body length prefix:
//
//	[2B cmd_id][4B client_seq][1B flags][payload]
//
// The body (everything after the length prefix) is what the session cipher
// covers. FlagImmediate asks the simulator to tick the world synchronously
// right after injecting the packet.
const (
	frameHeaderSize = 7
	maxFrameBody    = 64 * 1024

	FlagImmediate byte = 0x01
)

var errFrameTooShort = errors.New("net: frame shorter than header")

// Frame is one decoded client packet.
type Frame struct {
	CmdID     uint16
	ClientSeq uint32
	Flags     byte
	Payload   []byte
}

func (f *Frame) Immediate() bool {
	return f.Flags&FlagImmediate != 0
}

// DecodeFrame parses a decrypted frame body.
func DecodeFrame(body []byte) (*Frame, error) {
	if len(body) < frameHeaderSize {
		return nil, errFrameTooShort
	}
	return &Frame{
		CmdID:     binary.LittleEndian.Uint16(body[0:2]),
		ClientSeq: binary.LittleEndian.Uint32(body[2:6]),
		Flags:     body[6],
		Payload:   body[frameHeaderSize:],
	}, nil
}

// EncodeFrame builds a frame body ready for encryption, without the length
// prefix.
func EncodeFrame(cmdID uint16, clientSeq uint32, flags byte, payload []byte) []byte {
	body := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint16(body[0:2], cmdID)
	binary.LittleEndian.PutUint32(body[2:6], clientSeq)
	body[6] = flags
	copy(body[frameHeaderSize:], payload)
	return body
}
