package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame flags.
const (
	FlagResponse uint8 = 1 << 7
	FlagOK       uint8 = 1 << 6
	FlagReport   uint8 = 1 << 5

	Version uint8 = 1
)

const (
	headerSize   = 4
	lengthSize   = 4
	checksumSize = 2

	// Overhead is the number of framing bytes around a body.
	Overhead = headerSize + lengthSize + 2 + checksumSize

	// DefaultBufferSize bounds a whole frame on the wire.
	DefaultBufferSize = 1024
)

var header = []byte{0xBB, 0xAC, 0xA9, 0xAE}

var (
	ErrBadHeader     = errors.New("bad frame header")
	ErrShortFrame    = errors.New("frame too short")
	ErrChecksum      = errors.New("frame checksum mismatch")
	ErrFrameTooLarge = errors.New("frame exceeds buffer size")
)

// Frame is a decoded protocol frame.
type Frame struct {
	Flags uint8
	Cmd   uint8
	Body  []byte
}

// IsReport reports whether the frame was sent unsolicited.
func (f Frame) IsReport() bool {
	return f.Flags&FlagReport != 0
}

// EncodeFrame wraps body as: header, data length, flags, cmd, body, crc16.
// The data length counts everything after the length field.
func EncodeFrame(flags, cmd uint8, body []byte) []byte {
	frame := make([]byte, 0, Overhead+len(body))
	frame = append(frame, header...)
	frame = binary.LittleEndian.AppendUint32(frame, uint32(2+len(body)+checksumSize))
	frame = append(frame, flags, cmd)
	frame = append(frame, body...)
	return binary.LittleEndian.AppendUint16(frame, crc16(frame))
}

// EncodeReportFrame frames an unsolicited report for cmd.
func EncodeReportFrame(cmd uint8, body []byte) []byte {
	return EncodeFrame(FlagResponse|FlagOK|FlagReport|Version, cmd, body)
}

// DecodeFrame parses and verifies a single complete frame.
func DecodeFrame(frame []byte) (Frame, error) {
	if len(frame) < Overhead {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(frame))
	}
	if !bytes.Equal(frame[:headerSize], header) {
		return Frame{}, ErrBadHeader
	}

	dataLen := int(binary.LittleEndian.Uint32(frame[headerSize : headerSize+lengthSize]))
	end := headerSize + lengthSize + dataLen
	if dataLen < 2+checksumSize || len(frame) < end {
		return Frame{}, fmt.Errorf("%w: want %d bytes, have %d", ErrShortFrame, end, len(frame))
	}

	want := binary.LittleEndian.Uint16(frame[end-checksumSize : end])
	if got := crc16(frame[:end-checksumSize]); got != want {
		return Frame{}, fmt.Errorf("%w: got 0x%04x, want 0x%04x", ErrChecksum, got, want)
	}

	pos := headerSize + lengthSize
	return Frame{
		Flags: frame[pos],
		Cmd:   frame[pos+1],
		Body:  frame[pos+2 : end-checksumSize],
	}, nil
}

// MaxRecords returns how many detection records fit into one frame of bufferSize bytes.
func MaxRecords(bufferSize int) int {
	if bufferSize <= Overhead {
		return 0
	}
	return (bufferSize - Overhead) / RecordSize
}
