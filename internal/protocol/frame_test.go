package protocol

import (
	"bytes"
	"errors"
	"testing"

	"detectreport/internal/model"
)

func TestCRC16_CheckValue(t *testing.T) {
	if got := crc16([]byte("123456789")); got != 0xBB3D {
		t.Errorf("Expected 0xBB3D, got 0x%04X", got)
	}
	if got := crc16(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got 0x%04X", got)
	}
}

func TestEncodeReportFrame_Layout(t *testing.T) {
	body := EncodeDetections(model.Batch{{X: 10, Y: 20, W: 30, H: 40, ClassID: 1, Score: 0.87}})
	frame := EncodeReportFrame(CmdDetectResult, body)

	if len(frame) != Overhead+len(body) {
		t.Fatalf("Expected %d bytes, got %d", Overhead+len(body), len(frame))
	}
	if !bytes.Equal(frame[:4], []byte{0xBB, 0xAC, 0xA9, 0xAE}) {
		t.Errorf("Unexpected header % x", frame[:4])
	}
	if frame[4] != byte(len(body)+4) || frame[5] != 0 || frame[6] != 0 || frame[7] != 0 {
		t.Errorf("Unexpected data length % x", frame[4:8])
	}
	if frame[9] != CmdDetectResult {
		t.Errorf("Expected cmd 0x02, got 0x%02x", frame[9])
	}
	if !bytes.Equal(frame[10:10+len(body)], body) {
		t.Error("Body not copied verbatim")
	}
}

func TestDecodeFrame_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"empty body", []byte{}},
		{"one record", EncodeDetections(model.Batch{{X: -5, Y: 3, W: 9, H: 9, ClassID: 2, Score: 0.5}})},
		{"arbitrary bytes", []byte{0xBB, 0xAC, 0x00, 0xFF}},
	}

	for _, tt := range tests {
		frame, err := DecodeFrame(EncodeReportFrame(CmdDetectResult, tt.body))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if frame.Cmd != CmdDetectResult {
			t.Errorf("%s: expected cmd 0x02, got 0x%02x", tt.name, frame.Cmd)
		}
		if !frame.IsReport() {
			t.Errorf("%s: expected report flag", tt.name)
		}
		if frame.Flags&0x0F != Version {
			t.Errorf("%s: expected version %d, got %d", tt.name, Version, frame.Flags&0x0F)
		}
		if !bytes.Equal(frame.Body, tt.body) {
			t.Errorf("%s: body mismatch: % x vs % x", tt.name, frame.Body, tt.body)
		}
	}
}

func TestDecodeFrame_Errors(t *testing.T) {
	valid := EncodeReportFrame(CmdDetectResult, EncodeDetections(model.Batch{{W: 1, H: 1}}))

	corrupted := append([]byte(nil), valid...)
	corrupted[12] ^= 0x01

	badHeader := append([]byte(nil), valid...)
	badHeader[0] = 0x00

	tests := []struct {
		name  string
		frame []byte
		want  error
	}{
		{"too short", valid[:5], ErrShortFrame},
		{"truncated", valid[:len(valid)-1], ErrShortFrame},
		{"bad header", badHeader, ErrBadHeader},
		{"corrupted body", corrupted, ErrChecksum},
	}

	for _, tt := range tests {
		if _, err := DecodeFrame(tt.frame); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestMaxRecords(t *testing.T) {
	tests := []struct {
		bufferSize int
		expected   int
	}{
		{0, 0},
		{Overhead, 0},
		{Overhead + RecordSize - 1, 0},
		{Overhead + RecordSize, 1},
		{DefaultBufferSize, (DefaultBufferSize - Overhead) / RecordSize},
	}

	for _, tt := range tests {
		if got := MaxRecords(tt.bufferSize); got != tt.expected {
			t.Errorf("MaxRecords(%d) = %d, expected %d", tt.bufferSize, got, tt.expected)
		}
	}
}
