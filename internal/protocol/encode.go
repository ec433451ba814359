// Package protocol implements the detection report body encoding and the
// framing used to put reports on a point-to-point channel.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"detectreport/internal/model"
)

const (
	// CmdDetectResult identifies a detection results report.
	CmdDetectResult uint8 = 0x02

	// RecordSize is the encoded stride of one detection. The fields occupy the
	// first 14 bytes (x, y, w, h, class_id at 2B each, score at 4B); the
	// remaining 4 bytes are reserved and always zero. This is not wire
	// compatible with receivers that expect packed 14-byte records.
	RecordSize = 18

	fieldsSize = 14
)

// ErrBodyLength is returned when a body is not a whole number of records.
var ErrBodyLength = errors.New("body length is not a multiple of the record size")

// EncodeDetections packs a batch into consecutive little-endian 18-byte records,
// keeping the input order. An empty batch yields an empty buffer.
func EncodeDetections(batch model.Batch) []byte {
	body := make([]byte, len(batch)*RecordSize)
	for i, det := range batch {
		putRecord(body[i*RecordSize:(i+1)*RecordSize], det)
	}
	return body
}

// DecodeDetections recovers records from a body using the fixed record stride.
func DecodeDetections(body []byte) (model.Batch, error) {
	if len(body)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBodyLength, len(body))
	}

	n := len(body) / RecordSize
	batch := make(model.Batch, n)
	for i := 0; i < n; i++ {
		batch[i] = readRecord(body[i*RecordSize : (i+1)*RecordSize])
	}
	return batch, nil
}

func putRecord(b []byte, det model.Detection) {
	binary.LittleEndian.PutUint16(b[0:2], uint16(det.X))
	binary.LittleEndian.PutUint16(b[2:4], uint16(det.Y))
	binary.LittleEndian.PutUint16(b[4:6], det.W)
	binary.LittleEndian.PutUint16(b[6:8], det.H)
	binary.LittleEndian.PutUint16(b[8:10], det.ClassID)
	binary.LittleEndian.PutUint32(b[10:14], math.Float32bits(det.Score))
	clear(b[fieldsSize:RecordSize])
}

func readRecord(b []byte) model.Detection {
	return model.Detection{
		X:       int16(binary.LittleEndian.Uint16(b[0:2])),
		Y:       int16(binary.LittleEndian.Uint16(b[2:4])),
		W:       binary.LittleEndian.Uint16(b[4:6]),
		H:       binary.LittleEndian.Uint16(b[6:8]),
		ClassID: binary.LittleEndian.Uint16(b[8:10]),
		Score:   math.Float32frombits(binary.LittleEndian.Uint32(b[10:14])),
	}
}
