package report

import (
	"fmt"
	"io"
	"net"
	"sync"

	"detectreport/internal/protocol"

	"go.bug.st/serial"
)

// OpenSerial opens a serial port for writing. It's a variable so tests can
// replace the hardware.
var OpenSerial = func(portName string, mode *serial.Mode) (io.WriteCloser, error) {
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// frameReport builds the wire frame and enforces the buffer limit.
func frameReport(cmd uint8, body []byte, bufferSize int) ([]byte, error) {
	frame := protocol.EncodeReportFrame(cmd, body)
	if bufferSize > 0 && len(frame) > bufferSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", protocol.ErrFrameTooLarge, len(frame), bufferSize)
	}
	return frame, nil
}

// StreamTransport writes framed reports to a byte stream such as a serial port.
type StreamTransport struct {
	w          io.WriteCloser
	bufferSize int
	mu         sync.Mutex
}

// NewStreamTransport wraps w. A bufferSize of 0 disables the frame size limit.
func NewStreamTransport(w io.WriteCloser, bufferSize int) *StreamTransport {
	return &StreamTransport{w: w, bufferSize: bufferSize}
}

// NewSerialTransport opens portName at baudRate, 8N1.
func NewSerialTransport(portName string, baudRate, bufferSize int) (*StreamTransport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := OpenSerial(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	return NewStreamTransport(port, bufferSize), nil
}

// Send writes one frame. Partial writes are reported as errors.
func (t *StreamTransport) Send(cmd uint8, body []byte) error {
	frame, err := frameReport(cmd, body, t.bufferSize)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.w.Write(frame)
	if err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(frame))
	}
	return nil
}

// Close closes the underlying stream.
func (t *StreamTransport) Close() error {
	return t.w.Close()
}

// UDPTransport sends each framed report as a single datagram.
type UDPTransport struct {
	conn       net.Conn
	bufferSize int
}

// NewUDPTransport dials address ("host:port").
func NewUDPTransport(address string, bufferSize int) (*UDPTransport, error) {
	conn, err := net.Dial("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to dial udp %s: %w", address, err)
	}
	return &UDPTransport{conn: conn, bufferSize: bufferSize}, nil
}

// Send writes one datagram.
func (t *UDPTransport) Send(cmd uint8, body []byte) error {
	frame, err := frameReport(cmd, body, t.bufferSize)
	if err != nil {
		return err
	}
	if _, err := t.conn.Write(frame); err != nil {
		return fmt.Errorf("failed to send datagram: %w", err)
	}
	return nil
}

// Close closes the socket.
func (t *UDPTransport) Close() error {
	return t.conn.Close()
}
