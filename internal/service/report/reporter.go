// Package report turns detection batches into protocol reports and sends them
// over a transport.
package report

import (
	"errors"
	"fmt"

	"detectreport/internal/model"
	"detectreport/internal/protocol"
)

// Transport delivers a command and its body over a point-to-point channel.
type Transport interface {
	Send(cmd uint8, body []byte) error
	Close() error
}

// ShouldReport is true only for a non-empty batch with reporting enabled.
// Empty frames never produce a message.
func ShouldReport(batch model.Batch, enabled bool) bool {
	return enabled && len(batch) > 0
}

// Reporter encodes batches and sends them as detection result reports.
type Reporter struct {
	transport Transport
}

// NewReporter creates a Reporter on top of transport.
func NewReporter(transport Transport) *Reporter {
	return &Reporter{transport: transport}
}

// Report encodes the batch and sends it with the detection results command.
func (r *Reporter) Report(batch model.Batch) error {
	body := protocol.EncodeDetections(batch)
	if err := r.transport.Send(protocol.CmdDetectResult, body); err != nil {
		return fmt.Errorf("failed to send detection report: %w", err)
	}
	return nil
}

// Close closes the underlying transport.
func (r *Reporter) Close() error {
	return r.transport.Close()
}

// BatchReporter is anything that accepts a reported batch.
type BatchReporter interface {
	Report(batch model.Batch) error
}

// MultiReporter fans a report out to several reporters. Every reporter is
// called even if an earlier one fails.
type MultiReporter []BatchReporter

// Report sends the batch to every reporter and joins the errors.
func (m MultiReporter) Report(batch model.Batch) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(batch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
