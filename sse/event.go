// Package sse implements the server-push protocol engine: event framing,
// idle heartbeats, and disconnect-triggered shutdown for long-lived
// event-stream connections.
package sse

import (
	"io"
	"strconv"
	"strings"
)

// Event is a single outbound push-protocol unit. Events are immutable once
// constructed by the producer.
type Event struct {
	// Data is the payload text. Multi-line payloads are split across one
	// data: line per line on the wire.
	Data string
	// Type is the optional event-type tag (the event: field).
	Type string
	// ID is the optional event id used by clients for resumption.
	ID string
	// Retry, when positive, hints the client reconnect delay in
	// milliseconds.
	Retry int
}

// WriteTo frames the event in the line-oriented wire format: optional
// event:, id: and retry: lines, one data: line per payload line, and the
// blank-line terminator.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	if e.Type != "" {
		sb.WriteString("event: ")
		sb.WriteString(e.Type)
		sb.WriteByte('\n')
	}
	if e.ID != "" {
		sb.WriteString("id: ")
		sb.WriteString(e.ID)
		sb.WriteByte('\n')
	}
	if e.Retry > 0 {
		sb.WriteString("retry: ")
		sb.WriteString(strconv.Itoa(e.Retry))
		sb.WriteByte('\n')
	}
	for _, line := range strings.Split(e.Data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// writeComment emits a comment line. Comments begin with ':' and carry no
// payload; the engine uses them as idle heartbeats.
func writeComment(w io.Writer, text string) error {
	var sb strings.Builder
	sb.WriteByte(':')
	if text != "" {
		sb.WriteByte(' ')
		sb.WriteString(text)
	}
	sb.WriteString("\n\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
