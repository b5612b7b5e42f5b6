package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/domain/shared"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/domain/transport"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/infrastructure/logging"
)

// StdioTransport implements a transport over standard input/output using
// newline-delimited JSON-RPC messages. One gateway serves the streams for
// the lifetime of the process.
type StdioTransport struct {
	reader    *bufio.Reader
	writer    *bufio.Writer
	handler   transport.MessageHandler
	logger    *logging.Logger
	closeCh   chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// NewStdioTransport creates a transport over os.Stdin/os.Stdout.
func NewStdioTransport(logger *logging.Logger) *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout, logger)
}

// NewStdioTransportWithIO creates a stdio transport over arbitrary streams.
// Used by tests.
func NewStdioTransportWithIO(in io.Reader, out io.Writer, logger *logging.Logger) *StdioTransport {
	return &StdioTransport{
		reader:  bufio.NewReader(in),
		writer:  bufio.NewWriter(out),
		logger:  logger,
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start starts the transport
func (t *StdioTransport) Start(ctx context.Context, handler transport.MessageHandler) error {
	t.handler = handler

	go t.readMessages(ctx)

	return nil
}

// Send sends a message through the transport
func (t *StdioTransport) Send(ctx context.Context, message shared.JSONRPCMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "error marshalling message")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.writer.Write(data); err != nil {
		return errors.Wrap(err, "error writing message")
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "error writing newline")
	}
	if err := t.writer.Flush(); err != nil {
		return errors.Wrap(err, "error flushing writer")
	}

	return nil
}

// Close closes the transport
func (t *StdioTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closeCh)
	})
	return nil
}

// Done returns a channel that closes when the read loop exits (input EOF or
// transport close).
func (t *StdioTransport) Done() <-chan struct{} {
	return t.doneCh
}

// readMessages reads newline-delimited messages from the input stream until
// EOF or close. Unparseable lines are logged and skipped.
func (t *StdioTransport) readMessages(ctx context.Context) {
	defer close(t.doneCh)

	for {
		select {
		case <-t.closeCh:
			return
		case <-ctx.Done():
			return
		default:
			line, err := t.reader.ReadBytes('\n')
			if err != nil {
				if err != io.EOF {
					t.logger.Error("error reading from stdin", logging.Fields{"error": err.Error()})
				}
				return
			}

			message, err := ParseMessage(line)
			if err != nil {
				t.logger.Warn("invalid JSON-RPC message", logging.Fields{"error": err.Error()})
				continue
			}

			if t.handler != nil {
				if err := t.handler(ctx, message); err != nil {
					t.logger.Error("error handling message", logging.Fields{"error": err.Error()})
				}
			}
		}
	}
}
