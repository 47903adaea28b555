package chat

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Sealed payloads are newline-delimited on the wire. A sealed payload is a
// compact JWE token and never contains a newline itself, so one line is
// exactly one payload.

// WriteFrame writes one sealed payload followed by the frame delimiter.
func WriteFrame(w io.Writer, payload []byte) error {
	if _, err := w.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads the next sealed payload. It returns io.EOF (possibly
// wrapped) once the peer half-closes the stream.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimSuffix(line, "\n")), nil
}
