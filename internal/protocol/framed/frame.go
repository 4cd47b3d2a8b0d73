package framed

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// maxFrameSize limits the payload the orchestrator may send in a single frame.
const maxFrameSize = 16 * 1024 * 1024

// maxLengthDigits is the number of digits needed to express maxFrameSize.
const maxLengthDigits = 8

// frameReader reads length-prefixed frames in the form of "<length> <payload>". The length is the decimal byte
// count of the payload.
type frameReader struct {
	reader *bufio.Reader
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{
		reader: bufio.NewReader(r),
	}
}

// ReadFrame reads exactly one frame and returns its payload. A clean end of stream before the first byte of a frame
// is reported as io.EOF; anything else that ends early is an ErrInvalidFrame.
func (f *frameReader) ReadFrame() (string, error) {
	digits := make([]byte, 0, maxLengthDigits)
	for {
		b, err := f.reader.ReadByte()
		if err != nil {
			if err == io.EOF && len(digits) == 0 {
				return "", io.EOF
			}
			return "", &ErrInvalidFrame{Reason: fmt.Sprintf("failed to read frame length (%v)", err)}
		}
		if b == ' ' {
			break
		}
		if b < '0' || b > '9' {
			return "", &ErrInvalidFrame{Reason: fmt.Sprintf("unexpected character %q in frame length", b)}
		}
		if len(digits) == maxLengthDigits {
			return "", &ErrInvalidFrame{Reason: "frame length has too many digits"}
		}
		digits = append(digits, b)
	}
	if len(digits) == 0 {
		return "", &ErrInvalidFrame{Reason: "missing frame length"}
	}
	length, err := strconv.Atoi(string(digits))
	if err != nil {
		return "", &ErrInvalidFrame{Reason: fmt.Sprintf("invalid frame length %s (%v)", digits, err)}
	}
	if length > maxFrameSize {
		return "", &ErrInvalidFrame{Reason: fmt.Sprintf("frame of %d bytes exceeds the limit of %d bytes", length, maxFrameSize)}
	}
	data := make([]byte, length)
	n, err := io.ReadFull(f.reader, data)
	if err != nil {
		return "", &ErrInvalidFrame{Reason: fmt.Sprintf("frame truncated after %d of %d bytes (%v)", n, length, err)}
	}
	return string(data), nil
}

// frameWriter writes length-prefixed frames. Writes are serialized so concurrent callers never interleave frames.
type frameWriter struct {
	lock   sync.Mutex
	writer io.Writer
}

func newFrameWriter(w io.Writer) *frameWriter {
	return &frameWriter{
		writer: w,
	}
}

// WriteFrame writes the payload as a single frame.
func (f *frameWriter) WriteFrame(payload string) error {
	frame := strconv.Itoa(len(payload)) + " " + payload
	f.lock.Lock()
	defer f.lock.Unlock()
	if _, err := io.WriteString(f.writer, frame); err != nil {
		return fmt.Errorf("failed to write frame to orchestrator (%w)", err)
	}
	return nil
}
