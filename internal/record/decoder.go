package record

import (
	"bufio"
	"fmt"
	"io"
)

// MaxPayloadBytes bounds key+value of a single record. Larger sizes in a
// header can only come from corruption.
const MaxPayloadBytes = 1 << 30

// countingReader counts bytes handed out to the decoder so the decoder can
// report record boundaries.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Decoder reads consecutive records from a stream and tracks how many
// bytes it has consumed, which is the offset of the next record.
type Decoder struct {
	cr     *countingReader
	header [HeaderSizeBytes]byte
}

func NewDecoder(r io.Reader) *Decoder {
	if _, ok := r.(io.ByteReader); !ok {
		r = bufio.NewReader(r)
	}
	return &Decoder{cr: &countingReader{r: r}}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.cr.n
}

// Next decodes the next record.
//
// It returns io.EOF when the stream ends cleanly on a record boundary and
// io.ErrUnexpectedEOF when the stream ends inside a record whose header,
// if complete, is intact. A damaged header is reported as ErrCorruptRecord
// before any of its lengths are used.
func (d *Decoder) Next() (*LogRecord, error) {
	start := d.cr.n

	if _, err := io.ReadFull(d.cr, d.header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}

	crc, headerCRC, kind, keySize, valueSize := decodeHeader(d.header[:])

	if CalculateCRC(d.header[headerFieldsOffset:]) != headerCRC {
		return nil, fmt.Errorf("%w: header at offset %d", ErrCorruptRecord, start)
	}

	if uint64(keySize)+uint64(valueSize) > MaxPayloadBytes {
		return nil, fmt.Errorf("%w: payload of %d bytes at offset %d", ErrCorruptRecord, uint64(keySize)+uint64(valueSize), start)
	}

	switch kind {
	case KindSet:
	case KindRemove:
		if valueSize != 0 {
			return nil, fmt.Errorf("%w: tombstone with value at offset %d", ErrCorruptRecord, start)
		}
	default:
		return nil, fmt.Errorf("%w: %d at offset %d", ErrUnknownKind, kind, start)
	}

	payload := make([]byte, keySize+valueSize)
	if _, err := io.ReadFull(d.cr, payload); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	if !ValidateCRC(d.header[4:], payload, crc) {
		return nil, fmt.Errorf("%w at offset %d", ErrCorruptRecord, start)
	}

	return &LogRecord{
		Kind:  kind,
		Key:   string(payload[:keySize]),
		Value: string(payload[keySize:]),
	}, nil
}
