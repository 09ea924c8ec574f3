package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Kind tags a LogRecord as either a write or a tombstone.
type Kind uint8

const (
	KindSet    Kind = 1
	KindRemove Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindSet:
		return "set"
	case KindRemove:
		return "remove"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	ErrCorruptRecord = errors.New("record checksum mismatch")
	ErrUnknownKind   = errors.New("unknown record kind")
)

// LogRecord is a single mutation stored in the datafile.
//
// A Set record carries the new value for Key; a Remove record is a
// tombstone and never carries a value.
type LogRecord struct {
	Kind  Kind
	Key   string
	Value string
}

// CRC (4) + HeaderCRC (4) + Kind (1) + KeySize (4) + ValueSize (4)
const HeaderSizeBytes = 17

// headerFieldsOffset is where the fields covered by the header checksum
// start.
const headerFieldsOffset = 8

func NewSet(key, value string) LogRecord {
	return LogRecord{Kind: KindSet, Key: key, Value: value}
}

func NewRemove(key string) LogRecord {
	return LogRecord{Kind: KindRemove, Key: key}
}

// EncodedSize returns the number of bytes Encode produces for r.
func (r *LogRecord) EncodedSize() int64 {
	return int64(HeaderSizeBytes + len(r.Key) + len(r.Value))
}

// Encode serializes a record into its on-disk layout:
//
//	<crc:uint32><header_crc:uint32><kind:uint8><key_size:uint32><value_size:uint32><key><value>
//
// All integers are little endian. header_crc covers kind and both sizes so
// a reader can trust the lengths before reading the payload. crc covers
// every byte after the crc field.
func Encode(r *LogRecord) ([]byte, error) {
	switch r.Kind {
	case KindSet:
	case KindRemove:
		if r.Value != "" {
			return nil, fmt.Errorf("remove record for %q carries a value", r.Key)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, r.Kind)
	}

	buf := bytes.NewBuffer(make([]byte, headerFieldsOffset, r.EncodedSize()))

	buf.WriteByte(byte(r.Kind))
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(r.Key))); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(r.Value))); err != nil {
		return nil, err
	}
	buf.WriteString(r.Key)
	buf.WriteString(r.Value)

	encoded := buf.Bytes()
	binary.LittleEndian.PutUint32(encoded[4:8], CalculateCRC(encoded[headerFieldsOffset:HeaderSizeBytes]))
	binary.LittleEndian.PutUint32(encoded[:4], CalculateCRC(encoded[4:]))

	return encoded, nil
}

// Decode reads exactly one record from data. Trailing bytes are an error,
// so callers can use it to check that a stored record spans the expected
// length.
func Decode(data []byte) (*LogRecord, error) {
	d := NewDecoder(bytes.NewReader(data))

	r, err := d.Next()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	if d.Offset() != int64(len(data)) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptRecord, int64(len(data))-d.Offset())
	}

	return r, nil
}

// decodeHeader splits a raw header into its fields.
func decodeHeader(header []byte) (crc, headerCRC uint32, kind Kind, keySize, valueSize uint32) {
	crc = binary.LittleEndian.Uint32(header[0:4])
	headerCRC = binary.LittleEndian.Uint32(header[4:8])
	kind = Kind(header[8])
	keySize = binary.LittleEndian.Uint32(header[9:13])
	valueSize = binary.LittleEndian.Uint32(header[13:17])
	return
}
