package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestEncodeDecodeRecord(t *testing.T) {
	tests := []struct {
		name   string
		record LogRecord
	}{
		{"set", NewSet("language", "go")},
		{"set with empty value", NewSet("language", "")},
		{"remove", NewRemove("language")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(&tt.record)
			if err != nil {
				t.Fatalf("unexpected encode error: %v", err)
			}

			if int64(len(encoded)) != tt.record.EncodedSize() {
				t.Fatalf("EncodedSize() = %d, encoded %d bytes", tt.record.EncodedSize(), len(encoded))
			}

			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}

			if *decoded != tt.record {
				t.Errorf("decoded %+v, want %+v", *decoded, tt.record)
			}
		})
	}
}

func TestEncodeRejectsInvalidRecords(t *testing.T) {
	if _, err := Encode(&LogRecord{Kind: KindRemove, Key: "a", Value: "b"}); err == nil {
		t.Error("expected error for tombstone with value")
	}

	if _, err := Encode(&LogRecord{Kind: 9, Key: "a"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestDecodeErrorsOnTruncatedData(t *testing.T) {
	r := NewSet("abc", "xy")
	encoded, _ := Encode(&r)

	for i := 0; i < len(encoded); i++ {
		_, err := Decode(encoded[:i])
		if err == nil {
			t.Fatalf("expected error when decoding truncated data of length %d, got nil", i)
		}
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	r := NewSet("abc", "xy")
	encoded, _ := Encode(&r)

	_, err := Decode(append(encoded, 0))
	if !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
}

func TestDecodeDetectsCorruption(t *testing.T) {
	r := NewSet("abc", "xy")
	encoded, _ := Encode(&r)

	// flip a bit in the value
	encoded[len(encoded)-1] ^= 0x01

	_, err := Decode(encoded)
	if !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
}

func TestEncodedByteLayout(t *testing.T) {
	r := NewSet("a", "b")

	encoded, err := Encode(&r)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// Expected bytes structure:
	// uint32 CRC
	// uint32 HeaderCRC
	// uint8 Kind
	// uint32 KeySize
	// uint32 ValueSize
	// []byte Key
	// []byte Value
	if got := binary.LittleEndian.Uint32(encoded[0:4]); got != CalculateCRC(encoded[4:]) {
		t.Fatalf("CRC mismatch: got %v want %v", got, CalculateCRC(encoded[4:]))
	}
	if got := binary.LittleEndian.Uint32(encoded[4:8]); got != CalculateCRC(encoded[8:17]) {
		t.Fatalf("HeaderCRC mismatch: got %v want %v", got, CalculateCRC(encoded[8:17]))
	}
	if Kind(encoded[8]) != KindSet {
		t.Fatalf("Kind mismatch: got %v want %v", Kind(encoded[8]), KindSet)
	}
	if got := binary.LittleEndian.Uint32(encoded[9:13]); got != 1 {
		t.Fatalf("KeySize mismatch: got %v want 1", got)
	}
	if got := binary.LittleEndian.Uint32(encoded[13:17]); got != 1 {
		t.Fatalf("ValueSize mismatch: got %v want 1", got)
	}
	if encoded[17] != 'a' {
		t.Fatalf("expected key byte 'a', got %v", encoded[17])
	}
	if encoded[18] != 'b' {
		t.Fatalf("expected value byte 'b', got %v", encoded[18])
	}
}

func TestDecoderRejectsCorruptSizeMidStream(t *testing.T) {
	records := []LogRecord{
		NewSet("a", "1"),
		NewSet("b", "2"),
		NewSet("c", "3"),
	}

	var stream []byte
	var second int
	for i := range records {
		if i == 1 {
			second = len(stream)
		}
		encoded, err := Encode(&records[i])
		if err != nil {
			t.Fatal(err)
		}
		stream = append(stream, encoded...)
	}

	// a key size that would run the payload read past the end of the stream
	binary.LittleEndian.PutUint32(stream[second+9:second+13], 1000)

	d := NewDecoder(bytes.NewReader(stream))
	if _, err := d.Next(); err != nil {
		t.Fatal(err)
	}

	_, err := d.Next()
	if !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
	if d.Offset() != int64(second+HeaderSizeBytes) {
		t.Fatalf("decoder read past the header: offset %d", d.Offset())
	}
}

func TestDecoderReportsOffsets(t *testing.T) {
	records := []LogRecord{
		NewSet("a", "1"),
		NewSet("bb", "22"),
		NewRemove("a"),
	}

	var stream bytes.Buffer
	var wantOffsets []int64
	for i := range records {
		wantOffsets = append(wantOffsets, int64(stream.Len()))
		encoded, err := Encode(&records[i])
		if err != nil {
			t.Fatal(err)
		}
		stream.Write(encoded)
	}

	d := NewDecoder(&stream)
	for i := range records {
		if d.Offset() != wantOffsets[i] {
			t.Fatalf("record %d: offset %d, want %d", i, d.Offset(), wantOffsets[i])
		}

		got, err := d.Next()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if *got != records[i] {
			t.Fatalf("record %d: got %+v want %+v", i, *got, records[i])
		}
	}

	if _, err := d.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestDecoderTornTail(t *testing.T) {
	first := NewSet("a", "1")
	second := NewSet("b", "2")

	enc1, _ := Encode(&first)
	enc2, _ := Encode(&second)

	stream := append(append([]byte{}, enc1...), enc2[:len(enc2)-1]...)

	d := NewDecoder(bytes.NewReader(stream))
	if _, err := d.Next(); err != nil {
		t.Fatal(err)
	}

	boundary := d.Offset()
	if boundary != int64(len(enc1)) {
		t.Fatalf("boundary %d, want %d", boundary, len(enc1))
	}

	if _, err := d.Next(); err != io.ErrUnexpectedEOF {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}
