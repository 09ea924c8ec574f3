package record

import (
	"hash/crc32"
	"testing"
)

func TestCRC(t *testing.T) {
	var header = []byte{byte(KindSet), 8, 0, 0, 0, 2, 0, 0, 0}
	var payload = []byte("languagego")

	want := crc32.ChecksumIEEE(append(append([]byte{}, header...), payload...))

	t.Run("CalculateCRC computes expected checksum", func(t *testing.T) {
		got := CalculateCRC(append(append([]byte{}, header...), payload...))
		if got != want {
			t.Errorf("CalculateCRC() = %v, want %v", got, want)
		}
	})

	t.Run("ValidateCRC returns true for matching checksum", func(t *testing.T) {
		if !ValidateCRC(header, payload, want) {
			t.Errorf("ValidateCRC() returned false, expected true")
		}
	})

	t.Run("ValidateCRC returns false for mismatched checksum", func(t *testing.T) {
		badChecksum := want + 1
		if ValidateCRC(header, payload, badChecksum) {
			t.Errorf("ValidateCRC() returned true for wrong checksum")
		}
	})
}
