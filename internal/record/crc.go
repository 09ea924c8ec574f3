package record

import "hash/crc32"

// CalculateCRC computes the CRC32 checksum of an encoded record body
// (everything after the crc field) using the IEEE polynomial.
func CalculateCRC(body []byte) uint32 {
	return crc32.ChecksumIEEE(body)
}

// ValidateCRC returns true if checksum matches the CRC32 of the header
// and payload. The header slice excludes the crc field itself.
func ValidateCRC(header, payload []byte, checksum uint32) bool {
	crc := crc32.ChecksumIEEE(header)
	crc = crc32.Update(crc, crc32.IEEETable, payload)
	return crc == checksum
}
