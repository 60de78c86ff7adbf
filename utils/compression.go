package utils

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// CompressData compresses a payload with brotli before it goes to Redis
func CompressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to compress data: %v", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize compression: %v", err)
	}

	return buf.Bytes(), nil
}

// DecompressData reverses CompressData
func DecompressData(data []byte) ([]byte, error) {
	reader := brotli.NewReader(bytes.NewReader(data))

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %v", err)
	}

	return out, nil
}
