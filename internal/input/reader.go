// Package input reads the text to be transformed from stdin, a plain
// text file, or a PDF. Files arrive as UTF-8; BOM-marked UTF-8 and
// UTF-16 variants are decoded transparently.
package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"

	"lowher/internal/logger"
	"lowher/internal/types"
)

// Read loads text from path. An empty path or "-" reads stdin. Paths
// ending in .pdf go through text extraction; everything else is read
// as a text file.
func Read(path string) (string, error) {
	if path == "" || path == "-" {
		return readStream(os.Stdin, "stdin")
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}
	return readTextFile(path)
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read input file", err, logger.String("path", path))
		return "", types.NewAppErrorWithDetails(types.ErrIO, "failed to read input file", path, err)
	}
	return decode(data, path)
}

func readStream(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		logger.Error("failed to read input stream", err, logger.String("source", name))
		return "", types.NewAppErrorWithDetails(types.ErrIO, "failed to read input stream", name, err)
	}
	return decode(data, name)
}

// decode normalizes raw bytes to UTF-8. BOM markers select the
// decoder; bare bytes must already be valid UTF-8.
func decode(data []byte, source string) (string, error) {
	switch {
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}):
		logger.Debug("detected UTF-8 with BOM", logger.String("source", source))
		data = data[3:]

	case len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xFE}):
		logger.Debug("detected UTF-16LE", logger.String("source", source))
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", types.NewAppErrorWithDetails(types.ErrInvalidInput, "failed to decode UTF-16LE input", source, err)
		}
		data = decoded

	case len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFE, 0xFF}):
		logger.Debug("detected UTF-16BE", logger.String("source", source))
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", types.NewAppErrorWithDetails(types.ErrInvalidInput, "failed to decode UTF-16BE input", source, err)
		}
		data = decoded
	}

	if !utf8.Valid(data) {
		logger.Error("input is not valid UTF-8", nil, logger.String("source", source))
		return "", types.NewAppErrorWithDetails(types.ErrInvalidInput, "input is not valid UTF-8", source, nil)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	logger.Info("extracting text from PDF", logger.String("path", path))

	f, reader, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed to open PDF", err, logger.String("path", path))
		return "", types.NewAppErrorWithDetails(types.ErrIO, "failed to open PDF", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	content, err := reader.GetPlainText()
	if err != nil {
		logger.Error("failed to extract PDF text", err, logger.String("path", path))
		return "", types.NewAppErrorWithDetails(types.ErrIO, "failed to extract PDF text", path, err)
	}
	if _, err := buf.ReadFrom(content); err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrIO, "failed to extract PDF text", path, err)
	}

	text := buf.String()
	logger.Debug("PDF text extracted",
		logger.Int("pages", reader.NumPage()),
		logger.Int("length", len(text)))
	if text == "" {
		return "", types.NewAppError(types.ErrInvalidInput,
			fmt.Sprintf("PDF contains no extractable text: %s", path), nil)
	}
	return text, nil
}
