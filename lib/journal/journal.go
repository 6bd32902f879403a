// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bureau-foundation/rerar/lib/clock"
)

// maxFrame bounds a single record; anything larger is corruption.
const maxFrame = 16 * 1024 * 1024

// Writer appends records to a journal file. It is safe for concurrent
// use.
type Writer struct {
	mu          sync.Mutex
	file        *os.File
	compression Compression
	clock       clock.Clock
}

// Create opens path for appending, creating it if needed. A nil clock
// means the wall clock.
func Create(path string, compression Compression, clk clock.Clock) (*Writer, error) {
	if clk == nil {
		clk = clock.Real()
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	return &Writer{file: file, compression: compression, clock: clk}, nil
}

// Append writes one record. A zero Time is stamped with the writer's
// clock. Each frame is written with a single write call.
func (w *Writer) Append(record Record) error {
	if record.Time.IsZero() {
		record.Time = w.clock.Now()
	}
	raw, err := encodeMode.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding journal record: %w", err)
	}
	payload, tag, err := compress(raw, w.compression)
	if err != nil {
		return fmt.Errorf("compressing journal record: %w", err)
	}

	frame := make([]byte, 0, 1+2*binary.MaxVarintLen64+len(payload))
	frame = append(frame, byte(tag))
	frame = binary.AppendUvarint(frame, uint64(len(raw)))
	frame = binary.AppendUvarint(frame, uint64(len(payload)))
	frame = append(frame, payload...)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return errors.New("journal is closed")
	}
	if _, err := w.file.Write(frame); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	syncErr := w.file.Sync()
	closeErr := w.file.Close()
	w.file = nil
	return errors.Join(syncErr, closeErr)
}

// Reader decodes records from a journal stream.
type Reader struct {
	reader *bufio.Reader
	torn   bool
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(r)}
}

// Torn reports whether the stream ended in the middle of a frame.
func (r *Reader) Torn() bool { return r.torn }

// Next returns the next record, or io.EOF at the end of the stream. A
// frame cut short by an interrupted writer also ends the stream; Torn
// reports it.
func (r *Reader) Next() (Record, error) {
	tagByte, err := r.reader.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, err
	}
	rawLength, err := binary.ReadUvarint(r.reader)
	if err != nil {
		return r.tornOr(err)
	}
	payloadLength, err := binary.ReadUvarint(r.reader)
	if err != nil {
		return r.tornOr(err)
	}
	if rawLength > maxFrame || payloadLength > maxFrame {
		return Record{}, fmt.Errorf("journal frame of %d bytes exceeds limit", max(rawLength, payloadLength))
	}
	payload := make([]byte, payloadLength)
	if _, err := io.ReadFull(r.reader, payload); err != nil {
		return r.tornOr(err)
	}

	raw, err := decompress(payload, Compression(tagByte), int(rawLength))
	if err != nil {
		return Record{}, err
	}
	var record Record
	if err := decodeMode.Unmarshal(raw, &record); err != nil {
		return Record{}, fmt.Errorf("decoding journal record: %w", err)
	}
	return record, nil
}

func (r *Reader) tornOr(err error) (Record, error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		r.torn = true
		return Record{}, io.EOF
	}
	return Record{}, err
}

// ReadFile returns every complete record in the journal at path.
func ReadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer file.Close()

	reader := NewReader(file)
	var records []Record
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("reading journal %s: %w", path, err)
		}
		records = append(records, record)
	}
}
