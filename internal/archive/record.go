// Package archive reads and writes the binary message-archive format: a flat
// sequence of fixed-size records, so the n-th record (or the last one) is a
// single seek away. Big-endian throughout; over-long names and bodies are
// truncated, short ones zero-padded.
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	nameFieldSize = 20
	msgFieldSize  = 128

	// RecordSize is the on-disk size of one record: four int64 fields plus
	// the fixed name and body fields.
	RecordSize = 4*8 + nameFieldSize + msgFieldSize
)

// ErrEmptyArchive is returned by ReadLast on a file with no records.
var ErrEmptyArchive = errors.New("archive is empty")

// Record is one archived message.
type Record struct {
	MessageID  int64
	SenderID   int64
	ChannelID  int64
	CreatedAt  time.Time
	SenderName string
	Msg        string
}

// Write appends one record to w.
func Write(w io.Writer, rec Record) error {
	buf := make([]byte, RecordSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(rec.MessageID))
	binary.BigEndian.PutUint64(buf[8:16], uint64(rec.SenderID))
	binary.BigEndian.PutUint64(buf[16:24], uint64(rec.ChannelID))
	binary.BigEndian.PutUint64(buf[24:32], uint64(rec.CreatedAt.Unix()))
	copyPadded(buf[32:32+nameFieldSize], rec.SenderName)
	copyPadded(buf[32+nameFieldSize:], rec.Msg)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Read reads one record from r. Returns io.EOF at a clean record boundary
// and io.ErrUnexpectedEOF on a torn record.
func Read(r io.Reader) (Record, error) {
	buf := make([]byte, RecordSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("read record: %w", err)
	}
	return decode(buf), nil
}

// ReadAll reads every record from r in file order.
func ReadAll(r io.Reader) ([]Record, error) {
	var out []Record
	for {
		rec, err := Read(r)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// ReadLast seeks to the final record and reads it without touching the rest
// of the file.
func ReadLast(r io.ReadSeeker) (Record, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return Record{}, fmt.Errorf("seek end: %w", err)
	}
	if size == 0 {
		return Record{}, ErrEmptyArchive
	}
	if size%RecordSize != 0 {
		return Record{}, fmt.Errorf("archive size %d is not a whole number of records", size)
	}
	if _, err := r.Seek(-RecordSize, io.SeekEnd); err != nil {
		return Record{}, fmt.Errorf("seek last record: %w", err)
	}
	return Read(r)
}

func decode(buf []byte) Record {
	return Record{
		MessageID:  int64(binary.BigEndian.Uint64(buf[0:8])),
		SenderID:   int64(binary.BigEndian.Uint64(buf[8:16])),
		ChannelID:  int64(binary.BigEndian.Uint64(buf[16:24])),
		CreatedAt:  time.Unix(int64(binary.BigEndian.Uint64(buf[24:32])), 0).UTC(),
		SenderName: trimPadding(buf[32 : 32+nameFieldSize]),
		Msg:        trimPadding(buf[32+nameFieldSize:]),
	}
}

func copyPadded(dst []byte, s string) {
	// dst arrives zeroed; copy truncates to len(dst).
	copy(dst, s)
}

func trimPadding(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
