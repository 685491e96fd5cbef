package archive

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleRecord(id int64, msg string) Record {
	return Record{
		MessageID:  id,
		SenderID:   1,
		ChannelID:  10,
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		SenderName: "vijay",
		Msg:        msg,
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := sampleRecord(42, "hello")
	if err := Write(&buf, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != RecordSize {
		t.Fatalf("record length = %d, want %d", buf.Len(), RecordSize)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestWrite_TruncatesLongFields(t *testing.T) {
	var buf bytes.Buffer
	rec := sampleRecord(1, strings.Repeat("x", 500))
	rec.SenderName = strings.Repeat("n", 50)
	if err := Write(&buf, rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.SenderName) != nameFieldSize {
		t.Errorf("name length = %d, want %d", len(got.SenderName), nameFieldSize)
	}
	if len(got.Msg) != msgFieldSize {
		t.Errorf("msg length = %d, want %d", len(got.Msg), msgFieldSize)
	}
}

func TestReadAll_FileOrder(t *testing.T) {
	var buf bytes.Buffer
	for i := int64(1); i <= 3; i++ {
		if err := Write(&buf, sampleRecord(i, "msg")); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	records, err := ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	for i, rec := range records {
		if rec.MessageID != int64(i+1) {
			t.Errorf("record %d has id %d", i, rec.MessageID)
		}
	}
}

func TestReadLast(t *testing.T) {
	var buf bytes.Buffer
	for i := int64(1); i <= 3; i++ {
		if err := Write(&buf, sampleRecord(i, "msg")); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	last, err := ReadLast(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadLast: %v", err)
	}
	if last.MessageID != 3 {
		t.Errorf("last id = %d, want 3", last.MessageID)
	}
}

func TestReadLast_Empty(t *testing.T) {
	_, err := ReadLast(bytes.NewReader(nil))
	if !errors.Is(err, ErrEmptyArchive) {
		t.Fatalf("err = %v, want ErrEmptyArchive", err)
	}
}

func TestReadLast_TornFile(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRecord(1, "msg")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	torn := buf.Bytes()[:buf.Len()-5]
	if _, err := ReadLast(bytes.NewReader(torn)); err == nil {
		t.Fatal("expected error for a torn archive")
	}
}
