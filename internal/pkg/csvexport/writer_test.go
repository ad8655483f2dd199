package csvexport

import (
	"bytes"
	"testing"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	records := [][]string{
		{"MatricNumber", "Fullname"},
		{"M002", "Bola \"BJ\" Ade"},
		{"M001", ""},
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := "\"MatricNumber\",\"Fullname\"\n" +
		"\"M002\",\"Bola \"\"BJ\"\" Ade\"\n" +
		"\"M001\",\"\"\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
