package csvimport

import (
	"errors"
	"io"
	"testing"

	"github.com/yigit/studentadmin/internal/pkg/apperrors"
)

var required = []string{"department_id", "level_id", "first_name", "last_name", "email", "mat_no", "username"}

const header = "department_id,level_id,first_name,last_name,email,mat_no,username\n"

func TestNewDecoder_Extension(t *testing.T) {
	data := []byte(header + "1,1,Ada,Obi,ada@example.com,M001,ada\n")

	tests := []struct {
		name     string
		filename string
		target   error
	}{
		{name: "csv accepted", filename: "students.csv"},
		{name: "upper case extension", filename: "STUDENTS.CSV"},
		{name: "xlsx rejected", filename: "students.xlsx", target: apperrors.ErrInvalidFormat},
		{name: "no extension", filename: "students", target: apperrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(data, tt.filename, required)
			if tt.target == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestNewDecoder_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte("")},
		{name: "whitespace only", data: []byte("  \n\n")},
		{name: "invalid utf-8 late in file", data: append([]byte(header+"1,1,Ada,Obi,ada@example.com,M001,ada\n1,1,"), 0xff, '\n')},
		{name: "bare quote on last line", data: []byte(header + "1,1,Ada,Obi,ada@example.com,M001,ada\n1,1,B\"ad,x,y,z,w\n")},
		{name: "missing column", data: []byte("department_id,level_id,first_name,last_name,mat_no,username\n1,1,a,b,c,d\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(tt.data, "students.csv", required)
			if !errors.Is(err, apperrors.ErrDecode) {
				t.Errorf("err = %v, want ErrDecode", err)
			}
		})
	}
}

func TestDecoder_Next(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(
		"Department_ID, level_id ,first_name,last_name,email,mat_no,username,extra\n"+
			"1,2,Ada,Obi,ada@example.com,M001,ada,x\n"+
			"\n"+
			"3,1,\"Bola, Jr\",Ade,bola@example.com,M002,bola\n"+
			"3,1,Chi\n")...)

	d, err := NewDecoder(data, "students.csv", required)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if d.Total() != 3 {
		t.Errorf("Total = %d, want 3", d.Total())
	}

	first, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if v, _ := first.Get("department_id"); v != "1" {
		t.Errorf("department_id = %q, want 1", v)
	}
	if v, _ := first.Get("level_id"); v != "2" {
		t.Errorf("level_id = %q, want 2", v)
	}
	if first.Line != 2 {
		t.Errorf("Line = %d, want 2", first.Line)
	}

	second, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if v, _ := second.Get("first_name"); v != "Bola, Jr" {
		t.Errorf("first_name = %q, want %q", v, "Bola, Jr")
	}
	if second.Line != 4 {
		t.Errorf("Line = %d, want 4", second.Line)
	}

	short, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, ok := short.Get("email"); ok {
		t.Error("short row must not carry email")
	}
	if v, _ := short.Get("first_name"); v != "Chi" {
		t.Errorf("first_name = %q, want Chi", v)
	}

	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("second EOF read err = %v, want io.EOF", err)
	}
}

func TestDecoder_RowsSinglePass(t *testing.T) {
	data := []byte(header +
		"1,1,A,A,a@example.com,M1,a\n" +
		"1,1,B,B,b@example.com,M2,b\n")

	d, err := NewDecoder(data, "students.csv", required)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var got []string
	for row, err := range d.Rows() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		v, _ := row.Get("mat_no")
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != "M1" || got[1] != "M2" {
		t.Errorf("got %v, want [M1 M2]", got)
	}

	for range d.Rows() {
		t.Fatal("sequence must not restart")
	}
}

func TestDecoder_HeaderOnly(t *testing.T) {
	d, err := NewDecoder([]byte(header), "students.csv", required)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if d.Total() != 0 {
		t.Errorf("Total = %d, want 0", d.Total())
	}
	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}
