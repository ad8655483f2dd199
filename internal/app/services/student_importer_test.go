package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
	"github.com/yigit/studentadmin/internal/pkg/auth"
	"github.com/yigit/studentadmin/internal/pkg/csvimport"
	"github.com/yigit/studentadmin/internal/pkg/validation"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Welcome@123"

const header = "department_id,level_id,first_name,last_name,email,mat_no,username\n"

func newCredential(t *testing.T) *auth.PlaceholderCredential {
	t.Helper()
	c, err := auth.NewPlaceholderCredential(testPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPlaceholderCredential: %v", err)
	}
	return c
}

func isInitialPassword(hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(testPassword)) == nil
}

func newDecoder(t *testing.T, body string) *csvimport.Decoder {
	t.Helper()
	dec, err := csvimport.NewDecoder([]byte(header+body), "students.csv", ImportColumns)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	return dec
}

func newImporter(t *testing.T, store *memoryStore, opts ...ImporterOption) *StudentImporter {
	t.Helper()
	return NewStudentImporter(store, store, validation.New(), newCredential(t), opts...)
}

func TestImport_CountsCoverEveryRow(t *testing.T) {
	store := newMemoryStore()
	_ = store.Create(context.Background(), &models.Student{MatricNumber: "M001", Email: "old@uni.edu"})

	body := "1,1,Ada,Obi,ada@uni.edu,M001,ada\n" + // existing -> skipped
		"1,1,Bola,Ade,bola@uni.edu,M002,bola\n" + // inserted
		"x,1,Chi,Eze,chi@uni.edu,M003,chi\n" + // bad department id
		"1,1,Dayo,Ola,not-an-email,M004,dayo\n" + // bad email
		"2,3,Efe,Uko,efe@uni.edu,M005,efe\n" // inserted

	dec := newDecoder(t, body)
	summary, err := newImporter(t, store).Import(context.Background(), dec)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if summary.Inserted != 2 || summary.Skipped != 1 || summary.Failed != 2 {
		t.Errorf("got inserted=%d skipped=%d failed=%d", summary.Inserted, summary.Skipped, summary.Failed)
	}
	if summary.Total != dec.Total() || summary.Inserted+summary.Skipped+summary.Failed != summary.Total {
		t.Errorf("total = %d, decoded %d", summary.Total, dec.Total())
	}
	if got := summary.Failures[0].Reason; got != "department_id must be an integer" {
		t.Errorf("first failure reason = %q", got)
	}
	if got := summary.Failures[1].Reason; got != "email must be a valid email address" {
		t.Errorf("second failure reason = %q", got)
	}
}

func TestImport_ReuploadSkipsEverything(t *testing.T) {
	store := newMemoryStore()
	body := "1,1,Ada,Obi,ada@uni.edu,M001,ada\n" +
		"1,1,Bola,Ade,bola@uni.edu,M002,bola\n" +
		"1,2,Chi,Eze,chi@uni.edu,M003,chi\n"

	first, err := newImporter(t, store).Import(context.Background(), newDecoder(t, body))
	if err != nil {
		t.Fatalf("first Import: %v", err)
	}
	if first.Inserted != 3 || first.Skipped != 0 {
		t.Fatalf("first upload: %+v", first)
	}

	second, err := newImporter(t, store).Import(context.Background(), newDecoder(t, body))
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 3 || second.Failed != 0 {
		t.Errorf("second upload: %+v", second)
	}
	if len(store.students) != 3 {
		t.Errorf("store holds %d students, want 3", len(store.students))
	}
}

func TestImport_MissingEmailFailsOnlyThatRow(t *testing.T) {
	store := newMemoryStore()
	body := "1,1,Ada,Obi,ada@uni.edu,M001,ada\n" +
		"1,1,Bola,Ade,,M002,bola\n" +
		"1,1,Chi,Eze,chi@uni.edu,M003,chi\n"

	summary, err := newImporter(t, store).Import(context.Background(), newDecoder(t, body))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.Inserted != 2 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	f := summary.Failures[0]
	if f.Reason != "email is required" {
		t.Errorf("reason = %q, want %q", f.Reason, "email is required")
	}
	if f.Line != 3 {
		t.Errorf("line = %d, want 3", f.Line)
	}
	if f.Row["mat_no"] != "M002" || f.Row["first_name"] != "Bola" {
		t.Errorf("failure lost the original row: %v", f.Row)
	}
	if store.byMatric("M001") == nil || store.byMatric("M003") == nil {
		t.Error("neighbouring rows were not inserted")
	}
}

func TestImport_DuplicateWithinBatch(t *testing.T) {
	store := newMemoryStore()
	body := "1,1,Ada,Obi,ada@uni.edu,M001,ada\n" +
		"1,1,Ada,Obi,ada2@uni.edu,M001,ada2\n"

	summary, err := newImporter(t, store).Import(context.Background(), newDecoder(t, body))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.Inserted != 1 || summary.Skipped != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestImport_InsertConstraintFailures(t *testing.T) {
	store := newMemoryStore()
	store.createErr["M001"] = apperrors.ErrMatricNumberExists
	store.createErr["M002"] = apperrors.ErrUnknownDeptOrLevel
	store.createErr["M003"] = errors.New("connection reset")
	store.createErr["M004"] = apperrors.NewConflictError("student already exists")

	body := "1,1,Ada,Obi,ada@uni.edu,M001,ada\n" +
		"9,1,Bola,Ade,bola@uni.edu,M002,bola\n" +
		"1,1,Chi,Eze,chi@uni.edu,M003,chi\n" +
		"1,1,Dayo,Ola,dayo@uni.edu,M004,dayo\n"

	summary, err := newImporter(t, store).Import(context.Background(), newDecoder(t, body))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	want := []string{"matric number already exists", "department or level does not exist", "could not save record", "student already exists"}
	if len(summary.Failures) != len(want) {
		t.Fatalf("failures = %+v", summary.Failures)
	}
	for i, reason := range want {
		if summary.Failures[i].Reason != reason {
			t.Errorf("failure %d reason = %q, want %q", i, summary.Failures[i].Reason, reason)
		}
	}
}

func TestImport_BlankMatricSkipsDuplicateCheck(t *testing.T) {
	store := newMemoryStore()

	summary, err := newImporter(t, store).Import(context.Background(), newDecoder(t, "1,1,Ada,Obi,ada@uni.edu,,ada\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if store.existsCalls != 0 {
		t.Errorf("duplicate check called %d times", store.existsCalls)
	}
	if summary.Failed != 1 || summary.Failures[0].Reason != "mat_no is required" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestImport_LookupErrorFailsRow(t *testing.T) {
	store := newMemoryStore()
	store.lookupErr = errors.New("timeout")

	summary, err := newImporter(t, store).Import(context.Background(), newDecoder(t, "1,1,Ada,Obi,ada@uni.edu,M001,ada\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.Failed != 1 || summary.Inserted != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestImport_Cancellation(t *testing.T) {
	body := "1,1,Ada,Obi,ada@uni.edu,M001,ada\n1,1,Bola,Ade,bola@uni.edu,M002,bola\n"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newMemoryStore()
	summary, err := newImporter(t, store).Import(ctx, newDecoder(t, body))
	if err != nil {
		t.Fatalf("default importer must ignore cancellation: %v", err)
	}
	if summary.Inserted != 2 {
		t.Errorf("summary = %+v", summary)
	}

	store = newMemoryStore()
	summary, err = newImporter(t, store, WithStopOnCancel(true)).Import(ctx, newDecoder(t, body))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if summary.Total != 0 || len(store.students) != 0 {
		t.Errorf("cancelled import processed rows: %+v", summary)
	}
}

func TestImport_SharedCredential(t *testing.T) {
	store := newMemoryStore()
	body := "1,1,Ada,Obi,ada@uni.edu,M001,ada\n1,1,Bola,Ade,bola@uni.edu,M002,bola\n"

	if _, err := newImporter(t, store).Import(context.Background(), newDecoder(t, body)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	a, b := store.byMatric("M001"), store.byMatric("M002")
	if a.PasswordHash != b.PasswordHash {
		t.Error("rows of one batch should share the credential hash")
	}
	if !isInitialPassword(a.PasswordHash) {
		t.Error("imported students must receive the configured initial password")
	}
}
