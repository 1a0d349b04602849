package subjects

import (
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/pjournal/internal/cli/clitest"
	"github.com/julianstephens/pjournal/internal/errors"
)

func TestSubjectAddAndList(t *testing.T) {
	h := clitest.New(t)

	if err := (&SubjectAddCmd{Name: "Squat", Template: "weights"}).Run(h.Context); err != nil {
		t.Fatalf("add: %v", err)
	}
	out := h.Output()
	for _, want := range []string{"Created subject Squat", "1. Exercise", "1.1 NUMBER", "kg"} {
		if !strings.Contains(out, want) {
			t.Errorf("add output missing %q:\n%s", want, out)
		}
	}

	if err := (&SubjectAddCmd{Name: "Diary"}).Run(h.Context); err != nil {
		t.Fatalf("add: %v", err)
	}
	h.Output()

	if err := (&SubjectListCmd{}).Run(h.Context); err != nil {
		t.Fatalf("list: %v", err)
	}
	out = h.Output()
	if !strings.Contains(out, "Squat") || !strings.Contains(out, "Diary") {
		t.Errorf("list output = %q", out)
	}
	if strings.Contains(out, "ID:") {
		t.Errorf("list without --show-ids printed ids: %q", out)
	}
}

func TestSubjectAddRejectsUnknownTemplate(t *testing.T) {
	h := clitest.New(t)
	if err := (&SubjectAddCmd{Name: "X", Template: "cardio"}).Run(h.Context); err == nil {
		t.Fatal("expected error for unknown template kind")
	}
}

func TestSubjectAddDuplicateName(t *testing.T) {
	h := clitest.New(t)
	if err := (&SubjectAddCmd{Name: "Bench"}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	err := (&SubjectAddCmd{Name: "bench"}).Run(h.Context)
	if !errors.Is(err, errors.KindConflict) {
		t.Fatalf("duplicate add error = %v, want conflict", err)
	}
}

func TestSubjectListEmpty(t *testing.T) {
	h := clitest.New(t)
	if err := (&SubjectListCmd{}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	if out := h.Output(); !strings.Contains(out, "No subjects found") {
		t.Errorf("output = %q", out)
	}
}

func TestSubjectRenameAndShow(t *testing.T) {
	h := clitest.New(t)
	if err := (&SubjectAddCmd{Name: "Deadlift", Template: "weight training"}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	if err := (&SubjectRenameCmd{Subject: "Deadlift", Name: "Sumo Deadlift"}).Run(h.Context); err != nil {
		t.Fatalf("rename: %v", err)
	}
	h.Output()

	if err := (&SubjectShowCmd{Subject: "sumo deadlift"}).Run(h.Context); err != nil {
		t.Fatalf("show: %v", err)
	}
	if out := h.Output(); !strings.HasPrefix(out, "Sumo Deadlift (ID: ") {
		t.Errorf("show output = %q", out)
	}

	if err := (&SubjectShowCmd{Subject: "Deadlift"}).Run(h.Context); !errors.Is(err, errors.KindNotFound) {
		t.Errorf("show old name error = %v, want not found", err)
	}
}

func TestSubjectDelete(t *testing.T) {
	tests := []struct {
		name    string
		yes     bool
		answer  string
		deleted bool
	}{
		{name: "confirmed", answer: "y", deleted: true},
		{name: "declined", answer: "n", deleted: false},
		{name: "empty answer", answer: "", deleted: false},
		{name: "skip prompt", yes: true, deleted: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := clitest.New(t)
			if err := (&SubjectAddCmd{Name: "Row"}).Run(h.Context); err != nil {
				t.Fatal(err)
			}
			h.Answer(tt.answer)
			if err := (&SubjectDeleteCmd{Subject: "Row", Yes: tt.yes}).Run(h.Context); err != nil {
				t.Fatalf("delete: %v", err)
			}
			subjects, err := h.Journal.Subjects(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if got := len(subjects) == 0; got != tt.deleted {
				t.Errorf("deleted = %v, want %v (output %q)", got, tt.deleted, h.Output())
			}
		})
	}
}
