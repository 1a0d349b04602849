package category

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/pjournal/internal/models"
)

func fields() []models.Field {
	return []models.Field{
		{Name: "Bench", Category: models.Ptr("chest")},
		{Name: "Row", Category: models.Ptr("back")},
		{Name: "Notes"},
		{Name: "Fly", Category: models.Ptr("chest")},
	}
}

func names(fs []models.Field) []string {
	out := []string{}
	for _, f := range fs {
		out = append(out, f.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		fields []models.Field
		sel    Selection
		want   []string
	}{
		{"all is identity", fields(), All, []string{"Bench", "Row", "Notes", "Fly"}},
		{"tag exact match", fields(), Tag("chest"), []string{"Bench", "Fly"}},
		{"tag excludes uncategorised", fields(), Tag("back"), []string{"Row"}},
		{"unknown tag", fields(), Tag("legs"), []string{}},
		{"unassigned", fields(), Unassigned, []string{"Notes"}},
		{"empty input", nil, Tag("chest"), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Filter(tt.fields, tt.sel))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter mismatch (-want +got):\n%s", diff)
			}
		})
	}

	in := fields()
	if got := Filter(in, All); &got[0] != &in[0] {
		t.Error("All should return the same slice")
	}
	if got := Indices(fields(), Tag("chest")); !cmp.Equal(got, []int{0, 3}) {
		t.Errorf("Indices = %v", got)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in   string
		want Selection
	}{
		{"", All},
		{"all", All},
		{"unassigned", Unassigned},
		{" chest ", Tag("chest")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseSelection(tt.in)
			if got != tt.want {
				t.Errorf("ParseSelection(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if ParseSelection(got.String()) != got {
				t.Errorf("String() round trip failed for %+v", got)
			}
		})
	}
}

func TestOfAndOptions(t *testing.T) {
	if Of(nil) != nil {
		t.Error("Of(nil) should be empty")
	}
	entry := &models.Entry{Categories: models.ParseCategories("chest,back,chest")}
	if got := Of(entry).String(); got != "chest,back,chest" {
		t.Errorf("Of() = %q", got)
	}

	var got []string
	for _, o := range Options(entry) {
		got = append(got, o.String())
	}
	if diff := cmp.Diff([]string{"all", "chest", "back", "unassigned"}, got); diff != "" {
		t.Errorf("Options mismatch (-want +got):\n%s", diff)
	}
}
