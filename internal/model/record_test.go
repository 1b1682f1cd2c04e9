package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New(42)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if r.ID != 42 {
		t.Errorf("ID = %d, want 42", r.ID)
	}
	if !r.Languages.IsUnknown() {
		t.Errorf("Languages state = %v, want unknown", r.Languages.State())
	}
	if !r.Fork.IsUnknown() {
		t.Errorf("Fork is not unknown")
	}
	if terms, ok := r.Topics[DefaultOntology]; !ok || len(terms) != 0 {
		t.Errorf("Topics = %v, want {%q: []}", r.Topics, DefaultOntology)
	}
	if !r.Times.Created.IsUnknown() || !r.Times.Updated.IsUnknown() ||
		!r.Times.Pushed.IsUnknown() || !r.Times.Refreshed.IsUnknown() {
		t.Errorf("Times = %+v, want all sub-fields unknown", r.Times)
	}
	if !r.Readme.IsUnknown() || !r.Description.IsUnknown() {
		t.Errorf("text fields should start unknown")
	}
}

func TestNew_InvalidID(t *testing.T) {
	for _, id := range []int64{0, -1, -99} {
		if _, err := New(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("New(%d) error = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestNew_DeletedDoesNotDeriveVisible(t *testing.T) {
	// The is_deleted => !is_visible invariant is documented, not enforced:
	// the builder leaves is_visible untouched so enrichment passes record
	// exactly what they learned.
	r, err := New(42, WithDeleted(true))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if deleted, _ := r.IsDeleted.Get(); !deleted {
		t.Errorf("IsDeleted not set")
	}
	if !r.IsVisible.IsUnknown() {
		t.Errorf("IsVisible = %v, want unknown", r.IsVisible.State())
	}
}

func TestRecord_Path(t *testing.T) {
	t.Run("both components known", func(t *testing.T) {
		r, _ := New(42, WithOwner("octo"), WithName("cat"))
		path, err := r.Path()
		if err != nil {
			t.Fatalf("Path() error = %v", err)
		}
		if path != "octo/cat" {
			t.Errorf("Path() = %q, want %q", path, "octo/cat")
		}
	})

	t.Run("owner unset", func(t *testing.T) {
		r, _ := New(42, WithName("cat"))
		if _, err := r.Path(); !errors.Is(err, ErrMissingField) {
			t.Errorf("Path() error = %v, want ErrMissingField", err)
		}
	})

	t.Run("name unset", func(t *testing.T) {
		r, _ := New(42, WithOwner("octo"))
		if _, err := r.Path(); !errors.Is(err, ErrMissingField) {
			t.Errorf("Path() error = %v, want ErrMissingField", err)
		}
	})
}

func TestRecord_Summary(t *testing.T) {
	r, _ := New(42, WithOwner("octo"), WithName("cat"))
	got, err := r.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if got != "octo/cat (#42)" {
		t.Errorf("Summary() = %q, want %q", got, "octo/cat (#42)")
	}
}

func TestRecord_Summary_ReplacesInvalidUTF8(t *testing.T) {
	r, _ := New(7, WithOwner("octo"), WithName("c\xfft"))
	got, err := r.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	want := "octo/c?t (#7)"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestRecord_LanguageNames(t *testing.T) {
	t.Run("unknown yields empty list", func(t *testing.T) {
		r, _ := New(42)
		names, state := r.LanguageNames()
		if state != StateUnknown {
			t.Errorf("state = %v, want unknown", state)
		}
		if len(names) != 0 {
			t.Errorf("names = %v, want empty", names)
		}
	})

	t.Run("absent state passes through", func(t *testing.T) {
		r, _ := New(42)
		r.Languages = Absent[[]Language]()
		_, state := r.LanguageNames()
		if state != StateAbsent {
			t.Errorf("state = %v, want absent", state)
		}
	})

	t.Run("known preserves order", func(t *testing.T) {
		r, _ := New(42, WithLanguages(Languages("Python", "C", "Fortran")))
		names, state := r.LanguageNames()
		if state != StateKnown {
			t.Fatalf("state = %v, want known", state)
		}
		want := []string{"Python", "C", "Fortran"}
		if len(names) != len(want) {
			t.Fatalf("names = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
			}
		}
	})
}

func TestFork_States(t *testing.T) {
	parent := int64(100)
	root := int64(50)

	tests := []struct {
		name      string
		fork      Fork
		isUnknown bool
		isNotFork bool
		isFork    bool
	}{
		{"unknown", UnknownFork(), true, false, false},
		{"not a fork", NotAFork(), false, true, false},
		{"fork with both ids", NewFork(&parent, &root), false, false, true},
		{"fork with no detail", NewFork(nil, nil), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fork.IsUnknown(); got != tt.isUnknown {
				t.Errorf("IsUnknown() = %v, want %v", got, tt.isUnknown)
			}
			if got := tt.fork.IsNotFork(); got != tt.isNotFork {
				t.Errorf("IsNotFork() = %v, want %v", got, tt.isNotFork)
			}
			if got := tt.fork.IsFork(); got != tt.isFork {
				t.Errorf("IsFork() = %v, want %v", got, tt.isFork)
			}
		})
	}
}

func TestFork_PartialDetail(t *testing.T) {
	parent := int64(100)
	f := NewFork(&parent, nil)

	if p, ok := f.Parent(); !ok || p != 100 {
		t.Errorf("Parent() = %d, %v; want 100, true", p, ok)
	}
	if _, ok := f.Root(); ok {
		t.Errorf("Root() known, want unknown")
	}
}

func TestField_SentinelEncoding(t *testing.T) {
	tests := []struct {
		name string
		in   json.Marshaler
		want string
	}{
		{"unknown text", Field[string]{}, "null"},
		{"absent text", Absent[string](), "-1"},
		{"invalid text", Invalid[string](), "-2"},
		{"known empty text", Known(""), `""`},
		{"unknown sequence", Field[[]string]{}, "[]"},
		{"absent sequence", Absent[[]string](), "-1"},
		{"known count", Known(int64(12)), "12"},
		{"unknown count", Field[int64]{}, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.in.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestRecord_DocumentRoundTrip(t *testing.T) {
	parent := int64(16335)
	r, err := New(7182480,
		WithOwner("octo"),
		WithName("cat"),
		WithDescription(""),
		WithLanguages(Languages("Python", "Java")),
		WithContentType(ContentType{Content: ContentCode, Basis: BasisFileNames}),
		WithFork(NewFork(&parent, nil)),
		WithNumCommits(1234),
		WithDeleted(false),
		WithTopics(NewTopics("lcsh", "sh85133180", "sh85107318")),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r.Licenses = Absent[[]string]()
	r.Readme = Invalid[string]()
	r.Times.Created = Known(Stamp(1342747153))

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.ID != r.ID {
		t.Errorf("ID = %d, want %d", got.ID, r.ID)
	}
	if desc, ok := got.Description.Get(); !ok || desc != "" {
		// Empty string is a legitimate known value, distinct from unknown.
		t.Errorf("Description = %v/%v, want known empty string", desc, got.Description.State())
	}
	if !got.Readme.IsInvalid() {
		t.Errorf("Readme state = %v, want invalid", got.Readme.State())
	}
	if !got.Licenses.IsAbsent() {
		t.Errorf("Licenses state = %v, want absent", got.Licenses.State())
	}
	names, state := got.LanguageNames()
	if state != StateKnown || len(names) != 2 || names[0] != "Python" || names[1] != "Java" {
		t.Errorf("LanguageNames() = %v/%v, want [Python Java]/known", names, state)
	}
	if p, ok := got.Fork.Parent(); !ok || p != parent {
		t.Errorf("Fork.Parent() = %d, %v; want %d, true", p, ok, parent)
	}
	if _, ok := got.Fork.Root(); ok {
		t.Errorf("Fork.Root() should stay unknown through round-trip")
	}
	if terms := got.Topics["lcsh"]; len(terms) != 2 || terms[0] != "sh85133180" {
		t.Errorf("Topics = %v", got.Topics)
	}
	if created, ok := got.Times.Created.Get(); !ok || created != Stamp(1342747153) {
		t.Errorf("Times.Created = %v, want 1342747153", created)
	}
	if !got.Times.Pushed.IsUnknown() {
		t.Errorf("Times.Pushed state = %v, want unknown", got.Times.Pushed.State())
	}
	if deleted, ok := got.IsDeleted.Get(); !ok || deleted {
		t.Errorf("IsDeleted = %v/%v, want known false", deleted, got.IsDeleted.State())
	}
}

func TestRecord_UnmarshalDefaultsTopics(t *testing.T) {
	var r Record
	doc := `{"_id": 9, "owner": "octo", "name": "cat", "fork": false}`
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if terms, ok := r.Topics[DefaultOntology]; !ok || len(terms) != 0 {
		t.Errorf("Topics = %v, want default ontology", r.Topics)
	}
	if !r.Fork.IsNotFork() {
		t.Errorf("Fork should decode false as not-a-fork")
	}
}

func TestStamp(t *testing.T) {
	s, err := ParseStamp("2012-07-20T01:19:13Z")
	if err != nil {
		t.Fatalf("ParseStamp() error = %v", err)
	}
	if got := s.String(); got != "2012-07-20T01:19:13Z" {
		t.Errorf("String() = %q", got)
	}
	if got := Stamp(0).String(); got != "" {
		t.Errorf("zero Stamp String() = %q, want empty", got)
	}
	if got := s.Time().UTC().Year(); got != 2012 {
		t.Errorf("Time().Year() = %d", got)
	}
}
