// Package model defines the canonical schema for a repository metadata
// record. A record represents one cataloged software repository, keyed by the
// integer identifier assigned by the source hosting platform; that identifier
// is also the record's primary key in the persistent store.
//
// Records are built once at discovery time with whatever is known and then
// mutated in place as successive enrichment passes fill in fields. Every
// optional field carries its enrichment state explicitly (see Field), so
// "never checked" is never confused with "checked, not there".
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidID is returned when a record is constructed with a
	// non-positive identifier.
	ErrInvalidID = errors.New("repository id must be a positive integer")

	// ErrMissingField is returned by accessors that need a field which has
	// not been determined yet.
	ErrMissingField = errors.New("required record field is not set")
)

// Language is one programming language found in a repository's source code.
// Only the name is stored for now; the nested shape is kept so stores can
// query the field by name and so more attributes can be added later.
type Language struct {
	Name string `json:"name"`
}

// Languages builds the canonical language sequence from bare names,
// preserving order.
func Languages(names ...string) []Language {
	langs := make([]Language, len(names))
	for i, n := range names {
		langs[i] = Language{Name: n}
	}
	return langs
}

// Values for ContentType.Content.
const (
	ContentCode    = "code"
	ContentNoncode = "noncode"
)

// Values for ContentType.Basis.
const (
	BasisFileNames = "file names"
	BasisLanguages = "languages"
)

// ContentType is one classification of what a repository contains, together
// with the method that produced it. A record can carry several, one per
// classification method, without them overwriting each other.
type ContentType struct {
	Content string `json:"content"`
	Basis   string `json:"basis"`
}

// Topics maps an ontology name to the term identifiers assigned from that
// ontology, e.g. {"lcsh": ["sh85133180"]}.
type Topics map[string][]string

// DefaultOntology is the ontology every record starts with.
const DefaultOntology = "lcsh"

// NewTopics builds a Topics value for a single ontology.
func NewTopics(ontology string, terms ...string) Topics {
	if terms == nil {
		terms = []string{}
	}
	return Topics{ontology: terms}
}

// defaultTopics returns the required default: the standard ontology with no
// terms assigned yet.
func defaultTopics() Topics {
	return NewTopics(DefaultOntology)
}

// Record is the metadata for one cataloged software repository.
//
// Sequence-valued fields (Languages, Licenses, Files, …) are unknown when
// their Field state is StateUnknown, known-absent when StateAbsent, and
// otherwise hold a non-empty sequence in source order. Readme is the only
// field that can additionally be StateInvalid: a README exists but its
// content is garbage.
type Record struct {
	// ID is the platform-assigned identifier, immutable once created.
	ID int64 `json:"_id"`

	Owner       Field[string] `json:"owner"`
	Name        Field[string] `json:"name"`
	Description Field[string] `json:"description"`
	Readme      Field[string] `json:"readme"`

	// TextLanguages holds ISO 639-1 codes for the human languages detected
	// in the description and readme.
	TextLanguages Field[[]string] `json:"text_languages"`

	// Languages is the ordered list of programming languages reported for
	// the repository. Order is the source's confidence order and must be
	// preserved on round-trip.
	Languages Field[[]Language] `json:"languages"`

	Licenses    Field[[]string]      `json:"licenses"`
	Files       Field[[]string]      `json:"files"`
	ContentType Field[[]ContentType] `json:"content_type"`
	Kind        Field[[]string]      `json:"kind"`
	Interfaces  Field[[]string]      `json:"interfaces"`

	Topics Topics `json:"topics"`

	// Notes holds annotation rationale for special cases.
	Notes Field[string] `json:"notes"`

	// Functions lists function names identified in the source code.
	Functions Field[[]string] `json:"functions"`

	NumCommits      Field[int64] `json:"num_commits"`
	NumReleases     Field[int64] `json:"num_releases"`
	NumBranches     Field[int64] `json:"num_branches"`
	NumContributors Field[int64] `json:"num_contributors"`

	// IsVisible is false for entries we once cataloged but can no longer
	// access on the platform. IsDeleted is true when the platform reports
	// the repository gone. IsDeleted == true implies IsVisible == false;
	// the invariant is documented here, not enforced by the builder, because
	// enrichment passes learn the two facts independently.
	IsVisible Field[bool] `json:"is_visible"`
	IsDeleted Field[bool] `json:"is_deleted"`

	Fork Fork `json:"fork"`

	Times Times `json:"time"`

	DefaultBranch Field[string] `json:"default_branch"`
	Homepage      Field[string] `json:"homepage"`
}

// Option populates one field at construction time.
type Option func(*Record)

func WithOwner(owner string) Option { return func(r *Record) { r.Owner = Known(owner) } }
func WithName(name string) Option   { return func(r *Record) { r.Name = Known(name) } }

func WithDescription(d string) Option { return func(r *Record) { r.Description = Known(d) } }
func WithReadme(text string) Option   { return func(r *Record) { r.Readme = Known(text) } }

func WithTextLanguages(codes ...string) Option {
	return func(r *Record) { r.TextLanguages = Known(codes) }
}

func WithLanguages(langs []Language) Option {
	return func(r *Record) { r.Languages = Known(langs) }
}

func WithLicenses(names ...string) Option { return func(r *Record) { r.Licenses = Known(names) } }
func WithFiles(names ...string) Option    { return func(r *Record) { r.Files = Known(names) } }

func WithContentType(cts ...ContentType) Option {
	return func(r *Record) { r.ContentType = Known(cts) }
}

func WithKind(terms ...string) Option       { return func(r *Record) { r.Kind = Known(terms) } }
func WithInterfaces(terms ...string) Option { return func(r *Record) { r.Interfaces = Known(terms) } }

func WithTopics(t Topics) Option { return func(r *Record) { r.Topics = t } }
func WithNotes(notes string) Option {
	return func(r *Record) { r.Notes = Known(notes) }
}
func WithFunctions(names ...string) Option {
	return func(r *Record) { r.Functions = Known(names) }
}

func WithNumCommits(n int64) Option      { return func(r *Record) { r.NumCommits = Known(n) } }
func WithNumReleases(n int64) Option     { return func(r *Record) { r.NumReleases = Known(n) } }
func WithNumBranches(n int64) Option     { return func(r *Record) { r.NumBranches = Known(n) } }
func WithNumContributors(n int64) Option { return func(r *Record) { r.NumContributors = Known(n) } }

func WithVisible(v bool) Option { return func(r *Record) { r.IsVisible = Known(v) } }
func WithDeleted(v bool) Option { return func(r *Record) { r.IsDeleted = Known(v) } }

func WithFork(f Fork) Option { return func(r *Record) { r.Fork = f } }

func WithCreated(s Stamp) Option   { return func(r *Record) { r.Times.Created = Known(s) } }
func WithUpdated(s Stamp) Option   { return func(r *Record) { r.Times.Updated = Known(s) } }
func WithPushed(s Stamp) Option    { return func(r *Record) { r.Times.Pushed = Known(s) } }
func WithRefreshed(s Stamp) Option { return func(r *Record) { r.Times.Refreshed = Known(s) } }

func WithDefaultBranch(b string) Option { return func(r *Record) { r.DefaultBranch = Known(b) } }
func WithHomepage(url string) Option    { return func(r *Record) { r.Homepage = Known(url) } }

// New creates a record for the given platform identifier. Fields not
// populated by options keep their unknown state; Topics defaults to the
// standard ontology with no terms.
func New(id int64, opts ...Option) (*Record, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	r := &Record{ID: id}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.Topics) == 0 {
		r.Topics = defaultTopics()
	}
	return r, nil
}

// Path returns the canonical "owner/name" display path. It fails with
// ErrMissingField unless both components are known.
func (r *Record) Path() (string, error) {
	owner, ok := r.Owner.Get()
	if !ok {
		return "", fmt.Errorf("%w: owner of #%d", ErrMissingField, r.ID)
	}
	name, ok := r.Name.Get()
	if !ok {
		return "", fmt.Errorf("%w: name of #%d", ErrMissingField, r.ID)
	}
	return owner + "/" + name, nil
}

// Summary returns a short display string combining the path and the record
// ID, e.g. "octo/cat (#42)". Byte sequences that are not valid UTF-8 are
// replaced rather than allowed to break display output.
func (r *Record) Summary() (string, error) {
	path, err := r.Path()
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(fmt.Sprintf("%s (#%d)", path, r.ID), "?"), nil
}

// LanguageNames flattens the languages field to bare names in source order.
// The returned state passes the field's enrichment state through unchanged:
// StateUnknown yields an empty list, StateAbsent yields no list (the caller
// must not read "analysis failed" as "no languages"), and StateKnown yields
// the names.
func (r *Record) LanguageNames() ([]string, State) {
	switch r.Languages.State() {
	case StateKnown:
		langs, _ := r.Languages.Get()
		names := make([]string, len(langs))
		for i, l := range langs {
			names[i] = l.Name
		}
		return names, StateKnown
	case StateAbsent:
		return nil, StateAbsent
	default:
		return []string{}, StateUnknown
	}
}

// recordDoc mirrors Record for JSON decoding without recursing into
// Record.UnmarshalJSON.
type recordDoc Record

// UnmarshalJSON decodes a store document, restoring the Topics default for
// documents that predate the field.
func (r *Record) UnmarshalJSON(data []byte) error {
	var doc recordDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc.Topics) == 0 {
		doc.Topics = defaultTopics()
	}
	*r = Record(doc)
	return nil
}
