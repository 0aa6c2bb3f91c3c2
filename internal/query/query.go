// Package query derives filtered, classified views over record collections.
//
// Every operation reads its input and allocates a new result; the source
// slice is never modified. Inputs are validated first and an invalid record
// fails the whole call with model.ErrInvalidArgument.
package query

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"agroeye/internal/classify"
	"agroeye/internal/model"
)

// Filter selects records by tag. The zero value matches every record.
type Filter[T model.Tag[T]] struct {
	tag T
	set bool
}

// All matches every record.
func All[T model.Tag[T]]() Filter[T] { return Filter[T]{} }

// Only matches records tagged tag.
func Only[T model.Tag[T]](tag T) Filter[T] { return Filter[T]{tag: tag, set: true} }

// ParseFilter accepts "all", the empty string, or one of T's values.
func ParseFilter[T model.Tag[T]](s string) (Filter[T], error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return All[T](), nil
	}
	tag := T(s)
	if !tag.Valid() {
		return Filter[T]{}, model.Invalid("unknown tag %q", s)
	}
	return Only(tag), nil
}

func (f Filter[T]) IsAll() bool { return !f.set }

func (f Filter[T]) Match(tag T) bool { return !f.set || f.tag == tag }

func (f Filter[T]) String() string {
	if !f.set {
		return "all"
	}
	return string(f.tag)
}

// Search returns the records whose searchable fields contain text, compared
// case-insensitively. Blank text matches everything.
func Search[R model.Record](records []R, text string) ([]R, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return append(make([]R, 0, len(records)), records...), nil
	}
	lower := cases.Lower(language.Und)
	needle := lower.String(text)
	out := make([]R, 0, len(records))
	for _, r := range records {
		if matches(lower, r.SearchFields(), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(lower cases.Caser, fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(lower.String(f), needle) {
			return true
		}
	}
	return false
}

func FilterByTag[R model.Tagged[T], T model.Tag[T]](records []R, f Filter[T]) ([]R, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}
	out := make([]R, 0, len(records))
	for _, r := range records {
		if f.Match(r.Tag()) {
			out = append(out, r)
		}
	}
	return out, nil
}

// CountByTag counts records per tag. Every value of T is present in the
// result, including those with no records.
func CountByTag[R model.Tagged[T], T model.Tag[T]](records []R) (map[T]int, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}
	var zero T
	counts := make(map[T]int, len(zero.Values()))
	for _, v := range zero.Values() {
		counts[v] = 0
	}
	for _, r := range records {
		tag := r.Tag()
		if !tag.Valid() {
			return nil, model.Invalid("record %q has unknown tag %q", r.RecordID(), tag)
		}
		counts[tag]++
	}
	return counts, nil
}

type Annotated[R model.Record] struct {
	Record   R                                  `json:"record"`
	Statuses map[model.MetricKind]model.Status `json:"statuses,omitempty"`
}

// ClassifyRecord attaches a status to every available reading of r.
// Pass-through metrics and unavailable readings get no entry; records without
// readings come back unannotated.
func ClassifyRecord[R model.Record](c *classify.Classifier, r R) (Annotated[R], error) {
	if err := r.Validate(); err != nil {
		return Annotated[R]{}, err
	}
	return classifyValid(c, r)
}

func classifyValid[R model.Record](c *classify.Classifier, r R) (Annotated[R], error) {
	out := Annotated[R]{Record: r}
	for _, rd := range r.Readings() {
		if !rd.Available {
			continue
		}
		status, err := c.Classify(rd.Kind, rd.Value)
		if err != nil {
			return Annotated[R]{}, fmt.Errorf("record %q: %w", r.RecordID(), err)
		}
		if status == model.StatusNone {
			continue
		}
		if out.Statuses == nil {
			out.Statuses = make(map[model.MetricKind]model.Status)
		}
		out.Statuses[rd.Kind] = status
	}
	return out, nil
}

type Query[T model.Tag[T]] struct {
	Text string
	Tag  Filter[T]
}

type Result[R model.Record, T comparable] struct {
	Items []Annotated[R] `json:"items"`
	// Counts covers the whole input, not just the matched items.
	Counts  map[T]int `json:"counts"`
	Total   int       `json:"total"`
	Matched int       `json:"matched"`
}

// Run applies the tag filter, then the text search, and classifies what is
// left.
func Run[R model.Tagged[T], T model.Tag[T]](c *classify.Classifier, records []R, q Query[T]) (Result[R, T], error) {
	counts, err := CountByTag[R, T](records)
	if err != nil {
		return Result[R, T]{}, err
	}
	filtered, err := FilterByTag(records, q.Tag)
	if err != nil {
		return Result[R, T]{}, err
	}
	found, err := Search(filtered, q.Text)
	if err != nil {
		return Result[R, T]{}, err
	}
	items := make([]Annotated[R], 0, len(found))
	for _, r := range found {
		a, err := classifyValid(c, r)
		if err != nil {
			return Result[R, T]{}, err
		}
		items = append(items, a)
	}
	return Result[R, T]{
		Items:   items,
		Counts:  counts,
		Total:   len(records),
		Matched: len(items),
	}, nil
}

func FilterBy[R any](records []R, pred func(R) bool) []R {
	out := make([]R, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func Count[R any](records []R, pred func(R) bool) int {
	n := 0
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}

func FindByID[R model.Record](records []R, id string) (R, bool) {
	for _, r := range records {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// Validate checks every record and rejects duplicate ids.
func Validate[R model.Record](records []R) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		id := r.RecordID()
		if _, dup := seen[id]; dup {
			return model.Invalid("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
