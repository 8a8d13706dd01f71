package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mauv0809/touchline/internal/club"
)

// fieldReader coerces the columns of one record and collects what is wrong with them.
type fieldReader struct {
	rec      Record
	problems []string
}

func (f *fieldReader) str(key string) string {
	return strings.TrimSpace(f.rec[key])
}

func (f *fieldReader) required(key string) string {
	v := f.str(key)
	if v == "" {
		f.problems = append(f.problems, key+" is required")
	}
	return v
}

func (f *fieldReader) optInt(key string) *int {
	v := f.str(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.problems = append(f.problems, fmt.Sprintf("%s must be a whole number, got %q", key, v))
		return nil
	}
	return &n
}

// count reads a non-negative integer; blank is zero.
func (f *fieldReader) count(key string) int {
	n := f.optInt(key)
	if n == nil {
		return 0
	}
	if *n < 0 {
		f.problems = append(f.problems, key+" must not be negative")
		return 0
	}
	return *n
}

func (f *fieldReader) optFloat(key string) *float64 {
	v := f.str(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.problems = append(f.problems, fmt.Sprintf("%s must be a number, got %q", key, v))
		return nil
	}
	return &n
}

// ref reads a reference given either as an id or as an external id.
func (f *fieldReader) ref(table, idKey, externalKey string) ref {
	return ref{table: table, idKey: idKey, externalKey: externalKey, id: f.str(idKey), externalID: f.str(externalKey)}
}

// validation folds a club validation error into the row's problems.
func (f *fieldReader) validation(err error) {
	if err == nil {
		return
	}
	var verr *club.ValidationError
	if errors.As(err, &verr) {
		f.problems = append(f.problems, verr.Messages()...)
		return
	}
	f.problems = append(f.problems, err.Error())
}

func (f *fieldReader) message(line int) string {
	return fmt.Sprintf("Row %d: %s", line, strings.Join(f.problems, "; "))
}

type ref struct {
	table       string
	idKey       string
	externalKey string
	id          string
	externalID  string
}

func (r ref) empty() bool {
	return r.id == "" && r.externalID == ""
}

// resolver looks up referenced rows in bulk before records are finalised.
type resolver struct {
	store    Store
	external map[string]map[string]string
	existing map[string]map[string]bool
}

func newResolver(store Store) *resolver {
	return &resolver{
		store:    store,
		external: make(map[string]map[string]string),
		existing: make(map[string]map[string]bool),
	}
}

func (r *resolver) load(ctx context.Context, refs []ref) error {
	ids := make(map[string][]string)
	externals := make(map[string][]string)
	for _, rf := range refs {
		switch {
		case rf.id != "":
			ids[rf.table] = append(ids[rf.table], rf.id)
		case rf.externalID != "":
			externals[rf.table] = append(externals[rf.table], rf.externalID)
		}
	}
	for table, list := range ids {
		found, err := r.store.ExistingIDs(ctx, table, unique(list))
		if err != nil {
			return fmt.Errorf("failed to look up %s: %w", table, err)
		}
		r.existing[table] = found
	}
	for table, list := range externals {
		found, err := r.store.ResolveExternalIDs(ctx, table, unique(list))
		if err != nil {
			return fmt.Errorf("failed to resolve %s external ids: %w", table, err)
		}
		r.external[table] = found
	}
	return nil
}

// resolve returns the internal id of rf, or records a problem when it is unknown.
func (r *resolver) resolve(rf ref, f *fieldReader) string {
	switch {
	case rf.id != "":
		if r.existing[rf.table][rf.id] {
			return rf.id
		}
		f.problems = append(f.problems, fmt.Sprintf("%s %q not found", rf.idKey, rf.id))
	case rf.externalID != "":
		if id, ok := r.external[rf.table][rf.externalID]; ok {
			return id
		}
		f.problems = append(f.problems, fmt.Sprintf("%s %q not found", rf.externalKey, rf.externalID))
	}
	return ""
}

func unique(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
