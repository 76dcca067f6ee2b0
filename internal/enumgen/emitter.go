// Package enumgen builds the generated enumeration artifacts: numeric
// ranges (grouped or not), fixed tables (ethnicity, vital status) and the
// two-level recent-time buckets.
package enumgen

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"ontorefine/internal/codes"
	"ontorefine/internal/config"
	"ontorefine/internal/diag"
	"ontorefine/internal/ontology"
	"ontorefine/internal/trace"
)

// ErrRangeTooLarge is returned for numeric ranges that would produce an
// unreasonable number of leaves.
var ErrRangeTooLarge = errors.New("enumeration range too large")

// Row is one entry of a table-driven enumeration.
type Row struct {
	Name        string
	Description string
	Value       string
}

// VitalStatus is the fixed vital-status table.
var VitalStatus = []Row{
	{Name: "Living", Description: "Living", Value: "N"},
	{Name: "Deceased", Description: "Deceased", Value: "Y"},
	{Name: "Not recorded", Description: "Not recorded", Value: "@"},
}

// Emitter builds artifacts and hands them to a Sink.
type Emitter struct {
	sink     Sink
	reporter diag.Reporter
	omit     []string
	emitted  int
}

// New creates an emitter. omit lists the folder names left out of
// artifact paths.
func New(sink Sink, r diag.Reporter, omit []string) *Emitter {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Emitter{sink: sink, reporter: r, omit: omit}
}

// Emitted returns the number of artifacts handed to the sink.
func (e *Emitter) Emitted() int { return e.emitted }

// Range dispatches a numeric spec to the grouped or ungrouped generator.
func (e *Emitter) Range(ctx context.Context, f *ontology.Folder, spec config.Enumeration) (*ontology.Artifact, error) {
	if !spec.HasRange() {
		return nil, fmt.Errorf("enumeration %q has no range", spec.Name)
	}
	if spec.Grouped() {
		return e.Grouped(ctx, f, *spec.First, *spec.Last, spec.Group)
	}
	return e.Ungrouped(ctx, f, *spec.First, *spec.Last)
}

// Grouped partitions [first, last] into buckets of size group. A trailing
// partial bucket holds the remainder.
func (e *Emitter) Grouped(ctx context.Context, f *ontology.Folder, first, last, group int) (*ontology.Artifact, error) {
	if group <= 0 {
		return e.Ungrouped(ctx, f, first, last)
	}
	if err := checkRange(first, last); err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	a := ontology.NewArtifact(f, ontology.TypeGeneratedEnumeration, e.omit)
	width := rangeWidth(first, last)
	for lo := first; lo <= last; lo += group {
		hi := min(lo+group-1, last)
		g := a.AddGroup(fmt.Sprintf("%s to %s", pad(lo, width), pad(hi, width)))
		for n := lo; n <= hi; n++ {
			name := pad(n, width)
			g.AddLeaf(name, name, a.Code+":"+name)
		}
	}
	return a, e.finish(ctx, a)
}

// Ungrouped produces one leaf per integer in [first, last].
func (e *Emitter) Ungrouped(ctx context.Context, f *ontology.Folder, first, last int) (*ontology.Artifact, error) {
	if err := checkRange(first, last); err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	a := ontology.NewArtifact(f, ontology.TypeGeneratedEnumeration, e.omit)
	width := rangeWidth(first, last)
	for n := first; n <= last; n++ {
		name := pad(n, width)
		a.AddLeaf(name, name, a.Code+":"+name)
	}
	return a, e.finish(ctx, a)
}

// Table produces one leaf per row, coded root:value.
func (e *Emitter) Table(ctx context.Context, f *ontology.Folder, typ ontology.Type, rows []Row) (*ontology.Artifact, error) {
	a := ontology.NewArtifact(f, typ, e.omit)
	for _, r := range rows {
		a.AddLeaf(r.Name, r.Description, a.Code+":"+r.Value)
	}
	return a, e.finish(ctx, a)
}

// Ethnicity produces the configured ethnic group table.
func (e *Emitter) Ethnicity(ctx context.Context, f *ontology.Folder, table []config.EthnicCode) (*ontology.Artifact, error) {
	rows := make([]Row, len(table))
	for i, c := range table {
		rows[i] = Row{Name: c.Name, Description: c.Description, Value: c.Value}
	}
	return e.Table(ctx, f, ontology.TypeGeneratedEnumeration, rows)
}

// VitalStatus produces the fixed vital-status table.
func (e *Emitter) VitalStatus(ctx context.Context, f *ontology.Folder) (*ontology.Artifact, error) {
	return e.Table(ctx, f, ontology.TypeVitalStatus, VitalStatus)
}

var days = []struct{ name, tag string }{
	{"Today", "TODAY"},
	{"Yesterday", "YESTERDAY"},
}

// RecentTime produces the day/hour/quarter-hour buckets plus one overflow
// leaf.
func (e *Emitter) RecentTime(ctx context.Context, f *ontology.Folder) (*ontology.Artifact, error) {
	a := ontology.NewArtifact(f, ontology.TypeRecentTime, e.omit)
	for _, d := range days {
		day := a.AddGroup(d.name)
		for h := 0; h < 24; h++ {
			hour := day.AddGroup(fmt.Sprintf("Hour %2d", h))
			for m := 0; m < 60; m += 15 {
				name := "Min " + strconv.Itoa(m)
				hour.AddLeaf(name, name, fmt.Sprintf("%s:%s:%d:%d", a.Code, d.tag, h, m))
			}
		}
	}
	a.AddLeaf("More than 24 hours", "More than 24 hours", a.Code+":GT24H")
	return a, e.finish(ctx, a)
}

// finish flags over-long leaf codes and persists the artifact. The
// artifact is written even when some codes are too long.
func (e *Emitter) finish(ctx context.Context, a *ontology.Artifact) error {
	for _, l := range a.Leaves() {
		if len(l.Code) > codes.LeafLimit {
			diag.ReportError(e.reporter, diag.CodeLeafTooLong, a.Path,
				fmt.Sprintf("enumeration leaf code exceeds %d characters (%d)", codes.LeafLimit, len(l.Code))).
				WithValue(l.Code).
				Emit()
		}
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeNode, "artifact:"+a.Name,
		fmt.Sprintf("%s, %d leaves", a.Type, len(a.Leaves())))
	if err := e.sink.Put(ctx, a); err != nil {
		return err
	}
	e.emitted++
	return nil
}

// maxLeaves caps numeric ranges.
const maxLeaves = 1<<16 - 1

func checkRange(first, last int) error {
	if first > last {
		return fmt.Errorf("invalid range %d..%d", first, last)
	}
	if _, err := safecast.Conv[uint16](last - first + 1); err != nil {
		return fmt.Errorf("%w: %d..%d (at most %d leaves)", ErrRangeTooLarge, first, last, maxLeaves)
	}
	return nil
}

func rangeWidth(first, last int) int {
	return max(len(strconv.Itoa(first)), len(strconv.Itoa(last)))
}

func pad(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}
