package record

// Record is a single row of data flowing through the import pipeline.
// Field order is preserved: quarantine exports and staging loads emit
// columns in the order the source delivered them.
//
// Values are nil, string, int64, bool or time.Time. Coercion helpers in
// core/convert rewrite string values into typed ones in place.
type Record struct {
	fields []string
	values map[string]any
}

// New returns an empty Record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a value under the given field, appending the field to the
// order on first use.
func (r *Record) Set(field string, value any) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
}

// Get returns the value for field and whether the field is present.
// A present field may still hold a nil value.
func (r *Record) Get(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Has reports whether the field is present, regardless of its value.
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Delete removes the field and its value.
func (r *Record) Delete(field string) {
	if _, ok := r.values[field]; !ok {
		return
	}
	delete(r.values, field)
	for i, f := range r.fields {
		if f == field {
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			break
		}
	}
}

// Fields returns the field names in insertion order. The returned slice is
// a copy and safe to mutate.
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Values returns a field->value map of the non-nil values.
// Used to build partial INSERT/UPDATE column sets.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.fields))
	for f, v := range r.values {
		if v != nil {
			out[f] = v
		}
	}
	return out
}
