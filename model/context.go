package model

// TableContext is the currently loaded delimited-table attachment and its
// derived artifacts. Rows are kept in memory for the tabular tool catalog;
// only Name and RowCount ever reach the session store.
type TableContext struct {
	Name    string
	Headers []string
	Rows    []map[string]string
	// Summary is a compact per-numeric-column statistics block sized for
	// direct inclusion in a model prompt.
	Summary string
	// SlimCSV is a size-reduced re-serialization for prompt context.
	SlimCSV string
	// Raw is the original attachment text, kept for code-execution mode
	// where the full table is transport-encoded into the prompt. Never
	// persisted.
	Raw string
	// RawSize is the size in bytes of the original attachment text.
	RawSize int
}

// RecordContext is the currently loaded JSON-array attachment. The field
// universe is the keys of the first record.
type RecordContext struct {
	Name    string
	Fields  []string
	Records []map[string]any
}

// AttachmentState owns a session's active attachment. At most one of the two
// context kinds is set at any time: installing one clears the other, so the
// exclusivity the router depends on is a property of this type rather than of
// caller discipline.
type AttachmentState struct {
	table   *TableContext
	records *RecordContext
	fresh   bool
}

// SetTable installs a tabular context, clearing any record context.
func (s *AttachmentState) SetTable(t *TableContext) {
	s.table = t
	s.records = nil
	s.fresh = true
}

// SetRecords installs a structured-record context, clearing any table context.
func (s *AttachmentState) SetRecords(r *RecordContext) {
	s.records = r
	s.table = nil
	s.fresh = true
}

// Clear removes the active attachment, if any.
func (s *AttachmentState) Clear() {
	s.table = nil
	s.records = nil
	s.fresh = false
}

// Table returns the active tabular context, or nil.
func (s *AttachmentState) Table() *TableContext { return s.table }

// Records returns the active record context, or nil.
func (s *AttachmentState) Records() *RecordContext { return s.records }

// TakeFresh reports whether the attachment was installed since the last call
// and clears the flag. The router uses this one-shot signal to distinguish a
// same-turn drop from pre-existing session data.
func (s *AttachmentState) TakeFresh() bool {
	f := s.fresh
	s.fresh = false
	return f
}

// Descriptor returns the name/size line persisted in place of the bulk
// payload.
func (s *AttachmentState) Descriptor() string {
	switch {
	case s.table != nil:
		return s.table.Name
	case s.records != nil:
		return s.records.Name
	default:
		return ""
	}
}
