package models

// Status is the terminal state of one subject's pipeline.
type Status string

// Subject pipeline states.
const (
	StatusPending                 Status = "pending"
	StatusInsufficientSnapshots   Status = "insufficient_snapshots"
	StatusContentExtractionFailed Status = "content_extraction_failed"
	StatusAnalysisError           Status = "analysis_error"
	StatusCompleted               Status = "completed"
)

// NotApplicable fills the error slot of a window that succeeded while its sibling failed.
const NotApplicable = "N/A"

// Output column names.
const (
	ColCompanyName     = "company_name"
	ColDomain          = "domain"
	ColWebsite         = "website"
	ColStatus          = "status"
	ColPreSnapshotErr  = "pre_snapshot_error"
	ColPostSnapshotErr = "post_snapshot_error"
	ColPreSnapshotURL  = "pre_ira_snapshot_url"
	ColPostSnapshotURL = "post_ira_snapshot_url"
	ColPreContentErr   = "pre_content_error"
	ColPostContentErr  = "post_content_error"
	ColPreWordCount    = "pre_word_count"
	ColPostWordCount   = "post_word_count"
	ColErrorMessage    = "error_message"
)

// BaseColumns is the stable leading column order of exported records.
var BaseColumns = []string{
	ColCompanyName, ColDomain, ColWebsite, ColStatus,
	ColPreSnapshotErr, ColPostSnapshotErr,
	ColPreSnapshotURL, ColPostSnapshotURL,
	ColPreContentErr, ColPostContentErr,
	ColPreWordCount, ColPostWordCount,
	ColErrorMessage,
}

// Field is one named value of a flattened record.
type Field struct {
	Value any
	Key   string
}

// Fields is an ordered flat mapping.
type Fields []Field

// Get returns the value for key and whether it is present.
func (f Fields) Get(key string) (any, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}

	return nil, false
}

// Keys returns the keys in order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, field := range f {
		keys = append(keys, field.Key)
	}

	return keys
}

// Map returns the fields as an unordered map.
func (f Fields) Map() map[string]any {
	m := make(map[string]any, len(f))
	for _, field := range f {
		m[field.Key] = field.Value
	}

	return m
}

// SnapshotURLs holds the archive URLs selected for both windows.
type SnapshotURLs struct {
	Pre  string
	Post string
}

// WordCounts holds the extracted word counts for both windows.
type WordCounts struct {
	Pre  int
	Post int
}

// Outcome is the terminal payload of a ChangeRecord. Each implementation carries
// exactly the fields its stage produced.
type Outcome interface {
	Status() Status
	appendFields(f Fields) Fields
}

// InsufficientSnapshots means at least one window lookup failed.
type InsufficientSnapshots struct {
	PreError  string
	PostError string
}

// ContentExtractionFailed means both lookups succeeded but at least one extraction failed.
type ContentExtractionFailed struct {
	Snapshots SnapshotURLs
	PreError  string
	PostError string
}

// AnalysisError means extraction succeeded but characterization failed.
type AnalysisError struct {
	Snapshots  SnapshotURLs
	Message    string
	WordCounts WordCounts
}

// Completed carries the flattened characterization.
type Completed struct {
	Snapshots  SnapshotURLs
	Analysis   Fields
	WordCounts WordCounts
}

// Status implements Outcome.
func (InsufficientSnapshots) Status() Status { return StatusInsufficientSnapshots }

// Status implements Outcome.
func (ContentExtractionFailed) Status() Status { return StatusContentExtractionFailed }

// Status implements Outcome.
func (AnalysisError) Status() Status { return StatusAnalysisError }

// Status implements Outcome.
func (Completed) Status() Status { return StatusCompleted }

func (o InsufficientSnapshots) appendFields(f Fields) Fields {
	return append(f,
		Field{Key: ColPreSnapshotErr, Value: o.PreError},
		Field{Key: ColPostSnapshotErr, Value: o.PostError},
	)
}

func (o ContentExtractionFailed) appendFields(f Fields) Fields {
	f = o.Snapshots.appendFields(f)

	return append(f,
		Field{Key: ColPreContentErr, Value: o.PreError},
		Field{Key: ColPostContentErr, Value: o.PostError},
	)
}

func (o AnalysisError) appendFields(f Fields) Fields {
	f = o.Snapshots.appendFields(f)
	f = o.WordCounts.appendFields(f)

	return append(f, Field{Key: ColErrorMessage, Value: o.Message})
}

func (o Completed) appendFields(f Fields) Fields {
	f = o.Snapshots.appendFields(f)
	f = o.WordCounts.appendFields(f)

	return append(f, o.Analysis...)
}

func (s SnapshotURLs) appendFields(f Fields) Fields {
	return append(f,
		Field{Key: ColPreSnapshotURL, Value: s.Pre},
		Field{Key: ColPostSnapshotURL, Value: s.Post},
	)
}

func (w WordCounts) appendFields(f Fields) Fields {
	return append(f,
		Field{Key: ColPreWordCount, Value: w.Pre},
		Field{Key: ColPostWordCount, Value: w.Post},
	)
}

// ChangeRecord is one subject's full outcome. A nil Outcome means the pipeline has not finished.
type ChangeRecord struct {
	Outcome Outcome
	Subject Subject
}

// Status returns the record's single status.
func (r ChangeRecord) Status() Status {
	if r.Outcome == nil {
		return StatusPending
	}

	return r.Outcome.Status()
}

// Fields flattens the record for tabular export.
func (r ChangeRecord) Fields() Fields {
	f := Fields{
		{Key: ColCompanyName, Value: r.Subject.Name},
		{Key: ColDomain, Value: r.Subject.Domain},
		{Key: ColWebsite, Value: r.Subject.Website},
		{Key: ColStatus, Value: string(r.Status())},
	}

	if r.Outcome == nil {
		return f
	}

	return r.Outcome.appendFields(f)
}
