package models

// Snapshot references a single archived capture selected for a window.
type Snapshot struct {
	// Timestamp is the archive-assigned 14-digit capture instant (YYYYMMDDhhmmss).
	Timestamp  string `json:"timestamp"`
	URL        string `json:"url"`
	ArchiveURL string `json:"archive_url"`
}

// Content is normalized page text and the word count of that (already truncated) text.
type Content struct {
	Text      string `json:"content"`
	WordCount int    `json:"word_count"`
}
