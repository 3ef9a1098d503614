package jsonfile

import (
	"bytes"
	"strconv"
	"time"
)

const timeLayout = time.RFC3339Nano

// Timestamps written without a zone are read as UTC.
var fallbackLayouts = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"}

// flexibleInt accepts a JSON number or a numeric string; anything else reads as zero.
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if n, err := strconv.ParseFloat(string(data), 64); err == nil {
		*f = flexibleInt(int(n))
		return nil
	}
	*f = 0
	return nil
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// parseTime returns the zero time for empty or unparsable values.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseOptionalTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

type bookRecord struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Author          string      `json:"author"`
	Genre           string      `json:"genre"`
	PublicationYear flexibleInt `json:"publicationYear"`
	ISBN            string      `json:"isbn"`
	Available       *bool       `json:"available"`
	AddedDate       string      `json:"addedDate"`
}

type userRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registeredAt"`
}

type loanRecord struct {
	ID         string `json:"id"`
	BookID     string `json:"bookId"`
	UserID     string `json:"userId"`
	LoanedAt   string `json:"loanedAt"`
	DueAt      string `json:"dueAt"`
	ReturnedAt string `json:"returnedAt"`
}
