package lecture

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
)

// Content types
const (
	ContentVideo    = "video"
	ContentImage    = "image"
	ContentDocument = "document"
)

type Content struct {
	ID        int       `json:"id"`
	LectureID int       `json:"lecture_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CldPubID  string    `json:"cld_pub_id,omitempty"`
	MimeType  string    `json:"mime_type,omitempty"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Lecture struct {
	ID          int       `json:"id"`
	ClassID     int       `json:"class_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC

	Contents      []Content `json:"contents"`
	TotalContents int       `json:"total_contents"`
	VideoCount    int       `json:"video_count"`
	ImageCount    int       `json:"image_count"`
	DocumentCount int       `json:"document_count"`
}

// RefreshCounts recomputes the per-type content counters from Contents.
func (l *Lecture) RefreshCounts() {
	l.TotalContents = len(l.Contents)
	l.VideoCount, l.ImageCount, l.DocumentCount = 0, 0, 0
	for _, c := range l.Contents {
		switch c.Type {
		case ContentVideo:
			l.VideoCount++
		case ContentImage:
			l.ImageCount++
		case ContentDocument:
			l.DocumentCount++
		}
	}
}

// NewLecture contains information needed to create a new Lecture.
type NewLecture struct {
	ClassID     int    `json:"class_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Order       int    `json:"order" validate:"omitempty,min=0"`
	IsPublished bool   `json:"is_published"`
}

func (nl *NewLecture) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	return validate.Struct(nl)
}

// UpdateLecture defines what information may be provided to modify an existing Lecture.
type UpdateLecture struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       *int   `json:"order" validate:"omitempty"`
	IsPublished *bool  `json:"is_published"`
}

func (ul *UpdateLecture) Validate(orig Lecture, validate *validator.Validate) error {
	title := core.CleanString(ul.Title)
	if title != "" {
		ul.Title = title
	} else {
		ul.Title = orig.Title
	}
	return validate.Struct(ul)
}

// NewContent contains information needed to attach content to a Lecture.
type NewContent struct {
	Type      string `json:"type" validate:"required,oneof=video image document"`
	Title     string `json:"title" validate:"required"`
	URL       string `json:"url" validate:"required,url"`
	CldPubID  string `json:"cld_pub_id"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes" validate:"omitempty,min=0"`
	Order     int    `json:"order" validate:"omitempty,min=0"`
}

func (nc *NewContent) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	return validate.Struct(nc)
}

// UpdateContent defines what information may be provided to modify existing Content.
type UpdateContent struct {
	Title string `json:"title"`
	URL   string `json:"url" validate:"omitempty,url"`
	Order *int   `json:"order" validate:"omitempty"`
}

func (uc *UpdateContent) Validate(orig Content, validate *validator.Validate) error {
	title := core.CleanString(uc.Title)
	if title != "" {
		uc.Title = title
	} else {
		uc.Title = orig.Title
	}
	if uc.URL == "" {
		uc.URL = orig.URL
	}
	return validate.Struct(uc)
}

type Filter struct {
	ClassID int `query:"class_id"`
	// PublishedOnly hides drafts; forced on for students.
	PublishedOnly bool `query:"-"`
}

func (f *Filter) IsEmpty() bool { return f.ClassID == 0 && !f.PublishedOnly }
