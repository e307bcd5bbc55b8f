package applications

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/filestore"
)

// Attachment kinds addressable for download.
const (
	AttachmentResume      = "resume"
	AttachmentCoverLetter = "cover-letter"
)

// Download is an open stored document. The caller closes Content.
type Download struct {
	Name    string
	Content io.ReadCloser
}

// OpenAttachment streams the resume or cover letter of an application to
// anyone allowed to read the application itself.
func (s *Service) OpenAttachment(ctx context.Context, applicationID int64, kind string) (*Download, error) {
	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	var ref string
	switch kind {
	case AttachmentResume:
		ref = app.ResumeName
	case AttachmentCoverLetter:
		ref = app.CoverLetterName
	default:
		return nil, apperr.Validation(apperr.CodeInvalidInput, "unknown attachment %q", kind)
	}
	if ref == "" {
		return nil, apperr.NotFound(apperr.CodeAttachmentNotFound, "application %d has no %s", applicationID, kind)
	}

	rc, err := s.files.Open(ctx, ref)
	switch {
	case errors.Is(err, filestore.ErrNotFound):
		return nil, apperr.NotFound(apperr.CodeAttachmentNotFound, "application %d has no %s", applicationID, kind)
	case err != nil:
		return nil, apperr.Infrastructure(err, "failed to open %s", kind)
	}
	return &Download{Name: originalName(ref), Content: rc}, nil
}

// originalName drops the unique prefix the file store adds to a reference.
func originalName(ref string) string {
	if _, name, ok := strings.Cut(ref, "_"); ok && name != "" {
		return name
	}
	return ref
}
