package server

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/applications"
	"github.com/jonathan/job-portal/internal/observability"
)

// ChangeStatusRequest moves an application to another status.
type ChangeStatusRequest struct {
	StatusID int64 `json:"status_id"`
}

// CountResponse wraps a bare count.
type CountResponse struct {
	Count int `json:"count"`
}

// readApplyRequest accepts either multipart form data with optional
// cover_letter and resume files, or a JSON body without documents.
func (s *Server) readApplyRequest(w http.ResponseWriter, r *http.Request) (applications.ApplyRequest, func(), error) {
	var req applications.ApplyRequest
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := decodeJSON(r, &req.ApplicationInput); err != nil {
			return req, noop, err
		}
		return req, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return req, noop, errors.Wrap(err, "invalid multipart body")
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	if raw := strings.TrimSpace(r.FormValue("experience")); raw != "" {
		exp, err := strconv.Atoi(raw)
		if err != nil {
			return req, cleanup, errors.Newf("invalid experience: %q", raw)
		}
		req.Experience = exp
	}
	req.Note = r.FormValue("note")

	var files []multipart.File
	closeFiles := func() {
		for _, f := range files {
			_ = f.Close()
		}
		cleanup()
	}
	for field, dst := range map[string]**applications.Attachment{"cover_letter": &req.CoverLetter, "resume": &req.Resume} {
		f, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return req, closeFiles, errors.Wrapf(err, "invalid %s upload", field)
		}
		files = append(files, f)
		*dst = &applications.Attachment{Name: header.Filename, Size: header.Size, Content: f}
	}
	return req, closeFiles, nil
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	req, done, err := s.readApplyRequest(w, r)
	defer done()
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	app, err := s.svc.Applications.Apply(r.Context(), jobID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

func (s *Server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	q, err := applicationQuery(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	page, err := s.svc.Applications.ListByJob(r.Context(), jobID, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleCountJobApplications(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	n, err := s.svc.Applications.CountForJob(r.Context(), jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, CountResponse{Count: n})
}

func (s *Server) handleListAllApplications(w http.ResponseWriter, r *http.Request) {
	q, err := applicationQuery(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	page, err := s.svc.Applications.ListAll(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	q, err := applicationQuery(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	page, err := s.svc.Applications.ListMine(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	app, err := s.svc.Applications.GetApplication(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	d, err := s.svc.Applications.OpenAttachment(r.Context(), id, r.PathValue("kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer d.Content.Close()

	contentType := mime.TypeByExtension(filepath.Ext(d.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, d.Content); err != nil {
		s.logger.Warnw("failed to stream attachment", observability.FieldApplicationID, id, observability.FieldError, err)
	}
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	var req ChangeStatusRequest
	if err := decodeJSON(r, &req); err != nil || req.StatusID <= 0 {
		s.badRequest(w, "status_id is required")
		return
	}
	app, err := s.svc.Applications.ChangeStatus(r.Context(), id, req.StatusID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	app, err := s.svc.Applications.Withdraw(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}
