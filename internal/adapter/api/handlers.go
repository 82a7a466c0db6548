package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/branchscope/branchscope/internal/adapter/rest"
	"github.com/branchscope/branchscope/internal/diff"
	"github.com/branchscope/branchscope/internal/domain"
	"github.com/branchscope/branchscope/internal/usecase/compare"
)

// maxBodyBytes caps request bodies; the API only carries small JSON payloads.
const maxBodyBytes = 1 << 20

type branchesRequest struct {
	RepoURL string `json:"repoUrl"`
	Token   string `json:"token"`
}

type branchesResponse struct {
	Branches []domain.Branch `json:"branches"`
}

type compareRequest struct {
	RepoURL      string `json:"repoUrl"`
	Token        string `json:"token"`
	SourceBranch string `json:"sourceBranch"`
	DestBranch   string `json:"destBranch"`
	FromDate     string `json:"fromDate"`
	ToDate       string `json:"toDate"`
}

type diffRequest struct {
	RepoURL      string `json:"repoUrl"`
	Token        string `json:"token"`
	Path         string `json:"path"`
	SourceBranch string `json:"sourceBranch"`
	DestBranch   string `json:"destBranch"`
}

type diffResponse struct {
	Path  string            `json:"path"`
	Lines []domain.DiffLine `json:"lines"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	var req branchesRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	branches, err := s.orchestrator.Branches(ctx, compare.RepoRef{URL: req.RepoURL, Token: req.Token})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, branchesResponse{Branches: branches})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decode(w, r, &req) {
		return
	}

	window, err := parseWindow(req.FromDate, req.ToDate)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	result, err := s.orchestrator.Compare(ctx, compare.CompareRequest{
		Repo:         compare.RepoRef{URL: req.RepoURL, Token: req.Token},
		SourceBranch: req.SourceBranch,
		DestBranch:   req.DestBranch,
		Window:       window,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	lines, err := s.orchestrator.DiffFile(ctx, compare.DiffRequest{
		Repo:         compare.RepoRef{URL: req.RepoURL, Token: req.Token},
		Path:         req.Path,
		SourceBranch: req.SourceBranch,
		DestBranch:   req.DestBranch,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, diffResponse{Path: req.Path, Lines: lines})
}

// parseWindow accepts RFC 3339 timestamps or bare dates. A bare to date means
// "through the end of that day" so an inclusive date picker behaves the way
// users expect.
func parseWindow(fromDate, toDate string) (compare.Window, error) {
	var window compare.Window

	if fromDate != "" {
		from, _, err := parseDate(fromDate)
		if err != nil {
			return compare.Window{}, errors.New("fromDate must be RFC 3339 or YYYY-MM-DD")
		}
		window.From = from
	}
	if toDate != "" {
		to, dateOnly, err := parseDate(toDate)
		if err != nil {
			return compare.Window{}, errors.New("toDate must be RFC 3339 or YYYY-MM-DD")
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		window.To = to
	}
	return window, nil
}

func parseDate(value string) (parsed time.Time, dateOnly bool, err error) {
	if t, e := time.Parse(time.RFC3339, value); e == nil {
		return t.UTC(), false, nil
	}
	if t, e := time.Parse("2006-01-02", value); e == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, errors.New("unrecognized date")
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain and upstream failures onto HTTP statuses. Upstream
// outages surface as 502 so callers can tell our failures from GitLab's.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway

	var restErr *rest.Error
	switch {
	case errors.Is(err, compare.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, compare.ErrPathNotFound):
		status = http.StatusNotFound
	case errors.Is(err, diff.ErrBinaryContent):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &restErr):
		switch restErr.Type {
		case rest.ErrTypeAuthentication:
			status = http.StatusUnauthorized
		case rest.ErrTypeNotFound:
			status = http.StatusNotFound
		case rest.ErrTypeRateLimit:
			status = http.StatusTooManyRequests
		case rest.ErrTypeInvalidRequest:
			status = http.StatusBadRequest
		case rest.ErrTypeTimeout:
			status = http.StatusGatewayTimeout
		}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if s.logger != nil && status >= 500 {
		s.logger.LogWarning(r.Context(), "request failed", map[string]interface{}{
			"path":   r.URL.Path,
			"status": status,
			"error":  err.Error(),
		})
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
