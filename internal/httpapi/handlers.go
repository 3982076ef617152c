package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/alexanderramin/planpilot/internal/audio"
	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/kpi"
	"github.com/alexanderramin/planpilot/internal/timeline"
)

// maxBodyBytes bounds request bodies; audio payloads are the largest.
const maxBodyBytes = 32 << 20

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json: %w", errBadRequest, err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// refDate parses an optional YYYY-MM-DD reference date.
func (s *Server) refDate(v string) (time.Time, error) {
	if v == "" {
		return s.now(), nil
	}
	t, err := datemath.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: now: %w", errBadRequest, err)
	}
	return t, nil
}

type kpiRequest struct {
	Tasks      []domain.Task  `json:"tasks"`
	Budget     *domain.Budget `json:"budget"`
	Now        string         `json:"now"`
	ActualCost *float64       `json:"actualCost"`
}

type kpiResponse struct {
	Snapshot domain.KPISnapshot `json:"snapshot"`
	Health   domain.HealthLevel `json:"health"`
	Signals  []string           `json:"signals"`
}

func (s *Server) computeKPIs(w http.ResponseWriter, r *http.Request) {
	var req kpiRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	now, err := s.refDate(req.Now)
	if err != nil {
		writeError(w, err)
		return
	}
	snap := kpi.Calculate(kpi.Input{Tasks: req.Tasks, Budget: req.Budget, Now: now, ActualCost: req.ActualCost})
	writeJSON(w, http.StatusOK, kpiResponse{Snapshot: snap, Health: kpi.Health(snap), Signals: kpi.Signals(snap)})
}

type timelineRequest struct {
	Tasks []domain.Task `json:"tasks"`
	Scale string        `json:"scale"`
	Zoom  float64       `json:"zoom"`
	// Expanded lists expanded project ids; absent means all expanded.
	Expanded *[]string `json:"expanded"`
	Now      string    `json:"now"`
}

func (s *Server) buildTimeline(w http.ResponseWriter, r *http.Request) {
	var req timelineRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	scale := timeline.ScaleWeeks
	if req.Scale != "" {
		var err error
		if scale, err = timeline.ParseScale(req.Scale); err != nil {
			writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
			return
		}
	}
	now, err := s.refDate(req.Now)
	if err != nil {
		writeError(w, err)
		return
	}

	expanded := timeline.ExpandAll(req.Tasks)
	if req.Expanded != nil {
		expanded = make(map[string]bool, len(*req.Expanded))
		for _, id := range *req.Expanded {
			expanded[id] = true
		}
	}
	chart, err := timeline.Build(req.Tasks, timeline.Options{Scale: scale, Zoom: req.Zoom, Expanded: expanded, Now: now})
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

type wavRequest struct {
	Audio      string `json:"audio"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

func (s *Server) encodeWAV(w http.ResponseWriter, r *http.Request) {
	var req wavRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pcm, err := audio.DecodeBase64PCM16(req.Audio)
	if err != nil {
		writeError(w, err)
		return
	}
	wav := audio.EncodeWAV(pcm, audio.Format{SampleRate: req.SampleRate, Channels: req.Channels})
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	projects, err := s.svc.Projects.List(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]projectDTO, len(projects))
	for i, p := range projects {
		out[i] = toDTO(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	p, err := s.svc.Projects.Get(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(p))
}

// putProject creates the project when the id is unknown and replaces it
// otherwise.
func (s *Server) putProject(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	var dto projectDTO
	if err := decode(r, &dto); err != nil {
		writeError(w, err)
		return
	}
	p := dto.project()
	p.ID = r.PathValue("id")
	p.UserID = uid

	status := http.StatusOK
	_, err := s.svc.Projects.Get(r.Context(), uid, p.ID)
	switch {
	case err == nil:
		err = s.svc.Projects.Update(r.Context(), p)
	case statusFor(err) == http.StatusNotFound:
		status = http.StatusCreated
		err = s.svc.Projects.Create(r.Context(), p)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, toDTO(p))
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	if err := s.svc.Projects.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) projectKPIs(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	now, err := s.refDate(r.URL.Query().Get("now"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.svc.KPIs.Snapshot(r.Context(), uid, r.PathValue("id"), now)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type generateResponse struct {
	Stage    domain.Stage `json:"stage"`
	Provider string       `json:"provider"`
	Model    string       `json:"model"`
	Project  projectDTO   `json:"project"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	stage, ok := domain.ParseStage(r.PathValue("stage"))
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown stage %q", errBadRequest, r.PathValue("stage")))
		return
	}
	res, err := s.svc.Generation.Run(r.Context(), uid, r.PathValue("id"), stage)
	if err != nil {
		s.logger.WarnContext(r.Context(), "generation_failed", "stage", stage, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Stage:    res.Stage,
		Provider: string(res.Provider),
		Model:    res.Model,
		Project:  toDTO(res.Project),
	})
}
