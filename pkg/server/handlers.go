package server

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dungeonbuilder/pkg/buildinfo"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/validate"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	dio "github.com/matzehuels/dungeonbuilder/pkg/io"
	"github.com/matzehuels/dungeonbuilder/pkg/pipeline"
	"github.com/matzehuels/dungeonbuilder/pkg/script"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": entries})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handlePut parses the body before storing it, so malformed documents are
// rejected and the stored copy is always in canonical form.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errs.ValidateLayoutName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := dio.ReadJSON(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.writes.lock(name)()
	_, getErr := s.store.Get(r.Context(), name)
	if err := store.SaveLayout(r.Context(), s.store, name, l); err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if errs.IsNotFound(getErr) {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"name": name, "cells": l.CellCount()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	defer s.writes.lock(name)()
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type validateResponse struct {
	Name        string                `json:"name"`
	Valid       bool                  `json:"valid"`
	Cached      bool                  `json:"cached"`
	Diagnostics []validate.Diagnostic `json:"diagnostics"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	opts, err := s.validationOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := store.LoadLayout(r.Context(), s.store, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	diags, hit, err := s.runner.ValidateWithCacheInfo(r.Context(), name, l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if diags == nil {
		diags = []validate.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Name:        name,
		Valid:       len(diags) == 0,
		Cached:      hit,
		Diagnostics: diags,
	})
}

// validationOptions reads neighbor_threshold and world_bound query
// parameters over the server defaults.
func (s *Server) validationOptions(r *http.Request) (validate.Options, error) {
	opts := s.opts.Validation
	q := r.URL.Query()
	for key, dst := range map[string]*float32{
		"neighbor_threshold": &opts.NeighborThreshold,
		"world_bound":        &opts.WorldBound,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 32)
		if err != nil || f <= 0 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "%s must be a positive number", key)
		}
		*dst = float32(f)
	}
	return opts, nil
}

func (s *Server) handleTree(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := store.LoadLayout(r.Context(), s.store, chi.URLParam(r, "name"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out, err := s.runner.RenderTree(r.Context(), l, pipeline.TreeOptions{
			Format:    format,
			ShowCells: r.URL.Query().Get("cells") == "true",
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	}
}

type applyResponse struct {
	Name        string                `json:"name"`
	Steps       int                   `json:"steps"`
	Refs        map[string]uint32     `json:"refs"`
	Saved       bool                  `json:"saved"`
	Diagnostics []validate.Diagnostic `json:"diagnostics"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "read body"))
		return
	}
	sc, err := script.Parse(bytes.TrimSpace(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	unlock := s.writes.lock(name)
	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Store:        s.store,
		Name:         name,
		Create:       r.URL.Query().Get("create") == "true",
		Script:       sc,
		HistoryLimit: s.opts.HistoryLimit,
		Validation:   s.opts.Validation,
		Save:         true,
	})
	unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	diags := res.Diagnostics
	if diags == nil {
		diags = []validate.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, applyResponse{
		Name:        name,
		Steps:       res.Script.Steps,
		Refs:        res.Script.Refs,
		Saved:       res.Saved,
		Diagnostics: diags,
	})
}
