package api

import (
	"encoding/json"
	"net/http"

	"helios/internal/agents"
	"helios/internal/tools"
	"helios/pkg/logger"
)

type handlers struct {
	registry *tools.Registry
	store    *agents.Store
	runner   *agents.Runner
	log      *logger.Logger
}

// toolInfo is the listing shape for a registered tool.
type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Enabled     bool   `json:"enabled"`
	Parameters  int    `json:"parameters"`
}

func (h *handlers) listTools(w http.ResponseWriter, r *http.Request) {
	var descriptors []*tools.Descriptor
	if category := r.URL.Query().Get("category"); category != "" {
		descriptors = h.registry.ListByCategory(category)
	} else {
		descriptors = h.registry.List()
	}

	out := make([]toolInfo, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, toolInfo{
			Name:        d.Name,
			Description: d.Description,
			Category:    d.Category,
			Enabled:     d.Enabled,
			Parameters:  len(d.Parameters),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tools": out})
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": h.registry.Categories()})
}

func (h *handlers) exportSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"tools": h.registry.ExportSchema()})
}

func (h *handlers) toolSchema(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := h.registry.Get(name); err != nil {
		respondError(w, h.log, err)
		return
	}
	schemas := h.registry.ExportSchema(name)
	if len(schemas) == 0 {
		respondJSON(w, http.StatusConflict, map[string]string{"error": "tool is disabled"})
		return
	}
	respondJSON(w, http.StatusOK, schemas[0])
}

type executeRequest struct {
	Arguments map[string]interface{} `json:"arguments"`
}

func (h *handlers) executeTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	result, err := h.registry.Execute(r.Context(), name, req.Arguments)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *handlers) setToolEnabled(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req setEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "body must contain an enabled flag"})
		return
	}

	if err := h.registry.SetEnabled(name, *req.Enabled); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"name": name, "enabled": *req.Enabled})
}

func (h *handlers) listAgents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"agents": h.store.List()})
}

func (h *handlers) saveAgent(w http.ResponseWriter, r *http.Request) {
	var def agents.Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	if err := h.store.Save(&def); err != nil {
		respondError(w, h.log, err)
		return
	}

	stored, err := h.store.Get(def.Name)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, stored)
}

func (h *handlers) getAgent(w http.ResponseWriter, r *http.Request) {
	def, err := h.store.Get(r.PathValue("name"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, def)
}

func (h *handlers) deleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("name")); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type analyzeRequest struct {
	Prompt string `json:"prompt"`
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "body must contain a prompt"})
		return
	}

	result, err := h.runner.Analyze(r.Context(), name, req.Prompt)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
