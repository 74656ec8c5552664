package server

import (
	"net/http"

	"Articulate/model"

	"github.com/gorilla/mux"
)

// ListStrugglesHandler 获取难点列表
func (h *APIHandler) ListStrugglesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	struggles, err := h.practice.ListStruggles(r.Context(), id.OwnerID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struggles)
}

// StruggleOverviewHandler 难点列表附带练习集数量
func (h *APIHandler) StruggleOverviewHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	overview, err := h.practice.StruggleOverview(r.Context(), id.OwnerID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *APIHandler) CreateStruggleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.CreateStruggleRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	struggle, err := h.practice.CreateStruggle(r.Context(), id.OwnerID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struggle)
}

func (h *APIHandler) UpdateStruggleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.UpdateStruggleRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	struggle, err := h.practice.UpdateStruggle(r.Context(), id.OwnerID, mux.Vars(r)["id"], req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struggle)
}

// DeleteStruggleHandler 删除难点，连带其练习集、卡片和标签
func (h *APIHandler) DeleteStruggleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	if err := h.practice.DeleteStruggle(r.Context(), id.OwnerID, mux.Vars(r)["id"]); err != nil {
		handleError(w, r, err)
		return
	}
	deleted(w)
}
