package server

import (
	"net/http"

	"Articulate/core/practice"
	"Articulate/model"

	"github.com/gorilla/mux"
)

// ListPracticeSetsHandler 支持 section_type 和 struggle_id 过滤
func (h *APIHandler) ListPracticeSetsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := model.PracticeSetFilter{
		SectionType: q.Get("section_type"),
		StruggleID:  q.Get("struggle_id"),
	}
	sets, err := h.practice.ListSets(r.Context(), id.OwnerID, filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *APIHandler) CreatePracticeSetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.CreatePracticeSetRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	set, err := h.practice.CreateSet(r.Context(), id.OwnerID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

// GetPracticeSetHandler 返回练习集、所属难点、卡片及标签
func (h *APIHandler) GetPracticeSetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	details, err := h.practice.SetDetails(r.Context(), id.OwnerID, mux.Vars(r)["setId"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *APIHandler) UpdatePracticeSetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.UpdatePracticeSetRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	set, err := h.practice.UpdateSet(r.Context(), id.OwnerID, mux.Vars(r)["setId"], req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *APIHandler) DeletePracticeSetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	if err := h.practice.DeleteSet(r.Context(), id.OwnerID, mux.Vars(r)["setId"]); err != nil {
		handleError(w, r, err)
		return
	}
	deleted(w)
}

func (h *APIHandler) PrintDataHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	data, err := h.practice.PrintData(r.Context(), id.OwnerID, mux.Vars(r)["setId"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// PreviewHandler 返回前 limit 张卡片和总数
func (h *APIHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r, practice.DefaultPreviewLimit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	preview, err := h.practice.Preview(r.Context(), id.OwnerID, mux.Vars(r)["setId"], limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// BulkCardsHandler 批量插入卡片，replaceExisting 时先清空
func (h *APIHandler) BulkCardsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.BulkCardsRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	result, err := h.practice.BulkCreateCards(r.Context(), id.OwnerID, mux.Vars(r)["setId"], req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *APIHandler) CreateCardHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.CreateCardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := h.practice.CreateCard(r.Context(), id.OwnerID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}
