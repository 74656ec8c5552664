package server

import (
	"net/http"

	"Articulate/model"

	"github.com/gorilla/mux"
)

func (h *APIHandler) ListRecordingsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	recordings, err := h.recordings.List(r.Context(), id.OwnerID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordings)
}

// CreateRecordingHandler 客户端已自行上传对象，只登记元数据
func (h *APIHandler) CreateRecordingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.CreateRecordingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	rec, err := h.recordings.Create(r.Context(), id.OwnerID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// PresignUploadHandler 生成对象键和上传 URL
func (h *APIHandler) PresignUploadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.PresignUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	resp, err := h.recordings.PresignUpload(r.Context(), id.OwnerID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) CompleteUploadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.CompleteUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	rec, err := h.recordings.CompleteUpload(r.Context(), id.OwnerID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GetRecordingHandler 返回录音及其全部标注
func (h *APIHandler) GetRecordingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	details, err := h.recordings.Get(r.Context(), id.OwnerID, mux.Vars(r)["recordingId"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *APIHandler) UpdateRecordingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.UpdateRecordingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	rec, err := h.recordings.Update(r.Context(), id.OwnerID, mux.Vars(r)["recordingId"], req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecordingHandler 删除数据库记录；对象删除失败时 objectDeleted 为 false
func (h *APIHandler) DeleteRecordingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	result, err := h.recordings.Delete(r.Context(), id.OwnerID, mux.Vars(r)["recordingId"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) PresignDownloadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	resp, err := h.recordings.DownloadURL(r.Context(), id.OwnerID, mux.Vars(r)["recordingId"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) ListAnnotationsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	annotations, err := h.recordings.ListAnnotations(r.Context(), id.OwnerID, mux.Vars(r)["recordingId"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, annotations)
}

func (h *APIHandler) CreateAnnotationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.CreateAnnotationRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	a, err := h.recordings.CreateAnnotation(r.Context(), id.OwnerID, mux.Vars(r)["recordingId"], req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// UpdateAnnotationHandler 标注 id 通过 ?annotationId 传入
func (h *APIHandler) UpdateAnnotationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	var req model.UpdateAnnotationRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	a, err := h.recordings.UpdateAnnotation(r.Context(), id.OwnerID, mux.Vars(r)["recordingId"],
		r.URL.Query().Get("annotationId"), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *APIHandler) DeleteAnnotationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	err := h.recordings.DeleteAnnotation(r.Context(), id.OwnerID, mux.Vars(r)["recordingId"],
		r.URL.Query().Get("annotationId"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	deleted(w)
}
