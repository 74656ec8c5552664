package server

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"
)

// NewRouter 注册所有 API 路由；limiter 为 nil 时不限流
func NewRouter(h *APIHandler, limiter *RateLimiter) http.Handler {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(accessLogMiddleware)

	router.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(h.AuthMiddleware)
	if limiter != nil {
		api.Use(limiter.Middleware)
	}
	// OPTIONS 预检在 corsMiddleware 中直接返回，这里只需让路由能匹配
	api.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	api.HandleFunc("/auth/allowlist-check", h.AllowlistCheckHandler).Methods(http.MethodPost)
	api.HandleFunc("/bootstrap", h.BootstrapHandler).Methods(http.MethodGet)

	api.HandleFunc("/struggles", h.ListStrugglesHandler).Methods(http.MethodGet)
	api.HandleFunc("/struggles", h.CreateStruggleHandler).Methods(http.MethodPost)
	api.HandleFunc("/struggles/overview", h.StruggleOverviewHandler).Methods(http.MethodGet)
	api.HandleFunc("/struggles/{id}", h.UpdateStruggleHandler).Methods(http.MethodPatch)
	api.HandleFunc("/struggles/{id}", h.DeleteStruggleHandler).Methods(http.MethodDelete)

	api.HandleFunc("/practice-sets", h.ListPracticeSetsHandler).Methods(http.MethodGet)
	api.HandleFunc("/practice-sets", h.CreatePracticeSetHandler).Methods(http.MethodPost)
	api.HandleFunc("/practice-sets/{setId}", h.GetPracticeSetHandler).Methods(http.MethodGet)
	api.HandleFunc("/practice-sets/{setId}", h.UpdatePracticeSetHandler).Methods(http.MethodPatch)
	api.HandleFunc("/practice-sets/{setId}", h.DeletePracticeSetHandler).Methods(http.MethodDelete)
	api.HandleFunc("/practice-sets/{setId}/print-data", h.PrintDataHandler).Methods(http.MethodGet)
	api.HandleFunc("/practice-sets/{setId}/preview", h.PreviewHandler).Methods(http.MethodGet)
	api.HandleFunc("/practice-sets/{setId}/cards/bulk", h.BulkCardsHandler).Methods(http.MethodPost)

	api.HandleFunc("/practice-cards", h.CreateCardHandler).Methods(http.MethodPost)

	api.HandleFunc("/recordings", h.ListRecordingsHandler).Methods(http.MethodGet)
	api.HandleFunc("/recordings", h.CreateRecordingHandler).Methods(http.MethodPost)
	api.HandleFunc("/recordings/presign-upload", h.PresignUploadHandler).Methods(http.MethodPost)
	api.HandleFunc("/recordings/complete-upload", h.CompleteUploadHandler).Methods(http.MethodPost)
	api.HandleFunc("/recordings/{recordingId}", h.GetRecordingHandler).Methods(http.MethodGet)
	api.HandleFunc("/recordings/{recordingId}", h.UpdateRecordingHandler).Methods(http.MethodPatch)
	api.HandleFunc("/recordings/{recordingId}", h.DeleteRecordingHandler).Methods(http.MethodDelete)
	api.HandleFunc("/recordings/{recordingId}/presign-download", h.PresignDownloadHandler).Methods(http.MethodGet)
	api.HandleFunc("/recordings/{recordingId}/annotations", h.ListAnnotationsHandler).Methods(http.MethodGet)
	api.HandleFunc("/recordings/{recordingId}/annotations", h.CreateAnnotationHandler).Methods(http.MethodPost)
	api.HandleFunc("/recordings/{recordingId}/annotations", h.UpdateAnnotationHandler).Methods(http.MethodPatch)
	api.HandleFunc("/recordings/{recordingId}/annotations", h.DeleteAnnotationHandler).Methods(http.MethodDelete)

	// sentryhttp 重新抛出 panic，由最外层的 recoverMiddleware 统一处理
	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
	return recoverMiddleware(sentryHandler.Handle(router))
}
