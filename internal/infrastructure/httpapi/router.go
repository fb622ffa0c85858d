package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(handler *Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(recoverMiddleware)
	router.Use(loggingMiddleware)

	router.Get("/healthz", handler.healthz)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/v1", func(r chi.Router) {
		r.Get("/qualification-types", handler.listQualificationTypes)

		r.Route("/qualifications", func(r chi.Router) {
			r.Get("/", handler.listQualifications)
			r.Post("/", handler.createQualification)
			r.Get("/stats", handler.stats)
			r.Post("/recalculate", handler.recalculate)
			r.Post("/bulk-update", handler.bulkUpdate)
			r.Get("/{id}", handler.getQualification)
			r.Post("/{id}/complete", handler.completeQualification)
			r.Get("/{id}/history", handler.qualificationHistory)
		})

		r.Get("/alerts", handler.listAlerts)
		r.Post("/alerts/{id}/acknowledge", handler.acknowledgeAlert)

		r.Get("/cars/{car_id}/qualification-priority", handler.carPriority)
	})

	return router
}
