package http

import (
	"net/http"

	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/http/handler"
	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	appointmentHandler *handler.AppointmentHandler
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(appointmentHandler *handler.AppointmentHandler, corsMiddleware *middleware.CORSMiddleware) *Router {
	return &Router{
		router:             mux.NewRouter(),
		appointmentHandler: appointmentHandler,
		corsMiddleware:     corsMiddleware,
	}
}

// Setup registers the appointment routes. Role enforcement happens at the
// API gateway in front of this service.
func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	appointments := api.PathPrefix("/appointments").Subrouter()

	appointments.HandleFunc("", r.appointmentHandler.Book).Methods(http.MethodPost)
	appointments.HandleFunc("/search", r.appointmentHandler.Search).Methods(http.MethodGet)

	appointments.HandleFunc("/doctor/{doctorId}/upcoming", r.appointmentHandler.UpcomingForDoctor).Methods(http.MethodGet)
	appointments.HandleFunc("/doctor/{doctorId}/past", r.appointmentHandler.PastForDoctor).Methods(http.MethodGet)
	appointments.HandleFunc("/patient/{patientId}/past", r.appointmentHandler.PastForPatient).Methods(http.MethodGet)
	appointments.HandleFunc("/patient/{patientId}", r.appointmentHandler.ForPatient).Methods(http.MethodGet)

	appointments.HandleFunc("/{id}/confirm", r.appointmentHandler.Confirm).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}/reject", r.appointmentHandler.Reject).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}/reschedule", r.appointmentHandler.Reschedule).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}/complete", r.appointmentHandler.Complete).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}", r.appointmentHandler.GetByID).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
