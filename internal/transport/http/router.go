package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"quizcraft-service/internal/app"
)

// Container holds the dependencies the router wires together.
type Container struct {
	Auth      *Auth
	Authoring *app.AuthoringService
	Hosting   *app.HostingService
	Taking    *app.TakingService
	Generator *app.GenerationService
	Views     app.TakeViewSource
}

// NewRouter builds the REST surface.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	quizHandler := NewQuizHandler(c.Authoring)
	hostHandler := NewHostHandler(c.Hosting)
	takeHandler := NewTakeHandler(c.Views, c.Taking)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Quiz API running"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// Authoring and hosting require an authenticated owner.
	authed := r.NewRoute().Subrouter()
	authed.Use(c.Auth.Require)

	authed.HandleFunc("/quiz", quizHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/quiz", quizHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/quiz/{id}", quizHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/quiz/{id}", quizHandler.Update).Methods(http.MethodPut)
	authed.HandleFunc("/quiz/{id}", quizHandler.Delete).Methods(http.MethodDelete)

	authed.HandleFunc("/host", hostHandler.Host).Methods(http.MethodPost)
	authed.HandleFunc("/host/{quizId}", hostHandler.GetActive).Methods(http.MethodGet)
	authed.HandleFunc("/host/{sessionId}/stop", hostHandler.Stop).Methods(http.MethodPost)
	authed.HandleFunc("/host/{sessionId}/results", hostHandler.Results).Methods(http.MethodGet)

	if c.Generator != nil {
		generateHandler := NewGenerateHandler(c.Generator)
		authed.HandleFunc("/api/generate-quiz", generateHandler.Generate).Methods(http.MethodPost)
	}

	// Take routes accept anonymous takers identified by display name.
	taking := r.NewRoute().Subrouter()
	taking.Use(c.Auth.Optional)

	taking.HandleFunc("/takequiz/{sessionId}", takeHandler.Get).Methods(http.MethodGet)
	taking.HandleFunc("/takequiz/{sessionId}/check", takeHandler.Check).Methods(http.MethodGet)
	taking.HandleFunc("/takequiz/{sessionId}/submit", takeHandler.Submit).Methods(http.MethodPost)

	return r
}
