// internal/handlers/session_server.go
package handlers

import (
	"math/rand"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/auth"
	"github.com/jason-s-yu/suitmatch/internal/game"
	"github.com/jason-s-yu/suitmatch/internal/middleware"
	"github.com/sirupsen/logrus"
)

// SessionServer holds the live tables and everything needed to create and serve them.
type SessionServer struct {
	Store  *game.SessionStore
	Signer *auth.Signer
	Logger logrus.FieldLogger

	DefaultRules game.HouseRules

	// Wired into every new table.
	Recorder        game.ActionRecorder
	OnSessionEnd    game.OnSessionEndFunc
	CheckInvariants bool

	// ExposeDeck includes the deck order in snapshots. For debugging only.
	ExposeDeck bool

	hub *hub

	seedMu sync.Mutex
	seeds  *rand.Rand
}

// NewSessionServer builds a server. A non-zero seed makes every dealt session reproducible.
func NewSessionServer(signer *auth.Signer, logger logrus.FieldLogger, seed int64) *SessionServer {
	return &SessionServer{
		Store:        game.NewSessionStore(),
		Signer:       signer,
		Logger:       logger,
		DefaultRules: game.DefaultHouseRules(),
		hub:          newHub(logger),
		seeds:        game.NewRand(seed),
	}
}

// NewTable deals a session for owner, wires its hooks and adds it to the store.
func (gs *SessionServer) NewTable(owner uuid.UUID, rules game.HouseRules) (*game.Table, error) {
	gs.seedMu.Lock()
	seed := gs.seeds.Int63()
	gs.seedMu.Unlock()

	t, err := game.NewTable(owner, rules, rand.New(rand.NewSource(seed)), gs.Logger)
	if err != nil {
		return nil, err
	}
	t.BroadcastFn = gs.hub.broadcastFunc(t.ID)
	t.Recorder = gs.Recorder
	t.OnSessionEnd = gs.OnSessionEnd
	t.CheckInvariants = gs.CheckInvariants
	t.Open()

	gs.Store.AddTable(t)
	return t, nil
}

// Routes registers the session API on mux, wrapped in request logging.
func (gs *SessionServer) Routes(mux *http.ServeMux) {
	logged := middleware.LogMiddleware(gs.Logger)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, logged(h))
	}

	handle("GET /ping", PingHandler)
	handle("POST /session/create", CreateSessionHandler(gs))
	handle("GET /session", ListSessionsHandler(gs))
	handle("GET /session/{id}", GetSessionHandler(gs))
	handle("GET /session/{id}/tracker", TrackerHandler(gs))
	handle("POST /session/{id}/play", PlayHandler(gs))
	handle("POST /session/{id}/reshuffle", ReshuffleHandler(gs))
	handle("POST /session/{id}/end", EndHandler(gs))
	handle("GET /ws/session/{id}", SessionWSHandler(gs))
}

// PingHandler answers liveness checks.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
