package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/paddle-party/util"
	"github.com/judgegodwins/paddle-party/ws"
	"github.com/rs/cors"
)

type Server struct {
	config    *util.Config
	wsManager *ws.Manager
	router    *gin.Engine
	http      *http.Server
}

func NewServer(config *util.Config, wsManager *ws.Manager) *Server {
	router := gin.Default()

	server := &Server{
		config:    config,
		wsManager: wsManager,
		router:    router,
	}

	router.GET("/", server.Liveness)
	router.GET("/gameID", server.AllocateGameID)
	router.GET("/rooms/:id", server.CheckRoom)
	router.GET("/ws", wsManager.ServeWS)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse("not found"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	server.http = &http.Server{
		Addr:              config.Address(),
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// Handler exposes the full handler chain, CORS included.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes the websocket relay.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsManager.Close()
	return s.http.Shutdown(ctx)
}
