package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/paddle-party/util"
	"github.com/judgegodwins/paddle-party/ws"
	"github.com/stretchr/testify/require"
)

var testServer *Server

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	config := &util.Config{
		Port:           "5000",
		Host:           "127.0.0.1",
		AllowedOrigins: []string{"*"},
		Authority:      util.AuthorityClient,
		TickRate:       60,
		EgressBuffer:   64,
	}

	manager := ws.NewManager(ws.ManagerConfig{
		Config: config,
		Logger: log.New(io.Discard, "", 0),
	})
	testServer = NewServer(config, manager)

	code := m.Run()
	manager.Close()
	os.Exit(code)
}

func TestLiveness(t *testing.T) {
	response := serve(t, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, response.Code)
	requireBodyMatches(t, response, map[string]string{"name": "bonjour"})
}

func TestAllocateGameID(t *testing.T) {
	response := serve(t, http.MethodGet, "/gameID")
	require.Equal(t, http.StatusOK, response.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	require.Regexp(t, `^[A-Z0-9]{6}$`, body["gameID"])
}

func TestCheckRoom(t *testing.T) {
	t.Run("unknown room", func(t *testing.T) {
		response := serve(t, http.MethodGet, "/rooms/NOPE00")

		require.Equal(t, http.StatusNotFound, response.Code)
		requireBodyMatches(t, response, map[string]string{"status": "error", "message": "room not found"})
	})

	t.Run("existing room", func(t *testing.T) {
		registry := testServer.wsManager.Registry()
		registry.Join("ROOM42", "c1")
		registry.Join("ROOM42", "c2")
		t.Cleanup(func() {
			registry.Leave("c1")
			registry.Leave("c2")
		})

		response := serve(t, http.MethodGet, "/rooms/room42")
		require.Equal(t, http.StatusOK, response.Code)

		var body struct {
			Status string `json:"status"`
			Data   struct {
				ID        string `json:"id"`
				Members   int    `json:"members"`
				Simulated bool   `json:"simulated"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))

		require.Equal(t, "success", body.Status)
		require.Equal(t, "ROOM42", body.Data.ID)
		require.Equal(t, 2, body.Data.Members)
		require.False(t, body.Data.Simulated)
	})

	t.Run("invalid code", func(t *testing.T) {
		response := serve(t, http.MethodGet, "/rooms/not-a-code")
		require.Equal(t, http.StatusUnprocessableEntity, response.Code)
	})
}

func TestCORS(t *testing.T) {
	request, err := http.NewRequest(http.MethodGet, "/gameID", nil)
	require.NoError(t, err)
	request.Header.Set("Origin", "http://phone.local:5173")

	response := httptest.NewRecorder()
	testServer.Handler().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)
	require.Equal(t, "*", response.Header().Get("Access-Control-Allow-Origin"))
}

func TestNoRoute(t *testing.T) {
	response := serve(t, http.MethodGet, "/missing/route")
	require.Equal(t, http.StatusNotFound, response.Code)
}

func serve(t *testing.T, method, url string) *httptest.ResponseRecorder {
	t.Helper()

	request, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)

	response := httptest.NewRecorder()
	testServer.Handler().ServeHTTP(response, request)

	return response
}

func requireBodyMatches[D any](t *testing.T, response *httptest.ResponseRecorder, value D) {
	t.Helper()

	var got D
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &got))
	require.Equal(t, value, got)
}
