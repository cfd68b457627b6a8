package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchroom/sketchroom/internal/v1/room"
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// fakeDirectory is a canned RoomDirectory.
type fakeDirectory struct {
	rooms map[types.RoomIDType]room.Summary
}

func (f *fakeDirectory) ListRooms() []room.Summary {
	out := make([]room.Summary, 0, len(f.rooms))
	for _, s := range f.rooms {
		out = append(out, s)
	}
	return out
}

func (f *fakeDirectory) GetRoom(id types.RoomIDType) (room.Summary, bool) {
	s, ok := f.rooms[id]
	return s, ok
}

func (f *fakeDirectory) RoomExists(id types.RoomIDType) bool {
	_, ok := f.rooms[id]
	return ok
}

func setupRouter(directory RoomDirectory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(directory).Register(router)
	return router
}

func doGet(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestListRooms(t *testing.T) {
	directory := &fakeDirectory{rooms: map[types.RoomIDType]room.Summary{
		"r1": {ID: "r1", Name: "doodles", UserCount: 2, CreatedAt: time.Now()},
	}}
	router := setupRouter(directory)

	w, body := doGet(t, router, "/api/rooms")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	rooms := body["rooms"].([]any)
	require.Len(t, rooms, 1)
	first := rooms[0].(map[string]any)
	assert.Equal(t, "r1", first["id"])
	assert.Equal(t, "doodles", first["name"])
	assert.Equal(t, float64(2), first["userCount"])
	assert.Contains(t, first, "createdAt")
}

func TestListRoomsEmpty(t *testing.T) {
	router := setupRouter(&fakeDirectory{rooms: map[types.RoomIDType]room.Summary{}})

	w, body := doGet(t, router, "/api/rooms")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["rooms"], 0)
}

func TestGetRoom(t *testing.T) {
	directory := &fakeDirectory{rooms: map[types.RoomIDType]room.Summary{
		"r1": {ID: "r1", Name: "doodles", UserCount: 1, CreatedAt: time.Now()},
	}}
	router := setupRouter(directory)

	w, body := doGet(t, router, "/api/rooms/r1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	got := body["room"].(map[string]any)
	assert.Equal(t, "r1", got["id"])
}

func TestGetRoomNotFound(t *testing.T) {
	router := setupRouter(&fakeDirectory{rooms: map[types.RoomIDType]room.Summary{}})

	w, body := doGet(t, router, "/api/rooms/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestRoomExists(t *testing.T) {
	directory := &fakeDirectory{rooms: map[types.RoomIDType]room.Summary{
		"r1": {ID: "r1", Name: "doodles"},
	}}
	router := setupRouter(directory)

	_, body := doGet(t, router, "/api/rooms/r1/exists")
	assert.Equal(t, true, body["exists"])

	_, body = doGet(t, router, "/api/rooms/nope/exists")
	assert.Equal(t, false, body["exists"])
}

func TestHealth(t *testing.T) {
	router := setupRouter(&fakeDirectory{rooms: map[types.RoomIDType]room.Summary{}})

	w, body := doGet(t, router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}
