package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionDecided(t *testing.T) {
	r := NewRecorder()
	r.ActionDecided("move_card", true)
	r.ActionDecided("move_card", true)
	r.ActionDecided("move_card", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.actions.WithLabelValues("move_card", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.actions.WithLabelValues("move_card", "denied")))
}

func TestHandlerFault(t *testing.T) {
	r := NewRecorder()
	r.HandlerFault("Angry Cat", "end_turn")
	r.HandlerFault("Zookeeper", "end_turn")

	// Card names stay out of the label set.
	assert.Equal(t, 2.0, testutil.ToFloat64(r.faults.WithLabelValues("end_turn")))
}

func TestRoomGauge(t *testing.T) {
	r := NewRecorder()
	r.RoomOpened()
	r.RoomOpened()
	r.RoomClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(r.activeRooms))
}

func TestHandlerServesRegistry(t *testing.T) {
	r := NewRecorder()
	r.ActionDecided("end_turn", true)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "houserules_actions_total")
}
