package controller

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closeNotifyingRecorder adds the CloseNotifier gin's Stream relies on
type closeNotifyingRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyingRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func (suite *APITestSuite) TestRealtimeStream() {
	ana := suite.registerVolunteer("ana@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/realtime/stream?access_token="+ana.AccessToken, nil)
	w := &closeNotifyingRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		suite.router.ServeHTTP(w, req)
	}()

	require.Eventually(suite.T(), func() bool { return suite.hub.IsOnline(ana.User.ID) }, 2*time.Second, 10*time.Millisecond)
	assert.True(suite.T(), suite.hub.Publish(ana.User.ID, "notification", map[string]string{"titulo": "Hola"}))

	// dropping every stream ends the handler after the queued event is written
	suite.hub.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		suite.T().Fatal("stream did not finish")
	}

	body := w.Body.String()
	assert.Equal(suite.T(), "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(suite.T(), body, "event:connected")
	assert.Contains(suite.T(), body, "event:notification")
	assert.Contains(suite.T(), body, `"titulo":"Hola"`)
	assert.False(suite.T(), suite.hub.IsOnline(ana.User.ID))
}

func (suite *APITestSuite) TestRealtimeStreamRequiresToken() {
	w, _ := suite.do(http.MethodGet, "/api/realtime/stream", "", nil)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}
