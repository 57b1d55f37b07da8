package mailer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testConfig(key string) *models.Config {
	return &models.Config{
		AppName:        "Voluntariado",
		SendGridAPIKey: key,
		MailFromName:   "Voluntariado",
		MailFromEmail:  "no-reply@voluntariado.local",
	}
}

func TestNewFallsBackToLogMailer(t *testing.T) {
	log := logger.NewLogger("error", "text")
	assert.IsType(t, &LogMailer{}, New(testConfig(""), log))
	assert.IsType(t, &SendGridMailer{}, New(testConfig("SG.key"), log))
	assert.NoError(t, New(testConfig(""), log).Send(context.Background(), "a@b.cl", "A", "Hola", "x"))
}

func TestSendGridMailerPostsMessage(t *testing.T) {
	var body []byte
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ = io.ReadAll(r.Body)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	m := NewSendGridMailer(testConfig("SG.key"), logger.NewLogger("error", "text"))
	m.host = server.URL

	err := m.Send(context.Background(), "ana@example.com", "Ana Pérez", "Postulación aceptada", "Hola Ana\n\nTe esperamos <el sábado>")
	require.NoError(t, err)

	assert.Equal(t, "Bearer SG.key", auth)
	doc := gjson.ParseBytes(body)
	assert.Equal(t, "[Voluntariado] Postulación aceptada", doc.Get("personalizations.0.subject").String())
	assert.Equal(t, "ana@example.com", doc.Get("personalizations.0.to.0.email").String())
	assert.Equal(t, "no-reply@voluntariado.local", doc.Get("from.email").String())
	assert.Equal(t, "<p>Hola Ana</p><p>Te esperamos &lt;el sábado&gt;</p>", doc.Get(`content.#(type=="text/html").value`).String())
}

func TestSendGridMailerReportsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer server.Close()

	m := NewSendGridMailer(testConfig("SG.bad"), logger.NewLogger("error", "text"))
	m.host = server.URL

	err := m.Send(context.Background(), "ana@example.com", "Ana", "Hola", "x")
	assert.ErrorContains(t, err, "status 401")
}
