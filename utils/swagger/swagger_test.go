package swagger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/swaggo/swag"
)

type SwaggerTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (suite *SwaggerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
}

func TestSwaggerTestSuite(t *testing.T) {
	suite.Run(t, new(SwaggerTestSuite))
}

func (suite *SwaggerTestSuite) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (suite *SwaggerTestSuite) TestServeSwaggerUI() {
	suite.router.GET("/swagger", ServeSwaggerUI(SwaggerConfig{
		Title:         "Voluntariado API",
		SwaggerDocURL: "/swagger/doc.json",
		AuthURL:       "/api/auth/login",
	}))

	w := suite.get("/swagger")

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(suite.T(), body, "<title>Voluntariado API</title>")
	assert.Contains(suite.T(), body, `"/swagger/doc.json"`)
	assert.Contains(suite.T(), body, `"/api/auth/login"`)
	assert.Contains(suite.T(), body, "swagger-ui-bundle.js")
	assert.Contains(suite.T(), body, "performAuthentication")
}

func (suite *SwaggerTestSuite) TestServeSwaggerUIWithDefaults() {
	suite.router.GET("/swagger", ServeSwaggerUI(SwaggerConfig{}))

	body := suite.get("/swagger").Body.String()

	assert.Contains(suite.T(), body, "<title>API Documentation</title>")
	assert.Contains(suite.T(), body, `"/swagger/doc.json"`)
	assert.Contains(suite.T(), body, `"/api/auth/login"`)
}

func (suite *SwaggerTestSuite) TestServeSwaggerUIEscapesTitle() {
	suite.router.GET("/swagger", ServeSwaggerUI(SwaggerConfig{Title: "<script>alert(1)</script>"}))

	body := suite.get("/swagger").Body.String()

	assert.NotContains(suite.T(), body, "<script>alert(1)</script>")
	assert.Contains(suite.T(), body, "&lt;script&gt;")
}

type staticDoc string

func (d staticDoc) ReadDoc() string { return string(d) }

func (suite *SwaggerTestSuite) TestServeDoc() {
	swag.Register("swagger-test", staticDoc(`{"swagger":"2.0"}`))
	suite.router.GET("/doc.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger-test")
		if assert.NoError(suite.T(), err) {
			c.String(http.StatusOK, doc)
		}
	})

	assert.JSONEq(suite.T(), `{"swagger":"2.0"}`, suite.get("/doc.json").Body.String())
}
