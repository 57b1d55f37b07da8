package swagger

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
)

type SwaggerConfig struct {
	Title         string
	SwaggerDocURL string
	AuthURL       string
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.17.14/swagger-ui.css" />
  <style>
    body { margin: 0; background: #fafafa; }
    .login-form-section {
      display: flex; gap: 8px; align-items: center;
      padding: 12px 20px; background: #f8f9fa; border-bottom: 1px solid #dee2e6;
      font-family: sans-serif; font-size: 13px;
    }
    .login-form-section input { padding: 6px 8px; border: 1px solid #d9d9d9; border-radius: 4px; }
    .login-form-button { padding: 6px 14px; background: #49cc90; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
    .login-form-button:disabled { background: #9ad9bb; cursor: wait; }
  </style>
</head>
<body>
  <div class="login-form-section">
    <strong>Login</strong>
    <input id="login-email" type="email" placeholder="email" autocomplete="username" />
    <input id="login-password" type="password" placeholder="password" autocomplete="current-password" />
    <button class="login-form-button" onclick="performAuthentication()">Login</button>
  </div>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5.17.14/swagger-ui-bundle.js"></script>
  <script>
    window.AUTH_URL = {{.AuthURL}};
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: {{.SwaggerDocURL}},
        dom_id: '#swagger-ui',
        deepLinking: true,
        persistAuthorization: true,
      });
    };

    window.performAuthentication = async function() {
      const email = document.getElementById('login-email').value.trim();
      const password = document.getElementById('login-password').value;
      const button = document.querySelector('.login-form-button');
      if (!email || !password) {
        alert('Please enter both email and password');
        return;
      }

      button.disabled = true;
      try {
        const response = await fetch(window.AUTH_URL, {
          method: 'POST',
          headers: { 'Content-Type': 'application/json' },
          body: JSON.stringify({ email: email, password: password }),
        });
        const data = await response.json();
        if (!response.ok || !data.success) {
          throw new Error(data.message || 'Authentication failed');
        }
        const accessToken = data.data && data.data.accessToken;
        if (!accessToken) {
          throw new Error('No access token received');
        }
        window.ui.preauthorizeApiKey('BearerAuth', 'Bearer ' + accessToken);
        alert('Authentication successful, the bearer token is applied to every request.');
      } catch (error) {
        alert('Authentication failed: ' + error.message);
      } finally {
        button.disabled = false;
      }
    };
  </script>
</body>
</html>`

// ServeSwaggerUI serves the Swagger UI with a login form that authorizes the session
func ServeSwaggerUI(config SwaggerConfig) gin.HandlerFunc {
	if config.Title == "" {
		config.Title = "API Documentation"
	}
	if config.SwaggerDocURL == "" {
		config.SwaggerDocURL = "/swagger/doc.json"
	}
	if config.AuthURL == "" {
		config.AuthURL = "/api/auth/login"
	}

	tmpl := template.Must(template.New("swagger").Parse(swaggerHTML))

	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(c.Writer, config); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render Swagger UI"})
		}
	}
}

// ServeDoc serves the OpenAPI document registered with swag
func ServeDoc() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "API documentation is not registered"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}
