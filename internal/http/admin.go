package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiendatech/storefront/internal/auth"
)

// AdminController serves the browser-rendered admin pages. Everything under
// /admin except the login page is covered by the authorization gate, so
// these handlers only run for authenticated admins.
type AdminController struct{}

func NewAdminController() *AdminController {
	return &AdminController{}
}

// RegisterRoutes registers the admin page routes.
func (ad *AdminController) RegisterRoutes(router *gin.Engine) {
	router.GET("/admin", ad.Root)
	router.GET("/admin/login", ad.LoginPage)
	router.GET("/admin/dashboard", ad.Dashboard)
}

// Root redirects the bare /admin path to the dashboard; the gate has
// already denied anonymous requests by this point.
func (ad *AdminController) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// LoginPage renders the login form. Reachable without a token; the gate
// redirects already-authenticated admins to the dashboard before this runs.
func (ad *AdminController) LoginPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginPageHTML))
}

// Dashboard renders the admin dashboard shell.
func (ad *AdminController) Dashboard(c *gin.Context) {
	page := fmt.Sprintf(dashboardHTML, auth.GetUserID(c))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

const loginPageHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Admin Login</title></head>
<body>
<main id="admin-login">
  <h1>Admin Login</h1>
  <form method="post" action="/api/auth/login" id="login-form">
    <label>Email <input type="email" name="email" required></label>
    <label>Password <input type="password" name="password" required></label>
    <button type="submit">Sign in</button>
  </form>
</main>
</body>
</html>`

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Admin Dashboard</title></head>
<body>
<main id="admin-dashboard" data-user-id="%d">
  <h1>Dashboard</h1>
  <nav>
    <a href="/api/admin/products">Products</a>
    <a href="/api/auth/logout">Log out</a>
  </nav>
</main>
</body>
</html>`
