package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountgate/accountgate/pkg/middleware"
)

// DashboardHandler serves the view payloads behind the dashboard route
// tree. The frontend renders these; the gateway only decides who gets
// which view.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

// Register mounts the dashboard views on an AuthGate-guarded group. The
// index is open to both roles, the profile page to users only.
func (h *DashboardHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", middleware.RoleGate("user", "admin"), h.Index)
	rg.GET("/profile", middleware.RoleGate("user"), h.ProfilePage)
}

func (h *DashboardHandler) Index(c *gin.Context) {
	u, _ := middleware.Profile(c)
	view := "user"
	if u.Roles == "admin" {
		view = "admin"
	}
	c.JSON(http.StatusOK, gin.H{"view": view, "data": u})
}

func (h *DashboardHandler) ProfilePage(c *gin.Context) {
	u, _ := middleware.Profile(c)
	c.JSON(http.StatusOK, gin.H{"view": "profile", "data": u})
}
