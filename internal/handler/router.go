package handler

import "github.com/gin-gonic/gin"

// RegisterCalendarRoutes mounts the calendar endpoints on rg. downloadRoute is
// the path of the calendar file endpoint relative to rg.
func RegisterCalendarRoutes(rg *gin.RouterGroup, h *CalendarHandler, downloadRoute string) {
	if downloadRoute == "" {
		downloadRoute = "/calendar/ics"
	}
	rg.GET("/calendar/links", h.Links)
	rg.POST("/calendar/links", h.CreateLinks)
	rg.GET("/calendar/settings", h.Settings)
	rg.GET(downloadRoute, h.Download)
}

// RegisterOpsRoutes mounts health, readiness and metrics endpoints on r.
func RegisterOpsRoutes(r gin.IRoutes, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	r.GET("/metrics/summary", h.Summary)
}
