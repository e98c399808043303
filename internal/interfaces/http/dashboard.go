package http

import (
	_ "embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resilient-wa-agent/internal/infrastructure"
)

//go:embed dashboard.html
var dashboardHTML string

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

type dashboardData struct {
	PhoneNumberID string
	TemplateCount int
	ProjectCount  int
	Email         string
	Website       string
	Stats         infrastructure.Snapshot
	LastUpdated   string
}

// Dashboard renders the status page: integration info, knowledge base
// summary, contact block and live reply counters.
func (h *Handler) Dashboard(c *gin.Context) {
	kb := h.registry.Knowledge()
	data := dashboardData{
		PhoneNumberID: h.phoneNumberID,
		TemplateCount: h.registry.Count(),
		ProjectCount:  len(kb.Projects),
		Email:         kb.Contact.Email,
		Website:       kb.Contact.Website,
		Stats:         h.stats.Snapshot(),
		LastUpdated:   time.Now().Format("2006-01-02 15:04:05"),
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(c.Writer, data); err != nil {
		h.logger.Error("render dashboard", zap.Error(err))
	}
}
