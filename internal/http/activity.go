package http

import (
	"github.com/gin-gonic/gin"
)

const recentActivityLimit = 100

// ActivityController lists recent writes and overdue detections.
type ActivityController struct {
	pages
	activity ActivityReader
}

func NewActivityController(activity ActivityReader, p pages) *ActivityController {
	return &ActivityController{pages: p, activity: activity}
}

// Recent handles GET /activity
func (ac *ActivityController) Recent(c *gin.Context) {
	events, err := ac.activity.Recent(c.Request.Context(), recentActivityLimit)
	if err != nil {
		ac.respondError(c, err, "recent activity")
		return
	}
	ac.render(c, "activity", "Activity", "activity", events)
}
