package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/tasks"
)

type fakeQueue struct {
	enqueued []backlite.Task
	err      error
	status   backlite.TaskStatus
}

func (f *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.enqueued = append(f.enqueued, task)
	return "task-1", nil
}

func (f *fakeQueue) Status(context.Context, string) (backlite.TaskStatus, error) {
	return f.status, f.err
}

func setupTasksRouter(queue TaskQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewTasksController(queue, 30)

	router := gin.New()
	router.GET("/api/tasks/types", controller.ListTaskTypes)
	router.GET("/api/tasks/:id", controller.GetTaskStatus)
	router.POST("/api/tasks/:type/run", controller.RunTask)
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestTasksController_RunTask(t *testing.T) {
	t.Run("enqueues an overdue scan", func(t *testing.T) {
		queue := &fakeQueue{}
		w := serve(setupTasksRouter(queue), http.MethodPost, "/api/tasks/scan_overdue_loans/run")

		assert.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, queue.enqueued, 1)
		assert.IsType(t, tasks.ScanOverdueLoansTask{}, queue.enqueued[0])

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "task-1", body["task_id"])
	})

	t.Run("passes the retention period to cleanup", func(t *testing.T) {
		queue := &fakeQueue{}
		w := serve(setupTasksRouter(queue), http.MethodPost, "/api/tasks/cleanup_activity_events/run")

		assert.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, queue.enqueued, 1)
		assert.Equal(t, tasks.CleanupActivityTask{RetentionDays: 30}, queue.enqueued[0])
	})

	t.Run("rejects unknown task types", func(t *testing.T) {
		queue := &fakeQueue{}
		w := serve(setupTasksRouter(queue), http.MethodPost, "/api/tasks/reindex/run")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unknown task type: reindex")
		assert.Empty(t, queue.enqueued)
	})

	t.Run("reports queue failures", func(t *testing.T) {
		queue := &fakeQueue{err: errors.New("queue closed")}
		w := serve(setupTasksRouter(queue), http.MethodPost, "/api/tasks/scan_overdue_loans/run")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	queue := &fakeQueue{status: backlite.TaskStatusSuccess}
	w := serve(setupTasksRouter(queue), http.MethodGet, "/api/tasks/task-1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"task-1","status":"success"}`, w.Body.String())
}

func TestTasksController_ListTaskTypes(t *testing.T) {
	w := serve(setupTasksRouter(&fakeQueue{}), http.MethodGet, "/api/tasks/types")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tasks.QueueScanOverdueLoans)
	assert.Contains(t, w.Body.String(), tasks.QueueCleanupActivity)
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "pending", taskStatusToString(backlite.TaskStatusPending))
	assert.Equal(t, "running", taskStatusToString(backlite.TaskStatusRunning))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", taskStatusToString(backlite.TaskStatusNotFound))
}
