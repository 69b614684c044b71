package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/librarian/internal/activity"
	"github.com/mrlokans/librarian/internal/database"
	activityRepo "github.com/mrlokans/librarian/internal/database/activity"
	"github.com/mrlokans/librarian/internal/http"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/metrics"
	"github.com/mrlokans/librarian/internal/seed"
	"github.com/mrlokans/librarian/internal/tasks"
)

// =============================================================================
// Pages
// =============================================================================

var _ http.Library = (*library.Service)(nil)
var _ http.ActivityReader = (*activity.Service)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)

// =============================================================================
// Library Hooks
// =============================================================================

var _ library.ActivityRecorder = (*activity.Service)(nil)
var _ library.Counters = metrics.Counters{}
var _ activity.EventStore = (*activityRepo.Repository)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.OverdueLister = (*library.Service)(nil)
var _ tasks.OverdueRecorder = (*activity.Service)(nil)
var _ tasks.ActivityCleaner = (*activity.Service)(nil)
var _ seed.Writer = (*library.Service)(nil)
