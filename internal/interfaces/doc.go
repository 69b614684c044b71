// Package interfaces documents the abstractions that connect the packages
// of the library manager and checks at compile time that the concrete
// types still satisfy them.
//
// # Interface Categories
//
// ## Page Interfaces (internal/http/stores.go)
//
//   - BookService, PatronService, LoanService, DashboardReader: the reads
//     and writes behind the HTML pages, combined as Library
//   - ActivityReader: the /activity page
//   - Pinger: the /health check
//   - TaskQueue: the /api/tasks endpoints
//
// All library interfaces are served by *library.Service.
//
// ## Library Hooks (internal/library/service.go)
//
//   - ActivityRecorder: told about every write, served by *activity.Service
//   - Counters: loan lifecycle counts, served by metrics.Counters
//
// ## Background Work (internal/tasks)
//
//   - OverdueLister: open loans past their return date
//   - OverdueRecorder: records each overdue loan once
//   - ActivityCleaner: deletes old activity events
//
// # Adding a New Page
//
//  1. Add the query or write to library.Service, returning a view type
//     from internal/library/views.go.
//
//  2. Declare the operation on a narrow interface in internal/http/stores.go
//     and write a controller that embeds pages:
//
//     type ShelvesController struct {
//         pages
//         shelves ShelfService
//     }
//
//  3. Add the template to web/templates and register the route in router.go.
//
// # Adding a New Background Task
//
//  1. Define the task type and its QueueConfig in internal/tasks.
//
//  2. Register its queue in entrypoint.go and, if it runs periodically,
//     add a scheduler.Job for it in entrypoint/jobs.go.
//
// # Compile-Time Interface Checks
//
// Implementations are checked here so a missing method fails the build
// rather than a request:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
