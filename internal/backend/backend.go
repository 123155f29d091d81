package backend

// Backend runs queued WfcTasks and delivers their results, in the order
// they complete, whether or not the solve itself succeeded — QueueTask
// never blocks on a task's outcome.
type Backend interface {
	// QueueTask submits a task for execution. It returns an error only if
	// the backend itself cannot accept more work (e.g. it was cleared and
	// torn down); a failed solve is reported through GetOutput/WaitForOutput
	// on the task itself, not here.
	QueueTask(task *WfcTask) error

	// GetOutput returns the next completed task without blocking. The bool
	// is false if nothing has completed yet.
	GetOutput() (*WfcTask, error, bool)

	// WaitForOutput blocks until a task completes, then returns it.
	WaitForOutput() (*WfcTask, error)

	// Clear discards any completed-but-unread output and any work not yet
	// started. Tasks already running are unaffected.
	Clear()
}
