package threadpool

// Task is a unit of deferred work. Identity is pointer identity: the pool
// uses it for duplicate suppression and Cancel, so submit the same *Task
// value to refer to the same work.
type Task struct {
	name string
	fn   func()
}

// NewTask wraps fn in a Task.
func NewTask(fn func()) *Task {
	return &Task{fn: fn}
}

// NewNamedTask wraps fn in a Task whose name appears in failure logs.
func NewNamedTask(name string, fn func()) *Task {
	return &Task{name: name, fn: fn}
}

// Name returns the task name, or "" for unnamed tasks.
func (t *Task) Name() string {
	return t.name
}

func (t *Task) valid() bool {
	return t != nil && t.fn != nil
}
