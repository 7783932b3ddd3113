package task

// List is an append-only accumulator owned by the caller. The reconciliation
// engine only appends; it never reads earlier entries back out.
type List struct {
	tasks []Task
}

// NewList returns an empty task list.
func NewList() *List {
	return &List{}
}

// Add appends a task.
func (l *List) Add(t Task) {
	l.tasks = append(l.tasks, t)
}

// All returns the accumulated tasks in insertion order.
func (l *List) All() []Task {
	out := make([]Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Transfers returns only the transfer tasks, in insertion order.
func (l *List) Transfers() []*TransferTask {
	var out []*TransferTask
	for _, t := range l.tasks {
		if tt, ok := t.(*TransferTask); ok {
			out = append(out, tt)
		}
	}
	return out
}

// Len reports the number of accumulated tasks.
func (l *List) Len() int {
	return len(l.tasks)
}
