package pool

// task is the type-erased unit the queue carries. It is built once per
// submission by binding the caller's function, its arguments and the
// Future's writer together, so tasks with different result types can share
// one queue.
type task struct {
	id uint64

	// attempt invokes the bound function once and keeps its value for settle.
	attempt func() error

	// settle writes the Future: the kept value when err is nil, err otherwise.
	settle func(err error)
}

func newTask[R any](id uint64, fn func() (R, error), f *Future[R]) *task {
	var value R
	return &task{
		id: id,
		attempt: func() error {
			v, err := fn()
			if err != nil {
				return err
			}
			value = v
			return nil
		},
		settle: func(err error) {
			if err != nil {
				f.reject(err)
				return
			}
			f.resolve(value)
		},
	}
}
