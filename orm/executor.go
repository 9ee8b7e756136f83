package orm

import "context"

var _ Executable = &Executor[any]{}

// Executable 可以执行的语句
type Executable interface {
	QueryBuilder
	Exec(ctx context.Context) (int64, error)
}

// Executor 已经有条件的语句
// 可以继续追加条件，执行，或者在同一个 Buffer 里开始下一条语句
type Executor[T any] struct {
	buf *Buffer
	seq int
}

// Where 继续追加条件，生成 AND ( ... )
func (e *Executor[T]) Where(p Predicate) *Executor[T] {
	e.buf.where(e.seq, p)
	return e
}

// Delete 在同一个 Buffer 里开始一条删除 T 的语句
// 换一个模型使用 orm.Delete[U](e.Buffer())
func (e *Executor[T]) Delete() *Deleter[T] {
	return Delete[T](e.buf)
}

// Update 在同一个 Buffer 里开始一条更新 T 的语句
// 换一个模型使用 orm.Update[U](e.Buffer())
func (e *Executor[T]) Update() *Updater[T] {
	return Update[T](e.buf)
}

// Buffer 返回背后的 Buffer
func (e *Executor[T]) Buffer() *Buffer {
	return e.buf
}

// ToSQL 见 Buffer.ToSQL
func (e *Executor[T]) ToSQL() (string, error) {
	return e.buf.ToSQL()
}

func (e *Executor[T]) Build() (*Query, error) {
	return e.buf.Build()
}

// Exec 执行 Buffer 里的全部语句
func (e *Executor[T]) Exec(ctx context.Context) (int64, error) {
	return e.buf.Exec(ctx)
}

// ExecAsync 见 Buffer.ExecAsync
func (e *Executor[T]) ExecAsync(ctx context.Context) <-chan ExecResult {
	return e.buf.ExecAsync(ctx)
}
