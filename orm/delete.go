package orm

// Deleter DELETE 语句的视图
// 只能添加条件，添加条件之后得到 Executor
type Deleter[T any] struct {
	buf *Buffer
	seq int
}

// NewDeleter 在 sess 上开启一个新的 Buffer，第一条语句是删除 T
func NewDeleter[T any](sess Session) *Deleter[T] {
	return Delete[T](NewBuffer(sess))
}

// Delete 在 b 中开始一条新的 DELETE 语句
// b 为空，或者上一条语句已经有条件的时候才能调用
func Delete[T any](b *Buffer) *Deleter[T] {
	return &Deleter[T]{
		buf: b,
		seq: b.start(kindDelete, new(T)),
	}
}

// Where 添加条件，多次调用会用 AND 连接
func (d *Deleter[T]) Where(p Predicate) *Executor[T] {
	d.buf.where(d.seq, p)
	return &Executor[T]{buf: d.buf, seq: d.seq}
}

// Buffer 返回背后的 Buffer
func (d *Deleter[T]) Buffer() *Buffer {
	return d.buf
}

// ToSQL 见 Buffer.ToSQL
func (d *Deleter[T]) ToSQL() (string, error) {
	return d.buf.ToSQL()
}

func (d *Deleter[T]) Build() (*Query, error) {
	return d.buf.Build()
}
