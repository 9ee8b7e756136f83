package orm

// Updater UPDATE 语句的视图
// 至少要 SET 一列，才能添加条件
type Updater[T any] struct {
	buf *Buffer
	seq int
}

// NewUpdater 在 sess 上开启一个新的 Buffer，第一条语句是更新 T
func NewUpdater[T any](sess Session) *Updater[T] {
	return Update[T](NewBuffer(sess))
}

// Update 在 b 中开始一条新的 UPDATE 语句
// b 为空，或者上一条语句已经有条件的时候才能调用
func Update[T any](b *Buffer) *Updater[T] {
	return &Updater[T]{
		buf: b,
		seq: b.start(kindUpdate, new(T)),
	}
}

// Set 例如 Set("FirstName", "Tom") -> SET first_name={0}
// val 也可以是表达式，例如 Set("Age", C("Age").Add(1))
func (u *Updater[T]) Set(field string, val any) *Updater[T] {
	u.buf.set(u.seq, field, val)
	return u
}

// SetMany 用 record 的字段批量 SET
// record 是结构体或者结构体指针，按照字段的声明顺序处理，只处理 T 上同名的字段
func (u *Updater[T]) SetMany(record any) *Updater[T] {
	u.buf.setMany(u.seq, record)
	return u
}

// Inc 例如 Inc("Age", 1) -> SET age=age+({0})
func (u *Updater[T]) Inc(field string, delta any) *Updater[T] {
	u.buf.inc(u.seq, field, delta)
	return u
}

// Where 添加条件，多次调用会用 AND 连接
func (u *Updater[T]) Where(p Predicate) *Executor[T] {
	u.buf.where(u.seq, p)
	return &Executor[T]{buf: u.buf, seq: u.seq}
}

// Buffer 返回背后的 Buffer
func (u *Updater[T]) Buffer() *Buffer {
	return u.buf
}

// ToSQL 见 Buffer.ToSQL
func (u *Updater[T]) ToSQL() (string, error) {
	return u.buf.ToSQL()
}

func (u *Updater[T]) Build() (*Query, error) {
	return u.buf.Build()
}
