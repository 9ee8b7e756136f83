package orm

import (
	"context"
	"fmt"
	"github.com/coderi421/sqlraw/orm/internal/errs"
	"github.com/google/uuid"
	"reflect"
	"strings"
)

// separator 语句之间的分隔符
const separator = ";\n"

type stmtKind uint8

const (
	kindDelete stmtKind = iota
	kindUpdate
)

func (k stmtKind) String() string {
	if k == kindUpdate {
		return "UPDATE"
	}
	return "DELETE"
}

// state Buffer 的状态
// Empty -> Header -> Assigning(只有 UPDATE) -> Executable -> Header ...
// Exec 之后进入 Executed，不再接受任何修改
type state uint8

const (
	stateEmpty state = iota
	stateHeader
	stateAssigning
	stateExecutable
	stateExecuted
)

func (s state) String() string {
	switch s {
	case stateEmpty:
		return "Empty"
	case stateHeader:
		return "Header"
	case stateAssigning:
		return "Assigning"
	case stateExecutable:
		return "Executable"
	default:
		return "Executed"
	}
}

// Buffer 一次构造会话
// 一个 Buffer 里可以有多条 DELETE / UPDATE 语句，它们共享同一段 SQL 文本和同一个参数列表，
// 参数的下标在整个会话里连续递增，不会因为开始了新的语句而重置。
//
// Deleter、Updater、Executor 都只是 Buffer 的视图，通过任何一个视图做的修改，
// 其它视图渲染出来的 SQL 都能看到。
//
// Buffer 不是并发安全的，只能在一个 goroutine 里使用。
// 构造过程中出现的第一个 error 会被记录下来，之后的调用都不再生效，
// ToSQL、Build、Exec 都会返回这个 error。
type Buffer struct {
	core
	sess Session
	id   string

	sb    strings.Builder
	args  []any
	state state
	kinds []stmtKind
	// setCnt 当前语句已经 SET 的列数
	setCnt int
	// seq 当前语句的编号，视图用它判断自己是否已经过期
	seq   int
	model any
	err   error
}

// NewBuffer 在 sess 上开启一个新的构造会话
func NewBuffer(sess Session) *Buffer {
	return &Buffer{
		core: sess.getCore(),
		sess: sess,
		id:   uuid.NewString(),
	}
}

// ID 会话的唯一标识，会出现在中间件的 QueryContext 里
func (b *Buffer) ID() string {
	return b.id
}

// Err 返回构造过程中记录下来的 error
func (b *Buffer) Err() error {
	return b.err
}

// Args 按照下标顺序返回已经绑定的参数
func (b *Buffer) Args() []any {
	res := make([]any, len(b.args))
	copy(res, b.args)
	return res
}

func (b *Buffer) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// check 确认 seq 对应的语句仍然是当前语句
func (b *Buffer) check(action string, seq int) bool {
	if b.err != nil {
		return false
	}
	if b.state == stateExecuted {
		b.fail(errs.NewErrInvalidState(action, b.state.String()))
		return false
	}
	if seq != b.seq {
		b.fail(errs.NewErrInvalidState(action, "superseded"))
		return false
	}
	return true
}

// start 开始一条新的语句，返回语句编号
func (b *Buffer) start(kind stmtKind, model any) int {
	if b.err != nil {
		return b.seq
	}
	if b.state != stateEmpty && b.state != stateExecutable {
		b.fail(errs.NewErrInvalidState(kind.String(), b.state.String()))
		return b.seq
	}
	table, err := b.catalog.TableName(model)
	if err != nil {
		b.fail(err)
		return b.seq
	}

	if b.sb.Len() > 0 {
		b.sb.WriteString(separator)
	}
	b.sb.WriteString(kind.String())
	if kind == kindDelete {
		b.sb.WriteString(" FROM")
	}
	b.sb.WriteByte(' ')
	b.sb.WriteString(table)
	b.sb.WriteString(" \n")

	b.kinds = append(b.kinds, kind)
	b.model = model
	b.setCnt = 0
	b.state = stateHeader
	b.seq++
	return b.seq
}

// assignable 当前语句是否还能继续 SET
func (b *Buffer) assignable(action string, seq int) bool {
	if !b.check(action, seq) {
		return false
	}
	if b.kinds[len(b.kinds)-1] != kindUpdate || (b.state != stateHeader && b.state != stateAssigning) {
		b.fail(errs.NewErrInvalidState(action, b.state.String()))
		return false
	}
	return true
}

func (b *Buffer) set(seq int, field string, val any) {
	if !b.assignable("Set", seq) {
		return
	}
	bd := newBuilder(b)
	if err := b.assign(bd, field, exprOf(val), false); err != nil {
		b.fail(err)
		return
	}
	b.commit(bd)
}

func (b *Buffer) inc(seq int, field string, delta any) {
	if !b.assignable("Inc", seq) {
		return
	}
	bd := newBuilder(b)
	if err := b.assign(bd, field, exprOf(delta), true); err != nil {
		b.fail(err)
		return
	}
	b.commit(bd)
}

// setMany 按照 record 的字段声明顺序，SET 模型上同样存在的字段
// 模型上没有的字段直接忽略，record 上没有的字段保持不变
func (b *Buffer) setMany(seq int, record any) {
	if !b.assignable("SetMany", seq) {
		return
	}

	rv := reflect.ValueOf(record)
	switch {
	case rv.Kind() == reflect.Struct:
		// 复制一份，这样 valuer 拿到的一定是指针
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		record = ptr.Interface()
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct:
	default:
		b.fail(errs.NewErrUnsupportedRecord(record))
		return
	}

	recModel, err := b.records.Get(record)
	if err != nil {
		b.fail(err)
		return
	}
	names, err := b.catalog.FieldNames(b.model)
	if err != nil {
		b.fail(err)
		return
	}
	fields := make(map[string]struct{}, len(names))
	for _, name := range names {
		fields[name] = struct{}{}
	}

	val := b.valCreator(record, recModel)
	bd := newBuilder(b)
	for _, fd := range recModel.Fields {
		if _, ok := fields[fd.GoName]; !ok {
			continue
		}
		v, err := val.Field(fd.GoName)
		if err != nil {
			b.fail(err)
			return
		}
		if err = b.assign(bd, fd.GoName, valueOf(v), false); err != nil {
			b.fail(err)
			return
		}
	}
	b.commit(bd)
}

// assign 写入 SET col=val 或者 SET col=col+(val)
// 第一个赋值以 " SET " 开头，之后的以 ", " 开头
func (b *Buffer) assign(bd *builder, field string, val Expression, inc bool) error {
	col, err := bd.colName(field)
	if err != nil {
		return err
	}
	rendered, err := bd.expression(val)
	if err != nil {
		return err
	}

	if b.setCnt == 0 {
		bd.sb.WriteString(" SET ")
	} else {
		bd.sb.WriteString(", ")
	}
	bd.sb.WriteString(col)
	bd.sb.WriteByte('=')
	if inc {
		bd.sb.WriteString(col)
		bd.sb.WriteString("+(")
		bd.sb.WriteString(rendered)
		bd.sb.WriteByte(')')
	} else {
		bd.sb.WriteString(rendered)
	}
	b.setCnt++
	return nil
}

// where 当前语句的第一个条件生成 WHERE，之后的条件用 AND 追加在后面
func (b *Buffer) where(seq int, p Predicate) {
	if !b.check("Where", seq) {
		return
	}
	if b.state == stateHeader && b.kinds[len(b.kinds)-1] == kindUpdate {
		b.fail(errs.ErrNoUpdatedColumns)
		return
	}

	bd := newBuilder(b)
	pred, err := bd.expression(p)
	if err != nil {
		b.fail(err)
		return
	}

	if b.state == stateExecutable {
		bd.sb.WriteString(" AND (\n")
		bd.sb.WriteString(pred)
		bd.sb.WriteString("\n ) \n")
	} else {
		if !strings.HasSuffix(b.sb.String(), "\n") {
			bd.sb.WriteByte('\n')
		}
		bd.sb.WriteString(" WHERE \n")
		bd.sb.WriteString(pred)
		bd.sb.WriteByte('\n')
	}
	b.commit(bd)
	b.state = stateExecutable
}

func (b *Buffer) commit(bd *builder) {
	b.sb.WriteString(bd.sb.String())
	b.args = append(b.args, bd.args...)
	if b.state == stateHeader && b.setCnt > 0 {
		b.state = stateAssigning
	}
}

// ToSQL 返回参数清单加上 SQL，用于调试
// 每个参数一行 "-- <占位符> : <值>"，之后是一个空格加换行，然后是 SQL 本身
// 不会修改 Buffer，任何状态下都可以调用
func (b *Buffer) ToSQL() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	lines := make([]string, 0, len(b.args))
	for i, arg := range b.args {
		lines = append(lines, fmt.Sprintf("-- %s : %v", b.dialect.Placeholder(i), arg))
	}
	return strings.Join(lines, "\n") + " \n" + b.sb.String(), nil
}

// Build 返回当前的 SQL 和参数，不追加结尾的分隔符
func (b *Buffer) Build() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Query{
		SQL:  b.sb.String(),
		Args: b.Args(),
	}, nil
}

// typ 所有语句都是同一种时就是 DELETE 或者 UPDATE，否则是 BATCH
func (b *Buffer) typ() string {
	for _, k := range b.kinds[1:] {
		if k != b.kinds[0] {
			return "BATCH"
		}
	}
	return b.kinds[0].String()
}

// seal 结束构造，追加分隔符，之后 Buffer 不再接受修改
func (b *Buffer) seal() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.state != stateExecutable {
		b.fail(errs.NewErrInvalidState("Exec", b.state.String()))
		return nil, b.err
	}
	if !strings.HasSuffix(b.sb.String(), separator) {
		b.sb.WriteString(separator)
	}
	b.state = stateExecuted
	return &Query{
		SQL:  b.sb.String(),
		Args: b.Args(),
	}, nil
}

// Exec 执行 Buffer 里的全部语句，返回受影响的行数
// 只有在最后一条语句有条件之后才能执行
func (b *Buffer) Exec(ctx context.Context) (int64, error) {
	// 还没有开始执行就被取消了，Buffer 保持原样
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q, err := b.seal()
	if err != nil {
		return 0, err
	}
	return b.dispatch(ctx, q)
}

// ExecResult ExecAsync 的结果
type ExecResult struct {
	RowsAffected int64
	Err          error
}

// ExecAsync 与 Exec 一样，只是在另外一个 goroutine 里执行
// 校验和封存 Buffer 在调用方的 goroutine 里完成，ctx 已经取消时 Buffer 保持原样。
// 交给数据库之前会检查 ctx，已经取消就直接返回 ctx.Err()；
// 交给数据库之后，取消的效果由驱动决定。
func (b *Buffer) ExecAsync(ctx context.Context) <-chan ExecResult {
	ch := make(chan ExecResult, 1)
	// 与 Exec 一致，已经取消的 ctx 不会封存 Buffer
	if err := ctx.Err(); err != nil {
		ch <- ExecResult{Err: err}
		close(ch)
		return ch
	}
	q, err := b.seal()
	if err != nil {
		ch <- ExecResult{Err: err}
		close(ch)
		return ch
	}
	go func() {
		defer close(ch)
		n, err := b.dispatch(ctx, q)
		ch <- ExecResult{RowsAffected: n, Err: err}
	}()
	return ch
}

func (b *Buffer) dispatch(ctx context.Context, q *Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var handler Handler = b.execHandler
	for j := len(b.mdls) - 1; j >= 0; j-- {
		handler = b.mdls[j](handler)
	}

	res := handler(ctx, &QueryContext{
		Type:      b.typ(),
		Builder:   b,
		Query:     q,
		SessionID: b.id,
	})
	return res.RowsAffected, res.Err
}

func (b *Buffer) execHandler(ctx context.Context, qc *QueryContext) *QueryResult {
	query, args := qc.Query.SQL, qc.Query.Args
	if b.rewriter != nil {
		query, args = b.rewriter(query, args)
	}
	res, err := b.sess.execContext(ctx, query, args...)
	if err != nil {
		return &QueryResult{Err: err}
	}
	n, err := res.RowsAffected()
	return &QueryResult{
		Result:       res,
		RowsAffected: n,
		Err:          err,
	}
}
