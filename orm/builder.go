package orm

import (
	"database/sql/driver"
	"fmt"
	"github.com/coderi421/sqlraw/orm/internal/errs"
	"reflect"
	"strings"
)

const sqlNull = "NULL"

// builder 把表达式编译成 SQL 片段
// 每次编译都在一个新的 builder 里进行，编译成功后才把 sb 和 args 合并到 Buffer，
// 这样出错的时候 Buffer 里不会留下半截 SQL，也不会多出参数
type builder struct {
	sb   strings.Builder // sb is used to build the SQL fragment.
	args []any           // args 本次编译新增的参数
	// base 本次编译之前已经绑定的参数个数，占位符的下标从这里开始
	base int

	dialect Dialect
	catalog Catalog
	model   any // model 指向当前语句绑定的模型
}

func newBuilder(b *Buffer) *builder {
	return &builder{
		base:    len(b.args),
		dialect: b.dialect,
		catalog: b.catalog,
		model:   b.model,
	}
}

// buildExpression builds the SQL fragment for the given expression.
// Column 代表是列名，直接拼接列名
// value 代表参数，加入参数列表
// Predicate 代表一个条件或者计算，两边递归构造，整体加上括号
func (b *builder) buildExpression(e Expression) error {
	s, err := b.expression(e)
	if err != nil {
		return err
	}
	b.sb.WriteString(s)
	return nil
}

func (b *builder) expression(e Expression) (string, error) {
	switch expr := e.(type) {
	case nil:
		return sqlNull, nil
	case Column:
		return b.colName(expr.name)
	case value:
		return b.bind(expr.val)
	case lazyValue:
		val, err := evaluate(expr.fn)
		if err != nil {
			return "", err
		}
		return b.bind(val)
	case coercion:
		return b.coercion(expr)
	case Predicate:
		return b.predicate(expr)
	default:
		return "", errs.NewErrUnsupportedExpressionType(expr)
	}
}

func (b *builder) predicate(p Predicate) (string, error) {
	switch p.op {
	case OpNOT:
		// NOT 只有一个操作数，Binary(x, OpNOT, y) 这种写法不支持
		if p.left != nil || p.right == nil {
			return "", errs.NewErrUnsupportedOperator(p.op.String())
		}
		operand, err := b.expression(p.right)
		if err != nil {
			return "", err
		}
		return "NOT ( " + operand + " )", nil
	case OpIN:
		if p.left == nil || p.right == nil {
			return "", errs.NewErrUnsupportedOperator(p.op.String())
		}
		needle, err := b.expression(p.left)
		if err != nil {
			return "", err
		}
		haystack, err := b.expression(p.right)
		if err != nil {
			return "", err
		}
		// IN () 在任何数据库上都是语法错误
		if haystack == "" {
			return "", errs.ErrEmptyIn
		}
		return "( " + needle + " IN ( " + haystack + " ) )", nil
	}

	// 先确认操作符能转换，避免绑定了参数之后才发现不支持
	token, ok := sqlTokens[p.op]
	if !ok {
		return "", errs.NewErrUnsupportedOperator(p.op.String())
	}
	left, err := b.expression(p.left)
	if err != nil {
		return "", err
	}
	right, err := b.expression(p.right)
	if err != nil {
		return "", err
	}

	// = NULL 换成 IS NULL，<> NULL 换成 IS NOT NULL
	if right == sqlNull {
		switch p.op {
		case OpEQ:
			token = " IS "
		case OpNE:
			token = " IS NOT "
		}
	}
	return "(" + left + token + right + ")", nil
}

// coercion 先看里面是不是列，是列就直接用列名，不去求值
func (b *builder) coercion(c coercion) (string, error) {
	operand := c.operand
	convs := []func(any) (any, error){c.conv}
	for {
		inner, ok := operand.(coercion)
		if !ok {
			break
		}
		operand = inner.operand
		convs = append(convs, inner.conv)
	}

	var val any
	switch expr := operand.(type) {
	case Column:
		return b.colName(expr.name)
	case value:
		val = expr.val
	case lazyValue:
		v, err := evaluate(expr.fn)
		if err != nil {
			return "", err
		}
		val = v
	default:
		return b.expression(operand)
	}

	// 从里往外转换
	for i := len(convs) - 1; i >= 0; i-- {
		if convs[i] == nil {
			continue
		}
		v, err := evaluate(func() (any, error) { return convs[i](val) })
		if err != nil {
			return "", err
		}
		val = v
	}
	return b.bind(val)
}

func (b *builder) colName(field string) (string, error) {
	return b.dialect.ColumnName(b.catalog, b.model, field)
}

// bind 决定一个值是变成 NULL，展开成多个参数，还是变成一个占位符
func (b *builder) bind(val any) (string, error) {
	if val == nil {
		return sqlNull, nil
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return sqlNull, nil
		}
	}

	// sql.NullString{} 这一类的值，Value() 为 nil 时也当作 NULL
	if valuer, ok := val.(driver.Valuer); ok {
		v, err := evaluate(func() (any, error) { return valuer.Value() })
		if err != nil {
			return "", err
		}
		if v == nil {
			return sqlNull, nil
		}
	}

	if b.dialect.Expandable(rv) {
		return b.expand(rv)
	}

	b.args = append(b.args, val)
	return b.dialect.Placeholder(b.base + len(b.args) - 1), nil
}

func (b *builder) expand(rv reflect.Value) (string, error) {
	var items []string
	if rv.Kind() == reflect.String {
		// 单个字符直接作为参数，不再递归，否则会一直展开下去
		for _, r := range rv.String() {
			b.args = append(b.args, string(r))
			items = append(items, b.dialect.Placeholder(b.base+len(b.args)-1))
		}
		return strings.Join(items, ","), nil
	}

	items = make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, err := b.bind(rv.Index(i).Interface())
		if err != nil {
			return "", err
		}
		items = append(items, s)
	}
	return strings.Join(items, ","), nil
}

// evaluate 执行用户的代码，error 和 panic 都转换成 ErrValueEvaluation
func evaluate(fn func() (any, error)) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.NewErrEvaluation(fmt.Errorf("panic: %v", r))
		}
	}()
	val, err = fn()
	if err != nil {
		return nil, errs.NewErrEvaluation(err)
	}
	return val, nil
}
