package orm

// Expression 代表语句，或者语句的部分
// 暂时没想好怎么设计方法，所以直接做成标记接口
type Expression interface {
	expr()
}

// exprOf returns an Expression based on the input parameter.
func exprOf(e any) Expression {
	switch expr := e.(type) {
	case Expression:
		return expr
	// 闭包捕获的值，到绑定参数的时候才求值
	case func() any:
		return Lazy(func() (any, error) { return expr(), nil })
	case func() (any, error):
		return Lazy(expr)
	default:
		return valueOf(expr)
	}
}

// value 代表一个字面量，可能是单个值，也可能是一组值
type value struct {
	val any
}

func (v value) expr() {}

// valueOf creates a new value object with the given value.
func valueOf(val any) value {
	return value{val: val}
}

// V 显式地把 val 当作字面量，即便它本身实现了其它接口
func V(val any) Expression {
	return valueOf(val)
}

// lazyValue 延迟求值的表达式
// 每次出现在表达式树里，都会在绑定参数的时候求值一次
type lazyValue struct {
	fn func() (any, error)
}

func (l lazyValue) expr() {}

// Lazy 创建一个延迟求值的表达式
// fn 返回的 error 或者 panic 都会变成 ErrValueEvaluation
func Lazy(fn func() (any, error)) Expression {
	return lazyValue{fn: fn}
}

// coercion 一元的类型转换包装
// 包装的是列的时候，依旧当作列来处理；否则求值之后再用 conv 转换
type coercion struct {
	operand Expression
	conv    func(any) (any, error)
}

func (c coercion) expr() {}

// Cast 包装 operand，conv 为 nil 时不做任何转换
// 例如 Cast(C("Status"), nil) 仍然会被解析成 status 列
func Cast(operand any, conv func(any) (any, error)) Expression {
	return coercion{
		operand: exprOf(operand),
		conv:    conv,
	}
}
