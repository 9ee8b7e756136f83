package errs

import (
	"errors"
	"fmt"
)

// 错误分类，所有具体错误都会包装其中一个，调用方用 errors.Is 判断类别
var (
	// ErrSchemaResolution 模型或者字段无法映射到表名、列名
	ErrSchemaResolution = errors.New("orm: 模型映射失败")
	// ErrUnsupportedOperator 表达式中的操作符没有对应的 SQL
	ErrUnsupportedOperator = errors.New("orm: 不支持的操作符")
	// ErrInvalidBuilderState 在当前状态下不允许的调用
	ErrInvalidBuilderState = errors.New("orm: 非法的构造状态")
	// ErrValueEvaluation 延迟求值的表达式执行失败
	ErrValueEvaluation = errors.New("orm: 求值失败")
)

var (
	// ErrPointerOnly 只支持一级指针作为输入
	// 看到这个 error 说明你输入了其它的东西
	// 我们并不希望用户能够直接使用 err == ErrPointerOnly
	// 所以放在我们的 internal 包里
	ErrPointerOnly = fmt.Errorf("%w: 只支持一级指针作为输入，例如 *User", ErrSchemaResolution)

	// ErrNoUpdatedColumns UPDATE 语句没有任何 SET
	ErrNoUpdatedColumns = fmt.Errorf("%w: 未指定更新的列", ErrInvalidBuilderState)

	// ErrEmptyIn IN 的取值列表为空
	ErrEmptyIn = fmt.Errorf("%w: IN 的取值列表为空", ErrInvalidBuilderState)

	// ErrNoDatabase 没有可用的数据库连接
	ErrNoDatabase = errors.New("orm: 未配置数据库连接")
)

func NewErrUnknownField(name string) error {
	return fmt.Errorf("%w: 未知字段 %s", ErrSchemaResolution, name)
}

func NewErrUnknownModel(name string) error {
	return fmt.Errorf("%w: 未注册的模型 %s", ErrSchemaResolution, name)
}

func NewErrInvalidTagContent(pair string) error {
	return fmt.Errorf("%w: 非法标签值 %s", ErrSchemaResolution, pair)
}

func NewErrUnsupportedOperator(op string) error {
	return fmt.Errorf("%w %q", ErrUnsupportedOperator, op)
}

func NewErrUnsupportedExpressionType(expr any) error {
	return fmt.Errorf("%w: 不支持的表达式 %v", ErrUnsupportedOperator, expr)
}

// NewErrInvalidState 描述在 state 下调用 action
func NewErrInvalidState(action, state string) error {
	return fmt.Errorf("%w: 不能在 %s 状态下调用 %s", ErrInvalidBuilderState, state, action)
}

func NewErrEvaluation(err error) error {
	return fmt.Errorf("%w: %w", ErrValueEvaluation, err)
}

func NewErrUnsupportedRecord(val any) error {
	return fmt.Errorf("%w: 只支持结构体或结构体指针 %T", ErrSchemaResolution, val)
}
