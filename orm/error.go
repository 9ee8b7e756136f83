package orm

import "github.com/coderi421/sqlraw/orm/internal/errs"

// 将内部的 sentinel error 暴露出去，用 errors.Is 判断类别
var (
	// ErrSchemaResolution 未知的模型或者字段
	ErrSchemaResolution = errs.ErrSchemaResolution
	// ErrUnsupportedOperator 表达式中有不能转换成 SQL 的操作符
	ErrUnsupportedOperator = errs.ErrUnsupportedOperator
	// ErrInvalidBuilderState 在不支持的状态下调用，例如没有条件就执行
	ErrInvalidBuilderState = errs.ErrInvalidBuilderState
	// ErrValueEvaluation 延迟求值的表达式返回了 error 或者 panic
	ErrValueEvaluation = errs.ErrValueEvaluation
	// ErrEmptyIn IN 的取值列表为空
	ErrEmptyIn = errs.ErrEmptyIn
	// ErrNoDatabase 通过 NewDB 创建的 DB 只能构造 SQL，不能执行
	ErrNoDatabase = errs.ErrNoDatabase
)
