package valuer

import (
	"github.com/coderi421/sqlraw/orm/model"
)

// Value 是对结构体实例的内部抽象
// 用于在构造 SET 子句时按照 Go 字段名读取记录中的值
type Value interface {
	// Field 返回字段对应的值
	Field(name string) (any, error)
}

// Creator 本质上也可以看所是 factory 模式，极其简单的 factory 模式
// val 必须是一个指向结构体实例的指针
type Creator func(val any, meta *model.Model) Value
