package orm

import (
	"github.com/coderi421/sqlraw/orm/internal/valuer"
	"github.com/coderi421/sqlraw/orm/model"
)

type core struct {
	dialect Dialect
	catalog Catalog
	r       model.Registry // 存储数据库表和 struct 映射关系的实例，默认 Catalog 使用它
	// records SetMany 解析记录类型用，与 r 分开，避免把记录类型当成模型
	records    model.Registry
	valCreator valuer.Creator // 读取记录字段值的实现
	rewriter   Rewriter
	mdls       []Middleware
}
