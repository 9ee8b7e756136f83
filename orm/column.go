package orm

// Column 代表模型上的一个字段，name 是 Go 结构体里的字段名
// 具体的列名在构造 SQL 的时候通过 Catalog 查出来
type Column struct {
	name string
}

func (c Column) expr() {}

func C(name string) Column {
	return Column{name: name}
}

// EQ 例如 C("Id").EQ(12)
// arg 为 nil 时生成 IS NULL
func (c Column) EQ(arg any) Predicate {
	return Binary(c, OpEQ, arg)
}

// NE 例如 C("Id").NE(12)
// arg 为 nil 时生成 IS NOT NULL
func (c Column) NE(arg any) Predicate {
	return Binary(c, OpNE, arg)
}

// LT 例如 C("id").LT(12)
func (c Column) LT(arg any) Predicate {
	return Binary(c, OpLT, arg)
}

func (c Column) LE(arg any) Predicate {
	return Binary(c, OpLE, arg)
}

func (c Column) GT(arg any) Predicate {
	return Binary(c, OpGT, arg)
}

func (c Column) GE(arg any) Predicate {
	return Binary(c, OpGE, arg)
}

// Add 例如 C("Age").Add(1)，用于 SET 或者条件里的计算
func (c Column) Add(arg any) Predicate {
	return Binary(c, OpAdd, arg)
}

func (c Column) Sub(arg any) Predicate {
	return Binary(c, OpSub, arg)
}

// In 例如 C("Id").In(1, 2, 3) 或者 C("Id").In(ids)
// 取值为空时构造会返回 ErrInvalidBuilderState
func (c Column) In(vals ...any) Predicate {
	if len(vals) == 1 {
		return In(c, vals[0])
	}
	return In(c, vals)
}
