package orm

// Op 操作符
// 只有 sqlTokens 里面的操作符能被转换成 SQL，其余的会在构造时返回 ErrUnsupportedOperator
type Op string

const (
	OpEQ  Op = "="
	OpNE  Op = "<>"
	OpGT  Op = ">"
	OpGE  Op = ">="
	OpLT  Op = "<"
	OpLE  Op = "<="
	OpAND Op = "AND"
	OpOR  Op = "OR"
	OpAdd Op = "+"
	OpSub Op = "-"
	OpNOT Op = "NOT"
	OpIN  Op = "IN"
)

func (o Op) String() string {
	return string(o)
}

// sqlTokens 二元操作符对应的 SQL 片段
// 逻辑运算和算术运算两边带空格，比较运算不带
var sqlTokens = map[Op]string{
	OpAND: " AND ",
	OpOR:  " OR ",
	OpEQ:  "=",
	OpNE:  "<>",
	OpGT:  ">",
	OpGE:  ">=",
	OpLT:  "<",
	OpLE:  "<=",
	OpAdd: " + ",
	OpSub: " - ",
}

// Predicate 代表一个查询条件
// Predicate 可以通过和 Predicate 组合构成复杂的查询条件
// 比较、逻辑、算术运算以及 IN 都用同一个结构表示
type Predicate struct {
	left  Expression
	op    Op
	right Expression
}

func (Predicate) expr() {}

// Binary 构造任意二元表达式
// 例如 Binary(C("Age"), OpGE, 18)
func Binary(left any, op Op, right any) Predicate {
	return Predicate{
		left:  exprOf(left),
		op:    op,
		right: exprOf(right),
	}
}

// Not 例如 Not(C("Id").EQ(12))
func Not(p Predicate) Predicate {
	return Predicate{
		op:    OpNOT,
		right: p,
	}
}

// In needle 是否在 haystack 之中
// haystack 是切片的时候会被展开成多个参数
func In(needle, haystack any) Predicate {
	return Predicate{
		left:  exprOf(needle),
		op:    OpIN,
		right: exprOf(haystack),
	}
}

func (p Predicate) And(r Predicate) Predicate {
	return Predicate{
		left:  p,
		op:    OpAND,
		right: r,
	}
}

func (p Predicate) Or(r Predicate) Predicate {
	return Predicate{
		left:  p,
		op:    OpOR,
		right: r,
	}
}

// EQ 例如 C("Age").Add(1).EQ(18)
func (p Predicate) EQ(arg any) Predicate {
	return Binary(p, OpEQ, arg)
}

func (p Predicate) NE(arg any) Predicate {
	return Binary(p, OpNE, arg)
}

func (p Predicate) GT(arg any) Predicate {
	return Binary(p, OpGT, arg)
}

func (p Predicate) GE(arg any) Predicate {
	return Binary(p, OpGE, arg)
}

func (p Predicate) LT(arg any) Predicate {
	return Binary(p, OpLT, arg)
}

func (p Predicate) LE(arg any) Predicate {
	return Binary(p, OpLE, arg)
}

// Add 例如 C("Age").Add(1).Add(C("Bonus"))
func (p Predicate) Add(arg any) Predicate {
	return Binary(p, OpAdd, arg)
}

func (p Predicate) Sub(arg any) Predicate {
	return Binary(p, OpSub, arg)
}
