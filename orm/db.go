package orm

import (
	"context"
	"database/sql"
	"github.com/coderi421/sqlraw/orm/internal/valuer"
	"github.com/coderi421/sqlraw/orm/internal/valuer/unsafe"
	"github.com/coderi421/sqlraw/orm/model"
)

type DBOption func(*DB)

// DB 是对 sql.DB 的封装，持有方言、Catalog 以及中间件等配置
// DB 是并发安全的，Buffer 不是
type DB struct {
	core
	db *sql.DB
}

// Open 创建一个 DB 实例
func Open(driver string, dataSourceName string, opts ...DBOption) (*DB, error) {
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, err
	}
	return OpenDB(db, opts...)
}

// OpenDB 使用已有的 sql.DB
// 例如测试的时候使用 sqlmock 创建的 sql.DB
func OpenDB(db *sql.DB, opts ...DBOption) (*DB, error) {
	res := newDB(opts...)
	res.db = db
	return res, nil
}

// NewDB 创建一个没有连接的 DB，只能用来构造 SQL
// 执行的时候会返回 ErrNoDatabase
func NewDB(opts ...DBOption) (*DB, error) {
	return newDB(opts...), nil
}

// MustNewDB creates a new DB with the provided options.
// If the creation fails, it panics.
func MustNewDB(opts ...DBOption) *DB {
	db, err := NewDB(opts...)
	if err != nil {
		panic(err)
	}
	return db
}

func newDB(opts ...DBOption) *DB {
	res := &DB{
		core: core{
			dialect:    Positional,
			r:          model.NewRegistry(),
			records:    model.NewRegistry(),
			valCreator: unsafe.NewUnsafeValue,
		},
	}
	for _, opt := range opts {
		opt(res)
	}
	if res.catalog == nil {
		res.catalog = NewCatalog(res.r)
	}
	return res
}

// DBWithDialect 默认是 Positional
func DBWithDialect(dialect Dialect) DBOption {
	return func(db *DB) {
		db.dialect = dialect
	}
}

// DBWithRegistry 使用 r 作为默认 Catalog 的数据来源
func DBWithRegistry(r model.Registry) DBOption {
	return func(db *DB) {
		db.r = r
	}
}

// DBWithCatalog 使用外部的 Catalog，优先于 DBWithRegistry
func DBWithCatalog(c Catalog) DBOption {
	return func(db *DB) {
		db.catalog = c
	}
}

// DBWithRewriter 执行之前把方言的占位符改写成驱动支持的格式
func DBWithRewriter(rw Rewriter) DBOption {
	return func(db *DB) {
		db.rewriter = rw
	}
}

func DBWithMiddlewares(mdls ...Middleware) DBOption {
	return func(db *DB) {
		db.mdls = mdls
	}
}

// DBUseReflectValuer 使用反射读取 SetMany 记录上的值，默认使用 unsafe
func DBUseReflectValuer() DBOption {
	return func(db *DB) {
		db.valCreator = valuer.NewReflectValue
	}
}

// Registry 默认 Catalog 使用的 registry，可以用来提前注册模型
func (db *DB) Registry() model.Registry {
	return db.r
}

func (db *DB) getCore() core {
	return db.core
}

func (db *DB) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if db.db == nil {
		return nil, ErrNoDatabase
	}
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx 开启事务，提交或者回滚由调用者负责
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	if db.db == nil {
		return nil, ErrNoDatabase
	}
	tx, err := db.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, db: db}, nil
}

func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}
