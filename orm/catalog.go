package orm

import (
	"github.com/coderi421/sqlraw/orm/internal/errs"
	"github.com/coderi421/sqlraw/orm/model"
	lru "github.com/hashicorp/golang-lru"
	"reflect"
)

// Catalog 模型到表结构的映射服务
// model 是指向模型结构体的指针，例如 &User{}
// 找不到模型或者字段时返回的 error 都是 ErrSchemaResolution
type Catalog interface {
	TableName(model any) (string, error)
	ColumnName(model any, field string) (string, error)
	BaseColumnName(model any, field string) (string, error)
	// FieldNames 模型的全部字段，按照声明顺序
	FieldNames(model any) ([]string, error)
}

var _ Catalog = &registryCatalog{}

// registryCatalog 用 model.Registry 实现 Catalog
type registryCatalog struct {
	r model.Registry
}

// NewCatalog 基于 registry 的 Catalog
func NewCatalog(r model.Registry) Catalog {
	return &registryCatalog{r: r}
}

func (c *registryCatalog) TableName(val any) (string, error) {
	m, err := c.r.Get(val)
	if err != nil {
		return "", err
	}
	return m.TableName, nil
}

func (c *registryCatalog) ColumnName(val any, field string) (string, error) {
	fd, err := c.field(val, field)
	if err != nil {
		return "", err
	}
	return fd.ColName, nil
}

func (c *registryCatalog) BaseColumnName(val any, field string) (string, error) {
	fd, err := c.field(val, field)
	if err != nil {
		return "", err
	}
	return fd.BaseName, nil
}

func (c *registryCatalog) FieldNames(val any) ([]string, error) {
	m, err := c.r.Get(val)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m.Fields))
	for _, fd := range m.Fields {
		names = append(names, fd.GoName)
	}
	return names, nil
}

func (c *registryCatalog) field(val any, field string) (*model.Field, error) {
	m, err := c.r.Get(val)
	if err != nil {
		return nil, err
	}
	fd, ok := m.FieldMap[field]
	if !ok {
		return nil, errs.NewErrUnknownField(field)
	}
	return fd, nil
}

type lookupKind uint8

const (
	lookupTable lookupKind = iota
	lookupColumn
	lookupBase
	lookupFields
)

type cacheKey struct {
	typ   reflect.Type
	kind  lookupKind
	field string
}

// cachedCatalog 在任意 Catalog 前面加一层 LRU
// 适用于 Catalog 背后是远程服务或者代价较高的查询
// 查询失败的结果不缓存
type cachedCatalog struct {
	Catalog
	cache *lru.Cache
}

// NewCachedCatalog 最多缓存 size 条查询结果
func NewCachedCatalog(c Catalog, size int) (Catalog, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &cachedCatalog{
		Catalog: c,
		cache:   cache,
	}, nil
}

func (c *cachedCatalog) TableName(val any) (string, error) {
	return c.lookup(cacheKey{typ: reflect.TypeOf(val), kind: lookupTable}, func() (string, error) {
		return c.Catalog.TableName(val)
	})
}

func (c *cachedCatalog) ColumnName(val any, field string) (string, error) {
	return c.lookup(cacheKey{typ: reflect.TypeOf(val), kind: lookupColumn, field: field}, func() (string, error) {
		return c.Catalog.ColumnName(val, field)
	})
}

func (c *cachedCatalog) BaseColumnName(val any, field string) (string, error) {
	return c.lookup(cacheKey{typ: reflect.TypeOf(val), kind: lookupBase, field: field}, func() (string, error) {
		return c.Catalog.BaseColumnName(val, field)
	})
}

func (c *cachedCatalog) FieldNames(val any) ([]string, error) {
	key := cacheKey{typ: reflect.TypeOf(val), kind: lookupFields}
	if names, ok := c.cache.Get(key); ok {
		return names.([]string), nil
	}
	names, err := c.Catalog.FieldNames(val)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, names)
	return names, nil
}

func (c *cachedCatalog) lookup(key cacheKey, load func() (string, error)) (string, error) {
	if name, ok := c.cache.Get(key); ok {
		return name.(string), nil
	}
	name, err := load()
	if err != nil {
		return "", err
	}
	c.cache.Add(key, name)
	return name, nil
}
