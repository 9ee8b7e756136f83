package model

import (
	"github.com/coderi421/sqlraw/orm/internal/errs"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

type Registry interface {
	Get(val any) (*Model, error)
	Register(val any, opts ...Option) (*Model, error)
}

// RegistryOption 配置 registry
type RegistryOption func(r *registry)

// WithStrict 关闭自动注册
// Get 只返回通过 Register 显式注册过的模型，其余的一律视为未知模型
func WithStrict() RegistryOption {
	return func(r *registry) {
		r.strict = true
	}
}

type registry struct {
	// reflect.Type 可以解决命名冲突的问题
	// 例如都是 User，但是一个映射过去 buyer_t，一个映射过去 seller_t
	models sync.Map
	strict bool
}

func NewRegistry(opts ...RegistryOption) Registry {
	r := &registry{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get fetches the model associated with a given value.
// If the model is not found in the registry, it is parsed and stored for future use,
// unless the registry is strict.
func (r *registry) Get(val any) (*Model, error) {
	typ := reflect.TypeOf(val)

	m, ok := r.models.Load(typ)
	if ok {
		return m.(*Model), nil
	}
	if r.strict {
		if typ == nil {
			return nil, errs.NewErrUnknownModel("<nil>")
		}
		return nil, errs.NewErrUnknownModel(typ.String())
	}

	return r.Register(val)
}

// Register registers a model in the registry with the given options.
// It parses the model and applies the provided options before storing it.
func (r *registry) Register(val any, opts ...Option) (*Model, error) {
	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		err = opt(m)
		if err != nil {
			return nil, err
		}
	}

	r.models.Store(reflect.TypeOf(val), m)
	return m, nil
}

// parseModel parses the struct behind val and returns a new model or an error.
// orm:"key1=value1,key2=value2"
func (r *registry) parseModel(val any) (*Model, error) {
	typ := reflect.TypeOf(val)

	// 只支持一级指针，例如 *User，不支持 **User 和 User
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	typ = typ.Elem()

	numField := typ.NumField()
	fields := make([]*Field, 0, numField)
	fds := make(map[string]*Field, numField)
	colMap := make(map[string]*Field, numField)

	for i := 0; i < numField; i++ {
		fdStruct := typ.Field(i)
		// 非导出字段既取不到值，也不应该映射到列上
		if !fdStruct.IsExported() {
			continue
		}

		tags, err := r.parseTag(fdStruct.Tag)
		if err != nil {
			return nil, err
		}

		colName := tags[tagKeyColumn]
		if colName == "" {
			// ItemId -> item_id
			colName = underscoreName(fdStruct.Name)
		}
		baseName := tags[tagKeyBase]
		if baseName == "" {
			baseName = colName
		}

		f := &Field{
			ColName:  colName,
			BaseName: baseName,
			GoName:   fdStruct.Name,
			Type:     fdStruct.Type,
			Index:    i,
			Offset:   fdStruct.Offset,
		}
		fields = append(fields, f)
		fds[fdStruct.Name] = f
		colMap[colName] = f
	}

	var tableName string
	if tn, ok := val.(TableName); ok {
		tableName = tn.TableName()
	}
	if tableName == "" {
		tableName = underscoreName(typ.Name())
	}

	return &Model{
		TableName: tableName,
		Fields:    fields,
		FieldMap:  fds,
		ColumnMap: colMap,
	}, nil
}

// parseTag parses the given struct tag and returns a map of key-value pairs.
// If the tag is empty, it returns an empty map and no error.
func (r *registry) parseTag(tag reflect.StructTag) (map[string]string, error) {
	ormTag := tag.Get(tagORMName)
	if ormTag == "" {
		// 返回一个空的 map，这样调用者就不需要判断 nil 了
		return map[string]string{}, nil
	}

	pairs := strings.Split(ormTag, ",")
	res := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			return nil, errs.NewErrInvalidTagContent(pair)
		}
		res[kv[0]] = kv[1]
	}

	return res, nil
}

// underscoreName converts a Go identifier to snake case.
// UserName -> user_name
func underscoreName(name string) string {
	var buf []byte
	for i, v := range name {
		if unicode.IsUpper(v) {
			if i != 0 {
				buf = append(buf, '_')
			}
			buf = append(buf, byte(unicode.ToLower(v)))
		} else {
			buf = append(buf, byte(v))
		}
	}
	return string(buf)
}

// WithTableName is an Option that sets the table name for a Model.
func WithTableName(tableName string) Option {
	return func(model *Model) error {
		model.TableName = tableName
		return nil
	}
}

// WithColumnName sets the mapped column name of a field.
func WithColumnName(field, columnName string) Option {
	return func(model *Model) error {
		fd, ok := model.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		delete(model.ColumnMap, fd.ColName)
		fd.ColName = columnName
		model.ColumnMap[columnName] = fd
		return nil
	}
}

// WithBaseColumnName sets the base column name of a field.
func WithBaseColumnName(field, baseName string) Option {
	return func(model *Model) error {
		fd, ok := model.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		fd.BaseName = baseName
		return nil
	}
}
