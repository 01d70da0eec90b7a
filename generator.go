package database

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fexli/logger"
)

// GenOptions 实体生成参数
type GenOptions struct {
	// Package 生成文件的包名 缺省为 model
	Package string
	// Schema information_schema 中的 table_schema 为空时不过滤
	Schema string
	// Tables 仅生成这些表 为空时全部生成
	Tables []string
	// CustomTypes 表 -> 列 -> 自定义 Go 类型
	CustomTypes map[string]map[string]string
}

// ColumnInfo information_schema.columns 中的一列
type ColumnInfo struct {
	Table    string
	Name     string
	DataType string
	Nullable bool
	Primary  bool
	Auto     bool
}

// Columns 读取列信息 按表名与列序排列
func (db *DB) Columns(ctx context.Context, opts GenOptions) ([]ColumnInfo, error) {
	b := db.Table("information_schema.columns")
	if opts.Schema != "" {
		b.Where("table_schema", opts.Schema)
	}
	if len(opts.Tables) > 0 {
		b.Where("table_name @", opts.Tables)
	}
	rows, err := b.OrderBy([]string{"table_name", "ordinal_position"}).Many(ctx)
	if err != nil {
		return nil, err
	}

	cols := make([]ColumnInfo, 0, len(rows))
	for _, row := range rows {
		// MySQL 返回大写列名
		r := make(map[string]string, len(row))
		for k, v := range row {
			r[strings.ToLower(k)] = text(v)
		}
		def := strings.ToLower(r["column_default"])
		extra := strings.ToLower(r["extra"])
		c := ColumnInfo{
			Table:    r["table_name"],
			Name:     r["column_name"],
			DataType: strings.ToLower(r["data_type"]),
			Nullable: strings.EqualFold(r["is_nullable"], "YES"),
			Primary:  r["column_key"] == "PRI",
			Auto: strings.Contains(extra, "auto_increment") ||
				strings.HasPrefix(def, "nextval(") ||
				strings.EqualFold(r["is_identity"], "YES"),
		}
		// 无主键信息的后端按惯例取 id
		if _, ok := r["column_key"]; !ok && c.Name == "id" {
			c.Primary = true
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}

// GenerateEntities 为每张表生成一个实体文件 键为文件名
func (db *DB) GenerateEntities(ctx context.Context, opts GenOptions) (map[string][]byte, error) {
	cols, err := db.Columns(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.Package == "" {
		opts.Package = "model"
	}

	var tables []string
	byTable := make(map[string][]ColumnInfo)
	for _, c := range cols {
		if _, ok := byTable[c.Table]; !ok {
			tables = append(tables, c.Table)
		}
		byTable[c.Table] = append(byTable[c.Table], c)
	}
	sort.Strings(tables)

	files := make(map[string][]byte, len(tables))
	for _, table := range tables {
		src, err := generateStructForTable(opts, table, byTable[table])
		if err != nil {
			dbLog.Error(logger.WithContent("Error generating struct for table ", table, err))
			return nil, err
		}
		files["model_"+table+"_table.go"] = src
	}
	return files, nil
}

// WriteEntities 写入目录 已存在的文件会被覆盖
func WriteEntities(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, src, 0o644); err != nil {
			dbLog.Error(logger.WithContent("Error writing struct for table ", name, err))
			return err
		}
		dbLog.Notice(logger.WithContent("Struct written to file", path))
	}
	return nil
}

// 为指定表生成 Go struct
func generateStructForTable(opts GenOptions, table string, cols []ColumnInfo) ([]byte, error) {
	var (
		fields    []string
		meta      = []string{fmt.Sprintf("Table: %q", table)}
		needTypes bool
		idField   string
		nameField string
	)
	for _, c := range cols {
		jsonAttrs := []string{c.Name}
		goType, ok := opts.CustomTypes[table][c.Name]
		if !ok {
			var isZeroNull bool
			goType, isZeroNull = sqlTypeToGoType(c.Name, c.DataType, c.Nullable)
			if c.Nullable {
				if isZeroNull {
					jsonAttrs = append(jsonAttrs, "omitempty")
				} else if !strings.HasPrefix(goType, "[]") {
					goType = "*" + goType
				}
			}
		}
		if strings.Contains(goType, "types.") {
			needTypes = true
		}

		// 判断是否自增和主键
		ormStr := c.Name
		if c.Auto {
			ormStr += ",auto"
		}
		if c.Primary {
			ormStr += ",pk"
			if idField == "" {
				idField = c.Name
			}
		}
		if nameField == "" && (c.Name == "name" || c.Name == "title") {
			nameField = c.Name
		}
		fields = append(fields, fmt.Sprintf("\t%s %s `db:\"%s\" json:\"%s\" orm:\"%s\"`",
			CamelCase(c.Name), goType, c.Name, strings.Join(jsonAttrs, ","), ormStr))
	}
	if idField != "" {
		meta = append(meta, fmt.Sprintf("IDField: %q", idField))
	}
	if nameField != "" {
		meta = append(meta, fmt.Sprintf("NameField: %q", nameField))
	}

	name := CamelCase(table)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by swallow gen. DO NOT EDIT.\n\npackage %s\n\nimport (\n", opts.Package)
	fmt.Fprintf(&buf, "\t\"github.com/skadiD/swallow/orm\"\n")
	if needTypes {
		fmt.Fprintf(&buf, "\t\"github.com/skadiD/swallow/types\"\n")
	}
	fmt.Fprintf(&buf, ")\n\n// %s %s\ntype %s struct {\n%s\n}\n\n", name, table, name, strings.Join(fields, "\n"))
	fmt.Fprintf(&buf, "func (%s) Metadata() orm.Metadata {\n\treturn orm.Metadata{%s}\n}\n", name, strings.Join(meta, ", "))
	return format.Source(buf.Bytes())
}

// sqlTypeToGoType 数据库类型到 Go 类型 第二个返回值表示可空时不需要指针
func sqlTypeToGoType(columnName, dataType string, nullable bool) (string, bool) {
	t, _, _ := strings.Cut(dataType, "(")
	t = strings.TrimSpace(t)
	switch t {
	case "timestamp", "timestamptz", "timestamp without time zone", "timestamp with time zone", "datetime", "date":
		if nullable {
			return "types.ZeroNullJsonTime", true
		}
		return "types.JsonTime", false
	case "tinyint", "smallint", "int2", "smallserial":
		return "int16", false
	case "int", "integer", "int4", "mediumint", "serial":
		return "int", false
	case "bigint", "int8", "bigserial", "hugeint":
		return "int64", false
	case "boolean", "bool":
		return "bool", false
	case "real", "float4", "float":
		return "float32", false
	case "double", "double precision", "float8", "numeric", "decimal":
		return "float64", false
	case "char", "character", "varchar", "character varying", "text", "tinytext", "mediumtext", "longtext",
		"enum", "set", "json", "jsonb", "uuid":
		return "string", false
	case "bytea", "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary":
		return "[]byte", false
	case "geometry", "point":
		return "types.GeometryPoint", false
	}
	dbLog.Warning(logger.WithContent(columnName, "is unknown type:", dataType))
	return "string", false
}
