package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/skadiD/swallow/driver"
)

const (
	cellNull uint8 = iota
	cellInt
	cellUint
	cellFloat
	cellString
	cellBytes
	cellTime
	cellBool
)

// cell 带类型标记的单元格 保证解码后类型与原值一致
type cell struct {
	Kind uint8
	I    int64
	U    uint64
	F    float64
	S    string
	B    []byte
	T    time.Time
}

// entry 序列化格式 {value, expire}
type entry struct {
	Rows   []map[string]cell
	Expire int64
}

func toCell(v any) cell {
	switch x := v.(type) {
	case nil:
		return cell{Kind: cellNull}
	case int:
		return cell{Kind: cellInt, I: int64(x)}
	case int8:
		return cell{Kind: cellInt, I: int64(x)}
	case int16:
		return cell{Kind: cellInt, I: int64(x)}
	case int32:
		return cell{Kind: cellInt, I: int64(x)}
	case int64:
		return cell{Kind: cellInt, I: x}
	case uint:
		return cell{Kind: cellUint, U: uint64(x)}
	case uint8:
		return cell{Kind: cellUint, U: uint64(x)}
	case uint16:
		return cell{Kind: cellUint, U: uint64(x)}
	case uint32:
		return cell{Kind: cellUint, U: uint64(x)}
	case uint64:
		return cell{Kind: cellUint, U: x}
	case float32:
		return cell{Kind: cellFloat, F: float64(x)}
	case float64:
		return cell{Kind: cellFloat, F: x}
	case string:
		return cell{Kind: cellString, S: x}
	case []byte:
		return cell{Kind: cellBytes, B: x}
	case time.Time:
		return cell{Kind: cellTime, T: x}
	case bool:
		if x {
			return cell{Kind: cellBool, I: 1}
		}
		return cell{Kind: cellBool}
	default:
		return cell{Kind: cellString, S: fmt.Sprint(x)}
	}
}

func (c cell) value() any {
	switch c.Kind {
	case cellInt:
		return c.I
	case cellUint:
		return c.U
	case cellFloat:
		return c.F
	case cellString:
		return c.S
	case cellBytes:
		// gob 不区分空切片与 nil
		if c.B == nil {
			return []byte{}
		}
		return c.B
	case cellTime:
		return c.T
	case cellBool:
		return c.I == 1
	}
	return nil
}

func encode(rows Rows, expire int64) ([]byte, error) {
	e := entry{Rows: make([]map[string]cell, len(rows)), Expire: expire}
	for i, row := range rows {
		m := make(map[string]cell, len(row))
		for k, v := range row {
			m[k] = toCell(v)
		}
		e.Rows[i] = m
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (Rows, int64, error) {
	var e entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return nil, 0, err
	}
	rows := make(Rows, len(e.Rows))
	for i, m := range e.Rows {
		row := make(driver.Row, len(m))
		for k, c := range m {
			row[k] = c.value()
		}
		rows[i] = row
	}
	return rows, e.Expire, nil
}
