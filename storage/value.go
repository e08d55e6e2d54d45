package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"
)

// TypedValue is a tagged union with one variant per DataType. Exactly one
// of the fields is meaningful, selected by Type. Construct values with the
// IntValue/FloatValue/CharValue/StringValue helpers rather than the struct
// literal directly.
type TypedValue struct {
	Type DataType
	i    int64
	f    float64
	c    rune
	s    string
}

func IntValue(i int64) TypedValue     { return TypedValue{Type: TypeInt, i: i} }
func FloatValue(f float64) TypedValue { return TypedValue{Type: TypeFloat, f: f} }
func CharValue(c rune) TypedValue     { return TypedValue{Type: TypeChar, c: c} }
func StringValue(s string) TypedValue { return TypedValue{Type: TypeString, s: s} }

func (v TypedValue) Int() int64    { return v.i }
func (v TypedValue) Float() float64 { return v.f }
func (v TypedValue) Char() rune    { return v.c }
func (v TypedValue) String() string {
	switch v.Type {
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeChar:
		return string(v.c)
	case TypeString:
		return v.s
	default:
		return ""
	}
}

// Equal reports componentwise equality
func (v TypedValue) Equal(other TypedValue) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeInt:
		return v.i == other.i
	case TypeFloat:
		return v.f == other.f
	case TypeChar:
		return v.c == other.c
	case TypeString:
		return v.s == other.s
	default:
		return false
	}
}

// -------------------------------------------------------------------------
// Binary codec — positional, length-prefixed, little-endian.
// -------------------------------------------------------------------------

// encode produces the on-disk cell form for v.
func encode(v TypedValue) []byte {
	switch v.Type {
	case TypeInt:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v.i))
		return buf
	case TypeFloat:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.f))
		return buf
	case TypeChar:
		return []byte{byte(v.c)}
	case TypeString:
		data := []byte(v.s)
		buf := make([]byte, 8+len(data))
		binary.LittleEndian.PutUint64(buf, uint64(len(data)))
		copy(buf[8:], data)
		return buf
	default:
		return nil
	}
}

// decode reads exactly the bytes determined by t from r. A short read at
// any point is reported as IoError — the table file iterator relies on
// this to detect end-of-stream.
func decode(t DataType, r io.Reader) (TypedValue, error) {
	switch t {
	case TypeInt:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return TypedValue{}, wrapIO(err)
		}
		return IntValue(int64(binary.LittleEndian.Uint64(buf[:]))), nil
	case TypeFloat:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return TypedValue{}, wrapIO(err)
		}
		return FloatValue(math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))), nil
	case TypeChar:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return TypedValue{}, wrapIO(err)
		}
		return CharValue(rune(buf[0])), nil
	case TypeString:
		var lenBuf [8]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return TypedValue{}, wrapIO(err)
		}
		n := binary.LittleEndian.Uint64(lenBuf[:])
		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			return TypedValue{}, wrapIO(err)
		}
		if !utf8.Valid(data) {
			return TypedValue{}, wrapIO(fmt.Errorf("invalid UTF-8 string"))
		}
		return StringValue(string(data)), nil
	default:
		return TypedValue{}, wrapIO(fmt.Errorf("unknown data type %d", t))
	}
}

// -------------------------------------------------------------------------
// Coercion matrix.
// -------------------------------------------------------------------------

// coerce converts v to the target type following a fixed widening/parsing
// matrix: identity always; int widens to float; char and string parse to
// int or float; char converts to string; a one-rune string converts to
// char. Float converts to nothing else, and int to neither char nor
// string. It never performs I/O and its only failure mode is
// InvalidValueError.
func coerce(v TypedValue, target DataType) (TypedValue, error) {
	if v.Type == target {
		return v, nil
	}

	switch v.Type {
	case TypeInt:
		switch target {
		case TypeFloat:
			return FloatValue(float64(v.i)), nil
		}
	case TypeFloat:
		// Float widens to nothing else losslessly; only identity allowed.
	case TypeChar:
		switch target {
		case TypeInt:
			n, err := strconv.ParseInt(string(v.c), 10, 64)
			if err != nil {
				return TypedValue{}, &InvalidValueError{Value: v, Target: target}
			}
			return IntValue(n), nil
		case TypeFloat:
			f, err := strconv.ParseFloat(string(v.c), 64)
			if err != nil {
				return TypedValue{}, &InvalidValueError{Value: v, Target: target}
			}
			return FloatValue(f), nil
		case TypeString:
			return StringValue(string(v.c)), nil
		}
	case TypeString:
		switch target {
		case TypeInt:
			n, err := strconv.ParseInt(v.s, 10, 64)
			if err != nil {
				return TypedValue{}, &InvalidValueError{Value: v, Target: target}
			}
			return IntValue(n), nil
		case TypeFloat:
			f, err := strconv.ParseFloat(v.s, 64)
			if err != nil {
				return TypedValue{}, &InvalidValueError{Value: v, Target: target}
			}
			return FloatValue(f), nil
		case TypeChar:
			runes := []rune(v.s)
			if len(runes) != 1 {
				return TypedValue{}, &InvalidValueError{Value: v, Target: target}
			}
			return CharValue(runes[0]), nil
		}
	}

	return TypedValue{}, &InvalidValueError{Value: v, Target: target}
}
