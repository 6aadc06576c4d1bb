package animation

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"
)

// Kind identifies the numeric type of a parameter field.
type Kind uint8

// The six parameter kinds a record field may have.
const (
	KindInvalid Kind = iota
	KindU32
	KindU64
	KindI32
	KindI64
	KindF32
	KindF64
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindU32:     "u32",
	KindU64:     "u64",
	KindI32:     "i32",
	KindI64:     "i64",
	KindF32:     "f32",
	KindF64:     "f64",
}

// String returns the short ABI name of the kind ("u32", "f64", ...).
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts a short kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if k != int(KindInvalid) && name == strings.ToLower(s) {
			return Kind(k), nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: unknown kind %q", ErrParamKind, s)
}

func kindOf(k reflect.Kind) Kind {
	switch k {
	case reflect.Uint32:
		return KindU32
	case reflect.Uint64:
		return KindU64
	case reflect.Int32:
		return KindI32
	case reflect.Int64:
		return KindI64
	case reflect.Float32:
		return KindF32
	case reflect.Float64:
		return KindF64
	default:
		return KindInvalid
	}
}

// Value is a tagged scalar holding one parameter value.
// Integers are stored as their two's complement bits, floats as IEEE bits.
type Value struct {
	kind Kind
	bits uint64
}

// U32 returns a u32 Value.
func U32(v uint32) Value { return Value{kind: KindU32, bits: uint64(v)} }

// U64 returns a u64 Value.
func U64(v uint64) Value { return Value{kind: KindU64, bits: v} }

// I32 returns an i32 Value.
func I32(v int32) Value { return Value{kind: KindI32, bits: uint64(int64(v))} }

// I64 returns an i64 Value.
func I64(v int64) Value { return Value{kind: KindI64, bits: uint64(v)} }

// F32 returns an f32 Value.
func F32(v float32) Value { return Value{kind: KindF32, bits: uint64(math.Float32bits(v))} }

// F64 returns an f64 Value.
func F64(v float64) Value { return Value{kind: KindF64, bits: math.Float64bits(v)} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// U32 returns the value as uint32. Only meaningful for KindU32.
func (v Value) U32() uint32 { return uint32(v.bits) }

// U64 returns the value as uint64. Only meaningful for KindU64.
func (v Value) U64() uint64 { return v.bits }

// I32 returns the value as int32. Only meaningful for KindI32.
func (v Value) I32() int32 { return int32(int64(v.bits)) }

// I64 returns the value as int64. Only meaningful for KindI64.
func (v Value) I64() int64 { return int64(v.bits) }

// F32 returns the value as float32. Only meaningful for KindF32.
func (v Value) F32() float32 { return math.Float32frombits(uint32(v.bits)) }

// F64 returns the value as float64. Only meaningful for KindF64.
func (v Value) F64() float64 { return math.Float64frombits(v.bits) }

// Float64 converts any kind to float64, for JSON output and metrics.
// u64/i64 values above 2^53 lose precision.
func (v Value) Float64() float64 {
	switch v.kind {
	case KindU32:
		return float64(v.U32())
	case KindU64:
		return float64(v.U64())
	case KindI32:
		return float64(v.I32())
	case KindI64:
		return float64(v.I64())
	case KindF32:
		return float64(v.F32())
	case KindF64:
		return v.F64()
	default:
		return 0
	}
}

// String formats the value in its natural notation.
func (v Value) String() string {
	switch v.kind {
	case KindU32, KindU64:
		return fmt.Sprintf("%d", v.bits)
	case KindI32, KindI64:
		return fmt.Sprintf("%d", v.I64())
	case KindF32:
		return fmt.Sprintf("%g", v.F32())
	case KindF64:
		return fmt.Sprintf("%g", v.F64())
	default:
		return "<invalid>"
	}
}

// ValueFromFloat converts a float (as decoded from JSON, YAML or MQTT) into a
// Value of the given kind. NaN and infinities are rejected for every kind,
// integer kinds reject fractional or out-of-range input, and f32 rejects
// magnitudes that would round to infinity.
func ValueFromFloat(kind Kind, f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: %g is not a valid %s", ErrParamKind, f, kind)
	}
	integral := f == math.Trunc(f)
	switch kind {
	case KindU32:
		if !integral || f < 0 || f > math.MaxUint32 {
			return Value{}, fmt.Errorf("%w: %g is not a valid u32", ErrParamKind, f)
		}
		return U32(uint32(f)), nil
	case KindU64:
		if !integral || f < 0 || f >= math.MaxUint64 {
			return Value{}, fmt.Errorf("%w: %g is not a valid u64", ErrParamKind, f)
		}
		return U64(uint64(f)), nil
	case KindI32:
		if !integral || f < math.MinInt32 || f > math.MaxInt32 {
			return Value{}, fmt.Errorf("%w: %g is not a valid i32", ErrParamKind, f)
		}
		return I32(int32(f)), nil
	case KindI64:
		if !integral || f < math.MinInt64 || f >= math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %g is not a valid i64", ErrParamKind, f)
		}
		return I64(int64(f)), nil
	case KindF32:
		if math.Abs(f) > math.MaxFloat32 {
			return Value{}, fmt.Errorf("%w: %g is out of range for f32", ErrParamKind, f)
		}
		return F32(float32(f)), nil
	case KindF64:
		return F64(f), nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrParamKind, kind)
	}
}

// ParamField describes one field of a parameter record.
type ParamField struct {
	Name  string
	Kind  Kind
	index int
}

// Schema is the reflected field table of a parameter record type.
type Schema struct {
	fields []ParamField
	byName map[string]int
}

// SchemaOf reflects over P and returns its field table.
//
// P must be a struct. Exported fields become parameters, named by their
// `param:"..."` tag or, without one, by the snake_case field name. A tag of
// "-" skips the field. Any parameter field that is not u32/u64/i32/i64/f32/f64
// makes the record invalid.
func SchemaOf[P any]() (*Schema, error) {
	t := reflect.TypeFor[P]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidParams, t)
	}

	s := &Schema{byName: make(map[string]int, t.NumField())}
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Tag.Get("param")
		if name == "-" {
			continue
		}
		if name == "" {
			name = snakeCase(sf.Name)
		}
		kind := kindOf(sf.Type.Kind())
		if kind == KindInvalid {
			return nil, fmt.Errorf("%w: field %s.%s has type %s (want one of u32, u64, i32, i64, f32, f64)",
				ErrInvalidParams, t.Name(), sf.Name, sf.Type)
		}
		if _, dup := s.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter name %q", ErrInvalidParams, name)
		}
		s.byName[name] = len(s.fields)
		s.fields = append(s.fields, ParamField{Name: name, Kind: kind, index: i})
	}
	return s, nil
}

// Fields returns the parameter fields in declaration order.
func (s *Schema) Fields() []ParamField {
	return append([]ParamField(nil), s.fields...)
}

// Lookup finds a field by name.
func (s *Schema) Lookup(name string) (ParamField, bool) {
	i, ok := s.byName[name]
	if !ok {
		return ParamField{}, false
	}
	return s.fields[i], true
}

// get reads one field of the record pointed to by rec.
func (s *Schema) get(rec any, name string) (Value, error) {
	f, ok := s.Lookup(name)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	fv := reflect.ValueOf(rec).Elem().Field(f.index)
	switch f.Kind {
	case KindU32, KindU64:
		return Value{kind: f.Kind, bits: fv.Uint()}, nil
	case KindI32, KindI64:
		return Value{kind: f.Kind, bits: uint64(fv.Int())}, nil
	case KindF32:
		return F32(float32(fv.Float())), nil
	default:
		return F64(fv.Float()), nil
	}
}

// set writes one field of the record pointed to by rec. No other field is touched.
func (s *Schema) set(rec any, name string, v Value) error {
	f, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if v.kind != f.Kind {
		return fmt.Errorf("%w: %q is %s, got %s", ErrParamKind, name, f.Kind, v.kind)
	}
	fv := reflect.ValueOf(rec).Elem().Field(f.index)
	switch f.Kind {
	case KindU32, KindU64:
		fv.SetUint(v.U64())
	case KindI32, KindI64:
		fv.SetInt(v.I64())
	case KindF32:
		fv.SetFloat(float64(v.F32()))
	default:
		fv.SetFloat(v.F64())
	}
	return nil
}

// snakeCase converts "MinHue" to "min_hue" and "HueDistRads" to "hue_dist_rads".
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
