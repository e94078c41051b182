package codec

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/protobuf/encoding/protowire"
)

// protoCodec writes structs in protobuf wire format without generated code.
// Field numbers come from the cbor keyasint tags. Mapping:
//
//	bool, uintN      varint
//	intN             zig-zag varint (sint64)
//	string, []byte   length-delimited
//	struct, *struct  length-delimited message
//	[]T              repeated T, one record per element
//	map[K]V          repeated entry message {1: key, 2: value}, sorted by key
//
// Packed repeated scalars are accepted on decode.
type protoCodec struct{}

func (protoCodec) Format() Format { return FormatProtobuf }

func (protoCodec) Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.New("codec: protobuf marshal of nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("codec: protobuf marshal needs a struct, got %s", rv.Type())
	}
	return appendMessage(nil, rv)
}

func (protoCodec) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("codec: protobuf unmarshal needs a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("codec: protobuf unmarshal needs a struct, got %s", rv.Type())
	}
	return consumeMessage(data, rv)
}

type fieldInfo struct {
	num   protowire.Number
	index int
}

type messageInfo struct {
	fields []fieldInfo
	byNum  map[protowire.Number]int
}

var messageInfos sync.Map // reflect.Type -> *messageInfo

func getMessageInfo(t reflect.Type) (*messageInfo, error) {
	if mi, ok := messageInfos.Load(t); ok {
		return mi.(*messageInfo), nil
	}

	mi := &messageInfo{byNum: make(map[protowire.Number]int)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("cbor")
		if !f.IsExported() || tag == "" || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if !strings.Contains(","+opts+",", ",keyasint,") {
			return nil, fmt.Errorf("codec: %s.%s: field tag needs keyasint", t, f.Name)
		}
		n, err := strconv.Atoi(name)
		if err != nil || n < int(protowire.MinValidNumber) || n > int(protowire.MaxValidNumber) {
			return nil, fmt.Errorf("codec: %s.%s: invalid field number %q", t, f.Name, name)
		}
		num := protowire.Number(n)
		if _, dup := mi.byNum[num]; dup {
			return nil, fmt.Errorf("codec: %s: duplicate field number %d", t, n)
		}
		mi.byNum[num] = i
		mi.fields = append(mi.fields, fieldInfo{num: num, index: i})
	}
	sort.Slice(mi.fields, func(a, b int) bool { return mi.fields[a].num < mi.fields[b].num })

	actual, _ := messageInfos.LoadOrStore(t, mi)
	return actual.(*messageInfo), nil
}

func appendMessage(b []byte, v reflect.Value) ([]byte, error) {
	mi, err := getMessageInfo(v.Type())
	if err != nil {
		return nil, err
	}
	for _, f := range mi.fields {
		if b, err = appendField(b, f.num, v.Field(f.index)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// appendField applies omission rules: nil pointers and empty values are not
// written, a non-nil pointer always is.
func appendField(b []byte, num protowire.Number, v reflect.Value) ([]byte, error) {
	var err error
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return b, nil
		}
		return appendValue(b, num, v.Elem())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			if v.Len() == 0 {
				return b, nil
			}
			return appendValue(b, num, v)
		}
		for i := 0; i < v.Len(); i++ {
			if b, err = appendValue(b, num, v.Index(i)); err != nil {
				return nil, err
			}
		}
		return b, nil
	case reflect.Map:
		return appendMap(b, num, v)
	case reflect.Struct:
		msg, err := appendMessage(nil, v)
		if err != nil {
			return nil, err
		}
		if len(msg) == 0 {
			return b, nil
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		return protowire.AppendBytes(b, msg), nil
	default:
		if v.IsZero() {
			return b, nil
		}
		return appendValue(b, num, v)
	}
}

func appendValue(b []byte, num protowire.Number, v reflect.Value) ([]byte, error) {
	switch v.Kind() {
	case reflect.Bool:
		b = protowire.AppendTag(b, num, protowire.VarintType)
		return protowire.AppendVarint(b, protowire.EncodeBool(v.Bool())), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b = protowire.AppendTag(b, num, protowire.VarintType)
		return protowire.AppendVarint(b, protowire.EncodeZigZag(v.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b = protowire.AppendTag(b, num, protowire.VarintType)
		return protowire.AppendVarint(b, v.Uint()), nil
	case reflect.String:
		b = protowire.AppendTag(b, num, protowire.BytesType)
		return protowire.AppendString(b, v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.Uint8 {
			break
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		return protowire.AppendBytes(b, v.Bytes()), nil
	case reflect.Struct:
		msg, err := appendMessage(nil, v)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		return protowire.AppendBytes(b, msg), nil
	}
	return nil, fmt.Errorf("codec: protobuf cannot encode %s", v.Type())
}

func appendMap(b []byte, num protowire.Number, v reflect.Value) ([]byte, error) {
	if v.Len() == 0 {
		return b, nil
	}
	keys := v.MapKeys()
	if err := sortMapKeys(keys); err != nil {
		return nil, err
	}
	for _, k := range keys {
		entry, err := appendField(nil, 1, k)
		if err != nil {
			return nil, err
		}
		if entry, err = appendField(entry, 2, v.MapIndex(k)); err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b, nil
}

func sortMapKeys(keys []reflect.Value) error {
	if len(keys) == 0 {
		return nil
	}
	switch keys[0].Kind() {
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	default:
		return fmt.Errorf("codec: protobuf cannot encode map key %s", keys[0].Type())
	}
	return nil
}

func consumeMessage(b []byte, v reflect.Value) error {
	mi, err := getMessageInfo(v.Type())
	if err != nil {
		return err
	}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		idx, ok := mi.byNum[num]
		if !ok {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		n, err := consumeField(b, typ, v.Field(idx))
		if err != nil {
			return fmt.Errorf("%s field %d: %w", v.Type(), num, err)
		}
		b = b[n:]
	}
	return nil
}

func consumeField(b []byte, typ protowire.Type, v reflect.Value) (int, error) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return consumeValue(b, typ, v.Elem())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return consumeValue(b, typ, v)
		}
		if typ == protowire.BytesType && isPackable(v.Type().Elem().Kind()) {
			return consumePacked(b, v)
		}
		elem := reflect.New(v.Type().Elem()).Elem()
		n, err := consumeValue(b, typ, elem)
		if err != nil {
			return 0, err
		}
		v.Set(reflect.Append(v, elem))
		return n, nil
	case reflect.Map:
		return consumeMapEntry(b, typ, v)
	default:
		return consumeValue(b, typ, v)
	}
}

func consumeValue(b []byte, typ protowire.Type, v reflect.Value) (int, error) {
	switch v.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if typ != protowire.VarintType {
			return 0, wireTypeError(typ, v)
		}
		x, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		return n, setVarint(v, x)
	case reflect.String:
		if typ != protowire.BytesType {
			return 0, wireTypeError(typ, v)
		}
		s, n := protowire.ConsumeString(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		v.SetString(s)
		return n, nil
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.Uint8 {
			break
		}
		if typ != protowire.BytesType {
			return 0, wireTypeError(typ, v)
		}
		raw, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		if len(raw) == 0 {
			v.SetBytes(nil)
		} else {
			v.SetBytes(bytes.Clone(raw))
		}
		return n, nil
	case reflect.Struct:
		if typ != protowire.BytesType {
			return 0, wireTypeError(typ, v)
		}
		raw, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		return n, consumeMessage(raw, v)
	}
	return 0, fmt.Errorf("codec: protobuf cannot decode into %s", v.Type())
}

func setVarint(v reflect.Value, x uint64) error {
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(protowire.DecodeBool(x))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := protowire.DecodeZigZag(x)
		if v.OverflowInt(i) {
			return fmt.Errorf("codec: value %d overflows %s", i, v.Type())
		}
		v.SetInt(i)
	default:
		if v.OverflowUint(x) {
			return fmt.Errorf("codec: value %d overflows %s", x, v.Type())
		}
		v.SetUint(x)
	}
	return nil
}

func consumePacked(b []byte, v reflect.Value) (int, error) {
	raw, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	for len(raw) > 0 {
		x, m := protowire.ConsumeVarint(raw)
		if m < 0 {
			return 0, protowire.ParseError(m)
		}
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := setVarint(elem, x); err != nil {
			return 0, err
		}
		v.Set(reflect.Append(v, elem))
		raw = raw[m:]
	}
	return n, nil
}

func consumeMapEntry(b []byte, typ protowire.Type, v reflect.Value) (int, error) {
	if typ != protowire.BytesType {
		return 0, wireTypeError(typ, v)
	}
	raw, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}

	key := reflect.New(v.Type().Key()).Elem()
	val := reflect.New(v.Type().Elem()).Elem()
	for len(raw) > 0 {
		num, etyp, m := protowire.ConsumeTag(raw)
		if m < 0 {
			return 0, protowire.ParseError(m)
		}
		raw = raw[m:]
		switch num {
		case 1:
			m, err := consumeField(raw, etyp, key)
			if err != nil {
				return 0, fmt.Errorf("map key: %w", err)
			}
			raw = raw[m:]
		case 2:
			m, err := consumeField(raw, etyp, val)
			if err != nil {
				return 0, fmt.Errorf("map value: %w", err)
			}
			raw = raw[m:]
		default:
			m = protowire.ConsumeFieldValue(num, etyp, raw)
			if m < 0 {
				return 0, protowire.ParseError(m)
			}
			raw = raw[m:]
		}
	}

	if v.IsNil() {
		v.Set(reflect.MakeMap(v.Type()))
	}
	v.SetMapIndex(key, val)
	return n, nil
}

func isPackable(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func wireTypeError(typ protowire.Type, v reflect.Value) error {
	return fmt.Errorf("codec: unexpected wire type %d for %s", typ, v.Type())
}
