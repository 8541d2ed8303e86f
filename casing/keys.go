package casing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/stoewer/go-strcase"
)

type Case string

const (
	None   Case = ""
	Snake  Case = "snake"
	Camel  Case = "camel"
	Pascal Case = "pascal"
)

// ParseCase accepts snake, camel and pascal along with their common aliases.
func ParseCase(value string) (Case, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "":
		return None, nil
	case "snake", "snake_case", "snakecase":
		return Snake, nil
	case "camel", "camelcase", "lower_camel":
		return Camel, nil
	case "pascal", "pascalcase", "upper_camel":
		return Pascal, nil
	default:
		return None, fmt.Errorf("casing: unsupported case %q", value)
	}
}

type Options struct {
	// Exclude lists keys that are kept verbatim.
	Exclude []string
	// StopPaths lists dotted key paths whose values are not walked.
	StopPaths []string
	// Shallow converts only the keys of the outermost objects.
	Shallow bool
}

type Option func(*Options)

func WithExclude(keys ...string) Option {
	return func(o *Options) {
		o.Exclude = append(o.Exclude, keys...)
	}
}

func WithStopPaths(paths ...string) Option {
	return func(o *Options) {
		o.StopPaths = append(o.StopPaths, paths...)
	}
}

func WithShallow() Option {
	return func(o *Options) {
		o.Shallow = true
	}
}

func WithOptions(in Options) Option {
	return func(o *Options) {
		o.Exclude = append(o.Exclude, in.Exclude...)
		o.StopPaths = append(o.StopPaths, in.StopPaths...)
		o.Shallow = o.Shallow || in.Shallow
	}
}

// Key converts a single key to the requested case.
func Key(key string, c Case) string {
	switch c {
	case Snake:
		return strcase.SnakeCase(splitDigits(key))
	case Camel:
		return strcase.LowerCamelCase(key)
	case Pascal:
		return strcase.UpperCamelCase(key)
	default:
		return key
	}
}

// splitDigits marks letter/digit boundaries as word breaks so "street1"
// and "line2Address" snake to "street_1" and "line_2_address", the inverse
// of the camel conversion.
func splitDigits(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	var prev rune
	for _, r := range key {
		if prev != 0 && (isLetter(prev) && isDigit(r) || isDigit(prev) && isLetter(r)) {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func SnakeKeys(value any, opts ...Option) any {
	return Transform(value, Snake, opts...)
}

func CamelKeys(value any, opts ...Option) any {
	return Transform(value, Camel, opts...)
}

func PascalKeys(value any, opts ...Option) any {
	return Transform(value, Pascal, opts...)
}

// Transform returns a copy of value whose object keys are rewritten to c.
// The input is never mutated.
func Transform(value any, c Case, opts ...Option) any {
	if c == None {
		return value
	}
	options := Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	w := newWalker(c, options)
	return w.walk(value, "", 0)
}

// TransformJSON decodes raw, rewrites its keys and encodes it again. Numbers
// keep their original textual form.
func TransformJSON(raw []byte, c Case, opts ...Option) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || c == None {
		return raw, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("casing: decode json: %w", err)
	}
	converted := Transform(decoded, c, opts...)

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(converted); err != nil {
		return nil, fmt.Errorf("casing: encode json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type visitKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type walker struct {
	target    Case
	exclude   map[string]struct{}
	stopPaths map[string]struct{}
	shallow   bool
	seen      map[visitKey]any
}

func newWalker(c Case, options Options) *walker {
	w := &walker{
		target:    c,
		exclude:   map[string]struct{}{},
		stopPaths: map[string]struct{}{},
		shallow:   options.Shallow,
		seen:      map[visitKey]any{},
	}
	for _, key := range options.Exclude {
		w.exclude[key] = struct{}{}
	}
	for _, path := range options.StopPaths {
		path = strings.TrimSpace(path)
		if path != "" {
			w.stopPaths[path] = struct{}{}
		}
	}
	return w
}

func (w *walker) walk(value any, path string, depth int) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case string, bool, float64, float32, int, int64, int32, uint, uint64, json.Number:
		return value
	case time.Time, *time.Time, []byte, json.RawMessage:
		return value
	case map[string]any:
		if w.shallow && depth > 0 {
			return value
		}
		return w.walkMap(typed, path, depth)
	case []any:
		return w.walkSlice(typed, path, depth)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		if w.shallow && depth > 0 {
			return value
		}
		return w.walkReflectMap(rv, path, depth)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return value
		}
		return w.walkReflectSlice(rv, path, depth)
	case reflect.Array:
		return w.walkReflectArray(rv, path, depth)
	default:
		return value
	}
}

func (w *walker) walkMap(in map[string]any, path string, depth int) any {
	if in == nil {
		return in
	}
	id := visitKey{typ: reflect.TypeOf(in), ptr: reflect.ValueOf(in).Pointer()}
	if out, ok := w.seen[id]; ok {
		return out
	}
	out := make(map[string]any, len(in))
	w.seen[id] = out

	owners := make(map[string]string, len(in))
	for _, key := range sortedKeys(in) {
		converted := w.key(key)
		if owner, taken := owners[converted]; taken && owner == converted {
			continue
		}
		owners[converted] = key
		childPath := joinPath(path, key)
		if w.stopped(childPath) {
			out[converted] = in[key]
			continue
		}
		out[converted] = w.walk(in[key], childPath, depth+1)
	}
	return out
}

func (w *walker) walkSlice(in []any, path string, depth int) any {
	if in == nil {
		return in
	}
	if len(in) == 0 {
		return []any{}
	}
	id := visitKey{typ: reflect.TypeOf(in), ptr: reflect.ValueOf(in).Pointer(), len: len(in)}
	if out, ok := w.seen[id]; ok {
		return out
	}
	out := make([]any, len(in))
	w.seen[id] = out
	for i, item := range in {
		out[i] = w.walk(item, path, depth)
	}
	return out
}

func (w *walker) walkReflectMap(rv reflect.Value, path string, depth int) any {
	if rv.IsNil() {
		return rv.Interface()
	}
	id := visitKey{typ: rv.Type(), ptr: rv.Pointer()}
	if out, ok := w.seen[id]; ok {
		return out
	}
	out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
	w.seen[id] = out.Interface()

	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	owners := make(map[string]string, len(keys))
	keyType := rv.Type().Key()
	elemType := rv.Type().Elem()
	for _, key := range keys {
		original := key.String()
		converted := w.key(original)
		if owner, taken := owners[converted]; taken && owner == converted {
			continue
		}
		owners[converted] = original
		value := rv.MapIndex(key)
		childPath := joinPath(path, original)
		if !w.stopped(childPath) && value.IsValid() && value.CanInterface() {
			value = assignable(w.walk(value.Interface(), childPath, depth+1), value, elemType)
		}
		out.SetMapIndex(reflect.ValueOf(converted).Convert(keyType), value)
	}
	return out.Interface()
}

func (w *walker) walkReflectSlice(rv reflect.Value, path string, depth int) any {
	if rv.IsNil() || rv.Len() == 0 {
		return rv.Interface()
	}
	id := visitKey{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}
	if out, ok := w.seen[id]; ok {
		return out
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	w.seen[id] = out.Interface()
	elemType := rv.Type().Elem()
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if item.CanInterface() {
			item = assignable(w.walk(item.Interface(), path, depth), item, elemType)
		}
		out.Index(i).Set(item)
	}
	return out.Interface()
}

func (w *walker) walkReflectArray(rv reflect.Value, path string, depth int) any {
	out := reflect.New(rv.Type()).Elem()
	elemType := rv.Type().Elem()
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if item.CanInterface() {
			item = assignable(w.walk(item.Interface(), path, depth), item, elemType)
		}
		out.Index(i).Set(item)
	}
	return out.Interface()
}

func (w *walker) key(key string) string {
	if _, ok := w.exclude[key]; ok {
		return key
	}
	return Key(key, w.target)
}

func (w *walker) stopped(path string) bool {
	if len(w.stopPaths) == 0 {
		return false
	}
	_, ok := w.stopPaths[path]
	return ok
}

// assignable keeps the original element when the converted value no longer
// fits the container's element type.
func assignable(converted any, original reflect.Value, elemType reflect.Type) reflect.Value {
	if converted == nil {
		return reflect.Zero(elemType)
	}
	value := reflect.ValueOf(converted)
	if value.Type().AssignableTo(elemType) {
		return value
	}
	return original
}

func sortedKeys(in map[string]any) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(parent string, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
