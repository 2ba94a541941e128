package matcher

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fjglira/stepbinder/internal/domain"
)

// ConvertFunc converts one extracted argument to a value of some type.
type ConvertFunc func(value string) (any, error)

// Hook converts arguments for types the built-in conversions do not know,
// such as enumerations. handled is false when the hook declines typeName.
type Hook interface {
	Convert(value, typeName string) (v any, handled bool, err error)
}

// Converter converts extracted argument strings to declared parameter types.
type Converter struct {
	mu    sync.RWMutex
	funcs map[string]ConvertFunc
	hooks []Hook
}

// NewConverter creates a Converter with only the built-in conversions.
func NewConverter() *Converter {
	return &Converter{funcs: make(map[string]ConvertFunc)}
}

// Register sets the conversion for an exact type name, taking precedence
// over built-ins.
func (c *Converter) Register(typeName string, fn ConvertFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs[typeName] = fn
}

// AddHook appends a fallback hook consulted after built-ins.
func (c *Converter) AddHook(h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

// Convert converts value to typeName. Failures are KindConversion errors.
func (c *Converter) Convert(value, typeName string) (any, error) {
	c.mu.RLock()
	fn, ok := c.funcs[typeName]
	hooks := c.hooks
	c.mu.RUnlock()

	if ok {
		v, err := fn(value)
		if err != nil {
			return nil, conversionError(value, typeName, err)
		}
		return v, nil
	}

	v, known, err := convertBuiltin(value, typeName)
	if known {
		if err != nil {
			return nil, conversionError(value, typeName, err)
		}
		return v, nil
	}

	for _, h := range hooks {
		v, handled, err := h.Convert(value, typeName)
		if !handled {
			continue
		}
		if err != nil {
			return nil, conversionError(value, typeName, err)
		}
		return v, nil
	}

	return nil, conversionError(value, typeName, fmt.Errorf("no conversion registered for type %s", typeName))
}

func conversionError(value, typeName string, cause error) *domain.Error {
	return domain.NewKindError(domain.KindConversion, "convert",
		fmt.Sprintf("cannot convert %q to %s", value, typeName), cause)
}

// convertBuiltin handles Go scalar types. known is false for other types.
func convertBuiltin(value, typeName string) (v any, known bool, err error) {
	s := strings.TrimSpace(value)
	switch typeName {
	case "string":
		return value, true, nil
	case "any", "interface{}":
		return value, true, nil
	case "bool":
		b, err := strconv.ParseBool(strings.ToLower(s))
		return b, true, err
	case "int":
		n, err := strconv.ParseInt(s, 10, strconv.IntSize)
		return int(n), true, err
	case "int8":
		n, err := strconv.ParseInt(s, 10, 8)
		return int8(n), true, err
	case "int16":
		n, err := strconv.ParseInt(s, 10, 16)
		return int16(n), true, err
	case "int32", "rune":
		n, err := strconv.ParseInt(s, 10, 32)
		return int32(n), true, err
	case "int64":
		n, err := strconv.ParseInt(s, 10, 64)
		return n, true, err
	case "uint":
		n, err := strconv.ParseUint(s, 10, strconv.IntSize)
		return uint(n), true, err
	case "uint8", "byte":
		n, err := strconv.ParseUint(s, 10, 8)
		return uint8(n), true, err
	case "uint16":
		n, err := strconv.ParseUint(s, 10, 16)
		return uint16(n), true, err
	case "uint32":
		n, err := strconv.ParseUint(s, 10, 32)
		return uint32(n), true, err
	case "uint64":
		n, err := strconv.ParseUint(s, 10, 64)
		return n, true, err
	case "float32":
		f, err := strconv.ParseFloat(s, 32)
		return float32(f), true, err
	case "float64":
		f, err := strconv.ParseFloat(s, 64)
		return f, true, err
	case "time.Duration":
		d, err := time.ParseDuration(s)
		return d, true, err
	}
	return nil, false, nil
}
