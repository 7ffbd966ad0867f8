// Package scratch builds short per-frame strings (overlay labels, log
// lines) into a reusable byte buffer instead of going through fmt.
package scratch

import (
	"strconv"
	"unicode/utf8"
)

// Buffer is a growable byte buffer meant to be Reset every frame. It is not
// safe for concurrent use.
type Buffer struct{ b []byte }

// New returns a buffer with the given starting capacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 256
	}
	return &Buffer{b: make([]byte, 0, capacity)}
}

// Reset empties the buffer and keeps its memory.
func (s *Buffer) Reset() *Buffer { s.b = s.b[:0]; return s }

func (s *Buffer) Len() int      { return len(s.b) }
func (s *Buffer) Cap() int      { return cap(s.b) }
func (s *Buffer) Bytes() []byte { return s.b }

// String copies the contents out.
func (s *Buffer) String() string { return string(s.b) }

// Mark returns a position for From.
func (s *Buffer) Mark() int { return len(s.b) }

// From copies out what was written since mark.
func (s *Buffer) From(mark int) string { return string(s.b[mark:]) }

func (s *Buffer) S(v string) *Buffer { s.b = append(s.b, v...); return s }
func (s *Buffer) C(c byte) *Buffer   { s.b = append(s.b, c); return s }
func (s *Buffer) R(r rune) *Buffer   { s.b = utf8.AppendRune(s.b, r); return s }
func (s *Buffer) I(v int) *Buffer    { s.b = strconv.AppendInt(s.b, int64(v), 10); return s }
func (s *Buffer) U(v uint64) *Buffer { s.b = strconv.AppendUint(s.b, v, 10); return s }

// F appends v with prec digits after the point.
func (s *Buffer) F(v float64, prec int) *Buffer {
	s.b = strconv.AppendFloat(s.b, v, 'f', prec, 64)
	return s
}

// Pad appends n copies of c.
func (s *Buffer) Pad(n int, c byte) *Buffer {
	for ; n > 0; n-- {
		s.b = append(s.b, c)
	}
	return s
}

// PadLeft right-aligns what was written since mark to width columns.
func (s *Buffer) PadLeft(mark, width int, c byte) *Buffer {
	n := width - (len(s.b) - mark)
	if n <= 0 {
		return s
	}
	s.b = append(s.b, make([]byte, n)...)
	copy(s.b[mark+n:], s.b[mark:len(s.b)-n])
	for i := mark; i < mark+n; i++ {
		s.b[i] = c
	}
	return s
}

// Printf appends a format with a small verb set: %s %d %u %f %.Nf %%.
// Unknown verbs are written literally; missing arguments end the output.
func (s *Buffer) Printf(format string, args ...any) *Buffer {
	ai := 0
	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' {
			s.b = append(s.b, ch)
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			s.b = append(s.b, '%')
			i++
			continue
		}
		i++
		prec := 3
		if i < len(format) && format[i] == '.' {
			i++
			start := i
			for i < len(format) && format[i] >= '0' && format[i] <= '9' {
				i++
			}
			prec, _ = strconv.Atoi(format[start:i])
		}
		if i >= len(format) || ai >= len(args) {
			break
		}
		switch format[i] {
		case 's':
			s.b = append(s.b, toString(args[ai])...)
		case 'd':
			s.b = strconv.AppendInt(s.b, toInt64(args[ai]), 10)
		case 'u':
			s.b = strconv.AppendUint(s.b, uint64(toInt64(args[ai])), 10)
		case 'f':
			s.b = strconv.AppendFloat(s.b, toFloat64(args[ai]), 'f', prec, 64)
		default:
			s.b = append(s.b, '%', format[i])
		}
		ai++
	}
	return s
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case interface{ String() string }:
		return x.String()
	}
	return "?"
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return 0
}
