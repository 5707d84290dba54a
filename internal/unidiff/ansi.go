package unidiff

import (
	"strconv"
	"strings"
)

// sgrState tracks the running SGR attributes while walking colored diff
// text. git colors whole lines, so the state at the start of a line is what
// we attach to it.
type sgrState struct {
	style Style
}

// stripLine removes all escape sequences from one raw line, updating the
// running SGR state as sequences are consumed. It returns the clean text and
// the style that was active when the line's first visible byte appeared.
func (st *sgrState) stripLine(raw string) (string, Style) {
	if !strings.ContainsRune(raw, 0x1b) {
		return raw, st.style
	}
	var b strings.Builder
	lineStyle := st.style
	sawText := false
	i := 0
	for i < len(raw) {
		if raw[i] == 0x1b {
			next := consumeEscape(raw, i)
			if params, ok := sgrParams(raw[i:next]); ok {
				st.apply(params)
				if !sawText {
					lineStyle = st.style
				}
			}
			i = next
			continue
		}
		if !sawText {
			sawText = true
			lineStyle = st.style
		}
		b.WriteByte(raw[i])
		i++
	}
	return b.String(), lineStyle
}

// consumeEscape consumes an ANSI escape sequence starting at position i and
// returns the position just past it.
func consumeEscape(s string, i int) int {
	if i >= len(s) || s[i] != 0x1b {
		if i+1 > len(s) {
			return len(s)
		}
		return i + 1
	}
	j := i + 1
	if j >= len(s) {
		return j
	}
	switch s[j] {
	case '[': // CSI
		j++
		for j < len(s) {
			c := s[j]
			j++
			if c >= 0x40 && c <= 0x7e {
				break
			}
		}
	case ']': // OSC
		j++
		for j < len(s) && s[j] != 0x07 {
			j++
		}
		if j < len(s) {
			j++
		}
	case 'P', 'X', '^', '_': // DCS, SOS, PM, APC
		j++
		for j < len(s) {
			if s[j] == 0x1b {
				j++
				break
			}
			j++
		}
	default:
		j++
	}
	if j <= i {
		return i + 1
	}
	return j
}

// sgrParams extracts the numeric parameters of a CSI ... m sequence.
// Returns ok=false for every other kind of escape.
func sgrParams(seq string) ([]int, bool) {
	if len(seq) < 3 || seq[0] != 0x1b || seq[1] != '[' || seq[len(seq)-1] != 'm' {
		return nil, false
	}
	body := seq[2 : len(seq)-1]
	if body == "" {
		return []int{0}, true
	}
	parts := strings.Split(body, ";")
	params := make([]int, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			params = append(params, 0)
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		params = append(params, n)
	}
	return params, true
}

func (st *sgrState) apply(params []int) {
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			st.style = Style{}
		case p == 1:
			st.style.Bold = true
		case p == 2:
			st.style.Faint = true
		case p == 22:
			st.style.Bold = false
			st.style.Faint = false
		case p >= 30 && p <= 37:
			st.style.Fg = strconv.Itoa(p - 30)
		case p >= 90 && p <= 97:
			st.style.Fg = strconv.Itoa(p - 90 + 8)
		case p == 39:
			st.style.Fg = ""
		case p >= 40 && p <= 47:
			st.style.Bg = strconv.Itoa(p - 40)
		case p >= 100 && p <= 107:
			st.style.Bg = strconv.Itoa(p - 100 + 8)
		case p == 49:
			st.style.Bg = ""
		case p == 38 || p == 48:
			// extended color: 38;5;N or 38;2;R;G;B
			if i+1 >= len(params) {
				return
			}
			var col string
			switch params[i+1] {
			case 5:
				if i+2 < len(params) {
					col = strconv.Itoa(params[i+2])
				}
				i += 2
			case 2:
				if i+4 < len(params) {
					col = rgbHex(params[i+2], params[i+3], params[i+4])
				}
				i += 4
			default:
				return
			}
			if p == 38 {
				st.style.Fg = col
			} else {
				st.style.Bg = col
			}
		}
	}
}

func rgbHex(r, g, b int) string {
	const hex = "0123456789abcdef"
	out := make([]byte, 7)
	out[0] = '#'
	for i, v := range []int{r, g, b} {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[1+2*i] = hex[v>>4]
		out[2+2*i] = hex[v&0xf]
	}
	return string(out)
}
