package vterm

// selectGraphicRendition applies SGR parameters to the cursor style.
// Colon sub-parameters arrive flattened, so 38:2:r:g:b and 38;2;r;g;b parse
// the same way.
func (v *VTerm) selectGraphicRendition(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}

	st := &v.cur.style
	for i := 0; i < len(params); i++ {
		param := params[i]
		switch {
		case param == 0:
			*st = Style{}
		case param == 1:
			st.Bold = true
		case param == 2:
			st.Dim = true
		case param == 3:
			st.Italic = true
		case param == 4:
			st.Underline = true
		case param == 5 || param == 6:
			st.Blink = true
		case param == 7:
			st.Reverse = true
		case param == 8:
			st.Hidden = true
		case param == 9:
			st.Strike = true
		case param == 21:
			st.Underline = true
		case param == 22:
			st.Bold = false
			st.Dim = false
		case param == 23:
			st.Italic = false
		case param == 24:
			st.Underline = false
		case param == 25:
			st.Blink = false
		case param == 27:
			st.Reverse = false
		case param == 28:
			st.Hidden = false
		case param == 29:
			st.Strike = false
		case param >= 30 && param <= 37:
			st.Fg = IndexedColor(param - 30)
		case param == 38:
			i = extendedColor(params, i, &st.Fg)
		case param == 39:
			st.Fg = Color{}
		case param >= 40 && param <= 47:
			st.Bg = IndexedColor(param - 40)
		case param == 48:
			i = extendedColor(params, i, &st.Bg)
		case param == 49:
			st.Bg = Color{}
		case param >= 90 && param <= 97:
			st.Fg = IndexedColor(param - 90 + 8)
		case param >= 100 && param <= 107:
			st.Bg = IndexedColor(param - 100 + 8)
		}
	}
}

// extendedColor parses the 5;n or 2;r;g;b tail of SGR 38/48 starting at
// params[i] and returns the index of the last consumed parameter.
func extendedColor(params []int, i int, c *Color) int {
	if i+1 >= len(params) {
		return i
	}
	switch params[i+1] {
	case 2:
		if i+4 < len(params) {
			*c = RGBColor(params[i+2], params[i+3], params[i+4])
			return i + 4
		}
		return len(params) - 1
	case 5:
		if i+2 < len(params) {
			*c = IndexedColor(params[i+2])
			return i + 2
		}
		return len(params) - 1
	}
	return i + 1
}
