package vterm

import (
	"unicode/utf8"

	"github.com/andyrewlee/ptyhost/internal/perf"
)

// Parser limits. Anything past them is discarded and counted as an anomaly.
const (
	maxParams     = 32
	maxParamValue = 65535
	maxIntermed   = 4
	maxOSCLen     = 4096
	maxStringLen  = 1 << 16
)

type parseState uint8

const (
	stateGround parseState = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateOSCString
	stateDCSString
	stateIgnoreString // SOS, PM, APC
	numStates
)

var stateNames = [numStates]string{
	"ground",
	"escape",
	"escape-intermediate",
	"csi-entry",
	"csi-param",
	"csi-intermediate",
	"csi-ignore",
	"osc-string",
	"dcs-string",
	"ignore-string",
}

func (s parseState) String() string {
	if s < numStates {
		return stateNames[s]
	}
	return "invalid"
}

type byteClass uint8

const (
	classExecute      byteClass = iota // C0 controls not listed below
	classBell                          // 0x07
	classCancel                        // CAN, SUB
	classEscape                        // 0x1b
	classIntermediate                  // 0x20-0x2f
	classDigit                         // 0-9
	classSeparator                     // : ;
	classPrivate                       // < = > ?
	classCSIIntro                      // [
	classOSCIntro                      // ]
	classDCSIntro                      // P
	classStringIntro                   // X ^ _
	classFinal                         // remaining 0x40-0x7e
	classDelete                        // 0x7f
	classHigh                          // 0x80-0xff
	numClasses
)

var byteClasses [256]byteClass

func init() {
	for b := 0; b < 256; b++ {
		var c byteClass
		switch {
		case b == 0x07:
			c = classBell
		case b == 0x18 || b == 0x1a:
			c = classCancel
		case b == 0x1b:
			c = classEscape
		case b < 0x20:
			c = classExecute
		case b <= 0x2f:
			c = classIntermediate
		case b <= 0x39:
			c = classDigit
		case b <= 0x3b:
			c = classSeparator
		case b <= 0x3f:
			c = classPrivate
		case b == '[':
			c = classCSIIntro
		case b == ']':
			c = classOSCIntro
		case b == 'P':
			c = classDCSIntro
		case b == 'X' || b == '^' || b == '_':
			c = classStringIntro
		case b < 0x7f:
			c = classFinal
		case b == 0x7f:
			c = classDelete
		default:
			c = classHigh
		}
		byteClasses[b] = c
	}
	buildTransitions()
}

type action uint8

const (
	actNone action = iota
	actPrint
	actUTF8
	actExecute
	actCollect
	actPrivate
	actParam
	actEscDispatch
	actCSIDispatch
	actOSCStart
	actOSCPut
	actOSCEnd
	actStringPut
	actIgnore
	actAbort
)

type transition struct {
	act  action
	next parseState
}

var transitions [numStates][numClasses]transition

// finals are the classes that terminate ESC and CSI sequences.
var finals = []byteClass{
	classCSIIntro, classOSCIntro, classDCSIntro, classStringIntro, classFinal,
}

func buildTransitions() {
	on := func(s parseState, act action, next parseState, classes ...byteClass) {
		for _, c := range classes {
			transitions[s][c] = transition{act: act, next: next}
		}
	}
	onFinals := func(s parseState, act action, next parseState) {
		on(s, act, next, finals...)
	}

	// Ground
	on(stateGround, actExecute, stateGround, classExecute, classBell, classCancel)
	on(stateGround, actNone, stateEscape, classEscape)
	on(stateGround, actPrint, stateGround,
		classIntermediate, classDigit, classSeparator, classPrivate)
	onFinals(stateGround, actPrint, stateGround)
	on(stateGround, actIgnore, stateGround, classDelete)
	on(stateGround, actUTF8, stateGround, classHigh)

	// Sequences executing C0 controls in place, as a VT500 does.
	for _, s := range []parseState{stateEscape, stateEscapeIntermediate, stateCSIEntry, stateCSIParam, stateCSIIntermediate, stateCSIIgnore} {
		on(s, actExecute, s, classExecute, classBell)
		on(s, actIgnore, s, classDelete)
	}

	// Escape
	on(stateEscape, actAbort, stateGround, classCancel, classHigh)
	on(stateEscape, actNone, stateEscape, classEscape)
	on(stateEscape, actCollect, stateEscapeIntermediate, classIntermediate)
	on(stateEscape, actNone, stateCSIEntry, classCSIIntro)
	on(stateEscape, actOSCStart, stateOSCString, classOSCIntro)
	on(stateEscape, actNone, stateDCSString, classDCSIntro)
	on(stateEscape, actNone, stateIgnoreString, classStringIntro)
	on(stateEscape, actEscDispatch, stateGround, classDigit, classSeparator, classPrivate, classFinal)

	// EscapeIntermediate
	on(stateEscapeIntermediate, actAbort, stateGround, classCancel, classHigh)
	on(stateEscapeIntermediate, actAbort, stateEscape, classEscape)
	on(stateEscapeIntermediate, actCollect, stateEscapeIntermediate, classIntermediate)
	on(stateEscapeIntermediate, actEscDispatch, stateGround, classDigit, classSeparator, classPrivate)
	onFinals(stateEscapeIntermediate, actEscDispatch, stateGround)

	// CSIEntry
	on(stateCSIEntry, actAbort, stateGround, classCancel)
	on(stateCSIEntry, actAbort, stateEscape, classEscape)
	on(stateCSIEntry, actAbort, stateCSIIgnore, classHigh)
	on(stateCSIEntry, actCollect, stateCSIIntermediate, classIntermediate)
	on(stateCSIEntry, actParam, stateCSIParam, classDigit, classSeparator)
	on(stateCSIEntry, actPrivate, stateCSIParam, classPrivate)
	onFinals(stateCSIEntry, actCSIDispatch, stateGround)

	// CSIParam
	on(stateCSIParam, actAbort, stateGround, classCancel)
	on(stateCSIParam, actAbort, stateEscape, classEscape)
	on(stateCSIParam, actAbort, stateCSIIgnore, classHigh, classPrivate)
	on(stateCSIParam, actParam, stateCSIParam, classDigit, classSeparator)
	on(stateCSIParam, actCollect, stateCSIIntermediate, classIntermediate)
	onFinals(stateCSIParam, actCSIDispatch, stateGround)

	// CSIIntermediate
	on(stateCSIIntermediate, actAbort, stateGround, classCancel)
	on(stateCSIIntermediate, actAbort, stateEscape, classEscape)
	on(stateCSIIntermediate, actAbort, stateCSIIgnore, classHigh, classDigit, classSeparator, classPrivate)
	on(stateCSIIntermediate, actCollect, stateCSIIntermediate, classIntermediate)
	onFinals(stateCSIIntermediate, actCSIDispatch, stateGround)

	// CSIIgnore was already counted when entered.
	on(stateCSIIgnore, actNone, stateGround, classCancel)
	on(stateCSIIgnore, actNone, stateEscape, classEscape)
	on(stateCSIIgnore, actIgnore, stateCSIIgnore,
		classIntermediate, classDigit, classSeparator, classPrivate, classHigh)
	onFinals(stateCSIIgnore, actNone, stateGround)

	// OSCString, terminated by BEL or ESC (the ESC \ pair ends in Escape).
	on(stateOSCString, actOSCEnd, stateGround, classBell)
	on(stateOSCString, actOSCEnd, stateEscape, classEscape)
	on(stateOSCString, actAbort, stateGround, classCancel)
	on(stateOSCString, actIgnore, stateOSCString, classExecute, classDelete)
	on(stateOSCString, actOSCPut, stateOSCString,
		classIntermediate, classDigit, classSeparator, classPrivate, classHigh)
	onFinals(stateOSCString, actOSCPut, stateOSCString)

	// DCS, SOS, PM and APC payloads are discarded up to ST.
	for _, s := range []parseState{stateDCSString, stateIgnoreString} {
		for c := byteClass(0); c < numClasses; c++ {
			transitions[s][c] = transition{act: actStringPut, next: s}
		}
		on(s, actNone, stateEscape, classEscape)
		on(s, actAbort, stateGround, classCancel)
	}
}

// csiSequence is a parsed control sequence handed to the dispatcher.
type csiSequence struct {
	Params       []int
	Private      byte
	Intermediate []byte
	Final        byte
}

// param returns params[i], or def when it is missing or zero.
func (s *csiSequence) param(i, def int) int {
	if i < len(s.Params) && s.Params[i] != 0 {
		return s.Params[i]
	}
	return def
}

// handler receives parser output. Dispatch methods report whether the
// sequence was recognized; unrecognized sequences count as anomalies.
type handler interface {
	print(r rune)
	execute(b byte)
	escDispatch(intermediate []byte, final byte) bool
	csiDispatch(seq *csiSequence) bool
	oscDispatch(data []byte) bool
}

// parser is a table-driven VT500-style state machine. All state, including a
// partially decoded UTF-8 rune, survives between Advance calls.
type parser struct {
	h     handler
	state parseState

	params      []int
	param       int
	paramDigits bool
	paramsOver  bool
	private     byte
	intermed    []byte
	// intermedOver marks a sequence with too many intermediates.
	intermedOver bool

	osc        []byte
	oscOver    bool
	stringSize int
	stringOver bool

	utf8Buf [utf8.UTFMax]byte
	utf8Len int // expected length
	utf8Pos int

	anomalies uint64
}

func newParser(h handler) *parser {
	return &parser{
		h:        h,
		params:   make([]int, 0, 16),
		intermed: make([]byte, 0, maxIntermed),
		osc:      make([]byte, 0, 64),
	}
}

// Advance feeds data through the state machine.
func (p *parser) Advance(data []byte) {
	for _, b := range data {
		p.step(b)
	}
}

func (p *parser) step(b byte) {
	if p.utf8Len > 0 && (b < 0x80 || b > 0xbf) {
		// Truncated UTF-8 sequence.
		p.utf8Len, p.utf8Pos = 0, 0
		p.h.print(utf8.RuneError)
	}

	class := byteClasses[b]
	t := transitions[p.state][class]
	next := p.perform(t, b)
	if next != p.state && (next == stateEscape || next == stateCSIEntry) {
		p.clear()
	}
	p.state = next
}

// perform runs one action and returns the state to move to. Overflowing a
// bounded buffer never leaves the sequence early: CSI diverts to CSIIgnore and
// the other states keep swallowing bytes until their normal end.
func (p *parser) perform(t transition, b byte) parseState {
	switch t.act {
	case actPrint:
		p.h.print(rune(b))
	case actUTF8:
		p.utf8(b)
	case actExecute:
		p.h.execute(b)
	case actCollect:
		if len(p.intermed) >= maxIntermed {
			if !p.intermedOver {
				p.intermedOver = true
				p.anomaly()
			}
			if t.next == stateCSIIntermediate {
				return stateCSIIgnore
			}
			return t.next
		}
		p.intermed = append(p.intermed, b)
	case actPrivate:
		p.private = b
	case actParam:
		p.paramByte(b)
	case actEscDispatch:
		if p.intermedOver {
			break
		}
		if !p.h.escDispatch(p.intermed, b) {
			p.anomaly()
		}
	case actCSIDispatch:
		p.dispatchCSI(b)
	case actOSCStart:
		p.osc = p.osc[:0]
		p.oscOver = false
	case actOSCPut:
		if len(p.osc) >= maxOSCLen {
			if !p.oscOver {
				p.oscOver = true
				p.anomaly()
			}
			return t.next
		}
		p.osc = append(p.osc, b)
	case actOSCEnd:
		if !p.oscOver && !p.h.oscDispatch(p.osc) {
			p.anomaly()
		}
		p.osc = p.osc[:0]
	case actStringPut:
		if p.stringOver {
			break
		}
		p.stringSize++
		if p.stringSize > maxStringLen {
			p.stringOver = true
			p.anomaly()
		}
	case actAbort:
		p.anomaly()
		p.clear()
	}
	return t.next
}

func (p *parser) paramByte(b byte) {
	if b == ';' || b == ':' {
		p.pushParam()
		return
	}
	p.paramDigits = true
	p.param = p.param*10 + int(b-'0')
	if p.param > maxParamValue {
		p.param = maxParamValue
	}
}

func (p *parser) pushParam() {
	if len(p.params) >= maxParams {
		p.paramsOver = true
	} else {
		p.params = append(p.params, p.param)
	}
	p.param = 0
	p.paramDigits = false
}

func (p *parser) dispatchCSI(final byte) {
	if p.paramDigits || len(p.params) > 0 {
		p.pushParam()
	}
	if p.paramsOver {
		p.anomaly()
		return
	}
	seq := csiSequence{
		Params:       p.params,
		Private:      p.private,
		Intermediate: p.intermed,
		Final:        final,
	}
	if !p.h.csiDispatch(&seq) {
		p.anomaly()
	}
}

func (p *parser) utf8(b byte) {
	if p.utf8Len == 0 {
		switch {
		case b >= 0xc2 && b <= 0xdf:
			p.utf8Len = 2
		case b >= 0xe0 && b <= 0xef:
			p.utf8Len = 3
		case b >= 0xf0 && b <= 0xf4:
			p.utf8Len = 4
		default:
			p.h.print(utf8.RuneError)
			return
		}
		p.utf8Buf[0] = b
		p.utf8Pos = 1
		return
	}

	p.utf8Buf[p.utf8Pos] = b
	p.utf8Pos++
	if p.utf8Pos < p.utf8Len {
		return
	}
	r, _ := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
	p.utf8Len, p.utf8Pos = 0, 0
	p.h.print(r)
}

func (p *parser) clear() {
	p.params = p.params[:0]
	p.param = 0
	p.paramDigits = false
	p.paramsOver = false
	p.private = 0
	p.intermed = p.intermed[:0]
	p.intermedOver = false
	p.stringSize = 0
	p.stringOver = false
}

func (p *parser) anomaly() {
	p.anomalies++
	perf.Count(perf.CounterParseAnomaly, 1)
}

// Reset returns the parser to Ground, dropping any partial sequence.
func (p *parser) Reset() {
	p.clear()
	p.osc = p.osc[:0]
	p.oscOver = false
	p.utf8Len, p.utf8Pos = 0, 0
	p.state = stateGround
}
