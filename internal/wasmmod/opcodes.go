package wasmmod

// wasm instruction opcodes the emitter needs. Exported so internal/emitter
// can build function bodies byte-by-byte without this package exposing a
// higher-level instruction-builder API it doesn't otherwise need.
const (
	// Control.
	OpUnreachable byte = 0x00
	OpNop         byte = 0x01
	OpBlock       byte = 0x02
	OpLoop        byte = 0x03
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpEnd         byte = 0x0B
	OpBr          byte = 0x0C
	OpBrIf        byte = 0x0D
	OpReturn      byte = 0x0F
	OpCall        byte = 0x10
	OpCallIndirect byte = 0x11
	OpDrop        byte = 0x1A

	// Variables.
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24

	// Memory.
	OpI32Load    byte = 0x28
	OpI64Load    byte = 0x29
	OpF64Load    byte = 0x2B
	OpI32Load8U  byte = 0x2D
	OpI32Store   byte = 0x36
	OpI64Store   byte = 0x37
	OpF64Store   byte = 0x39
	OpI32Store8  byte = 0x3A

	// Constants.
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpF64Const byte = 0x44

	// i32 comparisons.
	OpI32Eqz  byte = 0x45
	OpI32Eq   byte = 0x46
	OpI32Ne   byte = 0x47
	OpI32LtS  byte = 0x48
	OpI32GtS  byte = 0x4A
	OpI32LeS  byte = 0x4C
	OpI32GeS  byte = 0x4E

	// i64 comparisons.
	OpI64Eqz byte = 0x50
	OpI64Eq  byte = 0x51
	OpI64Ne  byte = 0x52
	OpI64LtS byte = 0x53
	OpI64GtS byte = 0x55
	OpI64LeS byte = 0x57
	OpI64GeS byte = 0x59

	// f64 comparisons.
	OpF64Eq byte = 0x61
	OpF64Ne byte = 0x62
	OpF64Lt byte = 0x63
	OpF64Gt byte = 0x64
	OpF64Le byte = 0x65
	OpF64Ge byte = 0x66

	// i32 arithmetic/bitwise.
	OpI32Add  byte = 0x6A
	OpI32Sub  byte = 0x6B
	OpI32Mul  byte = 0x6C
	OpI32DivS byte = 0x6D
	OpI32RemS byte = 0x6F
	OpI32And  byte = 0x71
	OpI32Or   byte = 0x72
	OpI32Xor  byte = 0x73
	OpI32Shl  byte = 0x74
	OpI32ShrS byte = 0x75

	// i64 arithmetic/bitwise.
	OpI64Add  byte = 0x7C
	OpI64Sub  byte = 0x7D
	OpI64Mul  byte = 0x7E
	OpI64DivS byte = 0x7F
	OpI64RemS byte = 0x81
	OpI64And  byte = 0x83
	OpI64Or   byte = 0x84
	OpI64Xor  byte = 0x85
	OpI64Shl  byte = 0x86
	OpI64ShrS byte = 0x87

	// f64 arithmetic.
	OpF64Add byte = 0xA0
	OpF64Sub byte = 0xA1
	OpF64Mul byte = 0xA2
	OpF64Div byte = 0xA3

	// Conversions.
	OpI32WrapI64      byte = 0xA7
	OpI32TruncF64S    byte = 0xAA
	OpI64ExtendI32S   byte = 0xAC
	OpI64TruncF64S    byte = 0xB0
	OpF64ConvertI32S  byte = 0xB7
	OpF64ConvertI64S  byte = 0xB9
)

// Block type bytes. The non-void forms equal the corresponding
// profile.ValType byte, since wasm encodes a single-result block type as
// the result's value type byte.
const (
	BlockVoid byte = 0x40
)

// OpcodeByMnemonic maps the textual mnemonics accepted inside a
// defn-wasm raw body (s-expression dialect only) to their opcode byte.
// Kept as a lookup table per spec.md's design note favoring a dispatch
// table over one large branch.
var OpcodeByMnemonic = map[string]byte{
	"unreachable":     OpUnreachable,
	"nop":             OpNop,
	"end":             OpEnd,
	"return":          OpReturn,
	"drop":            OpDrop,
	"local.get":       OpLocalGet,
	"local.set":       OpLocalSet,
	"local.tee":       OpLocalTee,
	"global.get":      OpGlobalGet,
	"global.set":      OpGlobalSet,
	"call":            OpCall,
	"br":              OpBr,
	"br_if":           OpBrIf,
	"i32.load":        OpI32Load,
	"i64.load":        OpI64Load,
	"f64.load":        OpF64Load,
	"i32.load8_u":     OpI32Load8U,
	"i32.store":       OpI32Store,
	"i64.store":       OpI64Store,
	"f64.store":       OpF64Store,
	"i32.store8":      OpI32Store8,
	"i32.const":       OpI32Const,
	"i64.const":       OpI64Const,
	"f64.const":       OpF64Const,
	"i32.eqz":         OpI32Eqz,
	"i32.eq":          OpI32Eq,
	"i32.ne":          OpI32Ne,
	"i32.lt_s":        OpI32LtS,
	"i32.gt_s":        OpI32GtS,
	"i32.le_s":        OpI32LeS,
	"i32.ge_s":        OpI32GeS,
	"i64.eqz":         OpI64Eqz,
	"i64.eq":          OpI64Eq,
	"i64.ne":          OpI64Ne,
	"i64.lt_s":        OpI64LtS,
	"i64.gt_s":        OpI64GtS,
	"i64.le_s":        OpI64LeS,
	"i64.ge_s":        OpI64GeS,
	"f64.eq":          OpF64Eq,
	"f64.ne":          OpF64Ne,
	"f64.lt":          OpF64Lt,
	"f64.gt":          OpF64Gt,
	"f64.le":          OpF64Le,
	"f64.ge":          OpF64Ge,
	"i32.add":         OpI32Add,
	"i32.sub":         OpI32Sub,
	"i32.mul":         OpI32Mul,
	"i32.div_s":       OpI32DivS,
	"i32.rem_s":       OpI32RemS,
	"i32.and":         OpI32And,
	"i32.or":          OpI32Or,
	"i32.xor":         OpI32Xor,
	"i32.shl":         OpI32Shl,
	"i32.shr_s":       OpI32ShrS,
	"i64.add":         OpI64Add,
	"i64.sub":         OpI64Sub,
	"i64.mul":         OpI64Mul,
	"i64.div_s":       OpI64DivS,
	"i64.rem_s":       OpI64RemS,
	"i64.and":         OpI64And,
	"i64.or":          OpI64Or,
	"i64.xor":         OpI64Xor,
	"i64.shl":         OpI64Shl,
	"i64.shr_s":       OpI64ShrS,
	"f64.add":         OpF64Add,
	"f64.sub":         OpF64Sub,
	"f64.mul":         OpF64Mul,
	"f64.div":         OpF64Div,
	"i32.wrap_i64":    OpI32WrapI64,
	"i32.trunc_f64_s": OpI32TruncF64S,
	"i64.extend_i32_s": OpI64ExtendI32S,
	"i64.trunc_f64_s": OpI64TruncF64S,
	"f64.convert_i32_s": OpF64ConvertI32S,
	"f64.convert_i64_s": OpF64ConvertI64S,
}
