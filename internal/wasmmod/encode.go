package wasmmod

import "github.com/wasplang/waspc/internal/profile"

// Encode serializes the accumulated module to a wasm 1.0 binary. Section
// order follows the format's fixed canonical ordering: type, import,
// function, table, memory, global, export, element, code, data.
func (a *Assembler) Encode() []byte {
	out := append([]byte{}, magic...)
	out = append(out, version...)

	out = append(out, encodeSection(secType, a.encodeTypeSection())...)
	out = append(out, encodeSection(secImport, a.encodeImportSection())...)
	out = append(out, encodeSection(secFunction, a.encodeFunctionSection())...)
	out = append(out, encodeSection(secTable, a.encodeTableSection())...)
	out = append(out, encodeSection(secMemory, a.encodeMemorySection())...)
	out = append(out, encodeSection(secGlobal, a.encodeGlobalSection())...)
	out = append(out, encodeSection(secExport, a.encodeExportSection())...)
	out = append(out, encodeSection(secElement, a.encodeElementSection())...)
	out = append(out, encodeSection(secCode, a.encodeCodeSection())...)
	out = append(out, encodeSection(secData, a.encodeDataSection())...)
	return out
}

func (a *Assembler) encodeTypeSection() []byte {
	var items []byte
	for _, t := range a.types {
		entry := []byte{funcTypeForm}
		entry = append(entry, encodeVector(len(t.Params), valTypeBytes(t.Params))...)
		entry = append(entry, encodeVector(len(t.Results), valTypeBytes(t.Results))...)
		items = append(items, entry...)
	}
	return encodeVector(len(a.types), items)
}

func valTypeBytes(vs []profile.ValType) []byte {
	b := make([]byte, len(vs))
	for i, v := range vs {
		b[i] = byte(v)
	}
	return b
}

func (a *Assembler) encodeImportSection() []byte {
	var items []byte
	for i, name := range a.importNames {
		entry := EncodeString(importModule)
		entry = append(entry, EncodeString(name)...)
		entry = append(entry, ExportFunc) // import kind: function
		entry = append(entry, EncodeLEB128U(uint64(a.funcTypeIdx[i]))...)
		items = append(items, entry...)
	}
	return encodeVector(len(a.importNames), items)
}

func (a *Assembler) encodeFunctionSection() []byte {
	var items []byte
	for i := a.numImports(); i < a.numFuncs(); i++ {
		items = append(items, EncodeLEB128U(uint64(a.funcTypeIdx[i]))...)
	}
	return encodeVector(a.numFuncs()-a.numImports(), items)
}

func (a *Assembler) encodeTableSection() []byte {
	n := uint64(a.numFuncs())
	entry := []byte{0x70} // funcref
	entry = append(entry, 0x01)
	entry = append(entry, EncodeLEB128U(n)...)
	entry = append(entry, EncodeLEB128U(n)...)
	return encodeVector(1, entry)
}

func (a *Assembler) encodeMemorySection() []byte {
	entry := []byte{0x00}
	entry = append(entry, EncodeLEB128U(uint64(a.memoryPages))...)
	return encodeVector(1, entry)
}

func (a *Assembler) encodeGlobalSection() []byte {
	var items []byte
	for _, g := range a.globals {
		mut := byte(0x00)
		if g.Mutable {
			mut = 0x01
		}
		entry := []byte{byte(profile.ValI32), mut}
		entry = append(entry, OpI32Const)
		entry = append(entry, EncodeLEB128S(int64(g.Init))...)
		entry = append(entry, OpEnd)
		items = append(items, entry...)
	}
	return encodeVector(len(a.globals), items)
}

func (a *Assembler) encodeExportSection() []byte {
	var items []byte
	for _, e := range a.exports {
		entry := EncodeString(e.name)
		entry = append(entry, ExportFunc)
		entry = append(entry, EncodeLEB128U(uint64(e.funcIndex))...)
		items = append(items, entry...)
	}
	return encodeVector(len(a.exports), items)
}

func (a *Assembler) encodeElementSection() []byte {
	n := a.numFuncs()
	entry := EncodeLEB128U(0) // table index 0
	entry = append(entry, OpI32Const)
	entry = append(entry, EncodeLEB128S(0)...)
	entry = append(entry, OpEnd)
	var indices []byte
	for i := 0; i < n; i++ {
		indices = append(indices, EncodeLEB128U(uint64(i))...)
	}
	entry = append(entry, encodeVector(n, indices)...)
	return encodeVector(1, entry)
}

func (a *Assembler) encodeCodeSection() []byte {
	var items []byte
	count := 0
	for i := a.numImports(); i < a.numFuncs(); i++ {
		body := a.codes[i]
		sized := EncodeLEB128U(uint64(len(body)))
		sized = append(sized, body...)
		items = append(items, sized...)
		count++
	}
	return encodeVector(count, items)
}

func (a *Assembler) encodeDataSection() []byte {
	var items []byte
	for _, d := range a.data {
		entry := EncodeLEB128U(0) // memory index 0
		entry = append(entry, OpI32Const)
		entry = append(entry, EncodeLEB128S(int64(d.Offset))...)
		entry = append(entry, OpEnd)
		entry = append(entry, encodeVector(len(d.Bytes), d.Bytes)...)
		items = append(items, entry...)
	}
	return encodeVector(len(a.data), items)
}
