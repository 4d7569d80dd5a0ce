package emitter

import (
	"github.com/wasplang/waspc/internal/ast"
	"github.com/wasplang/waspc/internal/compileerr"
	"github.com/wasplang/waspc/internal/dataseg"
	"github.com/wasplang/waspc/internal/profile"
)

// ReduceGlobal reduces a GlobalValue to the single numeric scalar it
// resolves to (spec.md §4.D), interning text/data/symbols into ds as a
// side effect.
func ReduceGlobal(v ast.GlobalValue, ds *dataseg.Builder, res *Resolver, prof profile.Profile) (float64, error) {
	switch g := v.(type) {
	case *ast.GVNumber:
		return g.Value, nil
	case *ast.GVText:
		return float64(ds.InternText(g.Value)), nil
	case *ast.GVSymbol:
		return float64(ds.InternSymbol(g.Name)), nil
	case *ast.GVData:
		return reduceData(g.Elements, ds, res, prof)
	case *ast.GVStruct:
		return reduceStruct(g.Members, ds, res, prof)
	case *ast.GVIdentifier:
		val, ok := res.GlobalValue(g.Name)
		if !ok {
			return 0, compileerr.UnknownIdentifierf("global %q has no value yet (forward reference?)", g.Name)
		}
		return val, nil
	default:
		return 0, compileerr.Misusef("unknown global value kind %T", v)
	}
}

func scalarWidth(prof profile.Profile) dataseg.ScalarWidth {
	if prof == profile.I32 {
		return dataseg.Width4
	}
	return dataseg.Width8
}

func reduceData(elements []ast.GlobalValue, ds *dataseg.Builder, res *Resolver, prof profile.Profile) (float64, error) {
	scalars := make([]float64, len(elements))
	for i, el := range elements {
		v, err := ReduceGlobal(el, ds, res, prof)
		if err != nil {
			return 0, err
		}
		scalars[i] = v
	}
	return float64(ds.InternData(scalars, scalarWidth(prof))), nil
}

// reduceStruct lays out a flat (symbol-id, text-address) pair per member,
// terminated by a numeric 0 sentinel, per spec.md §4.D. Wasp's struct
// declarations carry only member names (no attribute values), so each
// member's attribute text is the empty string.
func reduceStruct(members []string, ds *dataseg.Builder, res *Resolver, prof profile.Profile) (float64, error) {
	scalars := make([]float64, 0, len(members)*2+1)
	for _, m := range members {
		scalars = append(scalars, float64(ds.InternSymbol(m)))
		scalars = append(scalars, float64(ds.InternText("")))
	}
	scalars = append(scalars, 0)
	return float64(ds.InternData(scalars, scalarWidth(prof))), nil
}
