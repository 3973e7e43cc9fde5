// Package indexer builds a symbol module from Go source. It is the loader
// for Go code: every file under the root becomes a source file, declared
// types become type graph nodes laid out with go/types sizes, and
// functions, variables and lines are mapped onto token.FileSet positions,
// which serve as the module's address space.
package indexer

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/tender-barbarian/go-symlens/internal/symtab"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"
)

// enumWidth is the byte width of named integers indexed as enumerations.
const enumWidth = 4

// Indexer loads Go packages under a root directory into a symtab.Module.
type Indexer struct {
	root        string
	pointerSize uint64
	logger      *log.Logger

	fset  *token.FileSet
	sizes types.Sizes
	mod   *symtab.Module
	files map[string]*symtab.SourceFile // absolute filename -> source
	refs  typeutil.Map                  // types.Type -> symtab.TypeRef
	next  map[*symtab.SourceFile]int
	enums map[*types.TypeName][]symtab.EnumMember
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithPointerSize selects the target word size: 4 lays types out as on
// 386, 8 as on amd64.
func WithPointerSize(n uint64) Option {
	return func(idx *Indexer) {
		if n == 4 || n == 8 {
			idx.pointerSize = n
		}
	}
}

// WithLogger sets the logger that receives indexing warnings.
func WithLogger(l *log.Logger) Option {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// New creates an Indexer rooted at rootPath. Call Index to load and scan packages.
func New(rootPath string, opts ...Option) (*Indexer, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}
	idx := &Indexer{
		root:        absRoot,
		pointerSize: 8,
		logger:      log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// Module returns the module built by the last Index call.
func (idx *Indexer) Module() *symtab.Module {
	return idx.mod
}

// Machine returns the machine type matching the configured pointer size.
func (idx *Indexer) Machine() symtab.MachineType {
	if idx.pointerSize == 4 {
		return symtab.MachineX86
	}
	return symtab.MachineX64
}

// Index loads all packages under the root and rebuilds the module.
func (idx *Indexer) Index() error {
	fset := token.NewFileSet()
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedSyntax |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedModule,
		Dir:  idx.root,
		Fset: fset,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return fmt.Errorf("loading packages: %w", err)
	}

	arch := "amd64"
	if idx.pointerSize == 4 {
		arch = "386"
	}
	idx.fset = fset
	idx.sizes = types.SizesFor("gc", arch)
	idx.mod = symtab.NewModule(filepath.Base(idx.root), idx.Machine())
	idx.files = make(map[string]*symtab.SourceFile)
	idx.refs = typeutil.Map{}
	idx.next = make(map[*symtab.SourceFile]int)
	idx.enums = make(map[*types.TypeName][]symtab.EnumMember)

	var indexed []*packages.Package
	for _, pkg := range pkgs {
		if pkg.Types == nil || len(pkg.GoFiles) == 0 || !isUnderRoot(pkg.GoFiles[0], idx.root) {
			continue
		}
		if len(indexed) == 0 && pkg.Module != nil {
			idx.mod.Name = pkg.Module.Path
		}
		for _, file := range pkg.Syntax {
			name := fset.Position(file.Package).Filename
			rel, err := filepath.Rel(idx.root, name)
			if err != nil {
				rel = name
			}
			idx.files[name] = idx.mod.AddSource(filepath.ToSlash(rel))
		}
		indexed = append(indexed, pkg)
	}

	for _, pkg := range indexed {
		idx.collectEnums(pkg)
	}
	for _, pkg := range indexed {
		idx.indexPackage(pkg)
	}
	return nil
}

// collectEnums gathers typed constants of named enumWidth-byte integers.
func (idx *Indexer) collectEnums(pkg *packages.Package) {
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok {
			continue
		}
		named, ok := c.Type().(*types.Named)
		if !ok || named.Obj().Pkg() != pkg.Types || !isEnumCandidate(named, idx.sizes) {
			continue
		}
		value, exact := constant.Int64Val(constant.ToInt(c.Val()))
		if !exact {
			continue
		}
		idx.enums[named.Obj()] = append(idx.enums[named.Obj()], symtab.EnumMember{Name: c.Name(), Value: value})
	}
}

func isEnumCandidate(named *types.Named, sizes types.Sizes) bool {
	basic, ok := named.Underlying().(*types.Basic)
	return ok && basic.Info()&types.IsInteger != 0 && sizes.Sizeof(basic) == enumWidth
}

// indexPackage walks a package's files in declaration order.
func (idx *Indexer) indexPackage(pkg *packages.Package) {
	for _, file := range pkg.Syntax {
		sf := idx.files[idx.fset.Position(file.Package).Filename]
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				idx.genDecl(pkg, sf, d)
			case *ast.FuncDecl:
				idx.funcDecl(pkg, sf, d)
			}
		}
		idx.lines(sf, file)
	}
}

func (idx *Indexer) genDecl(pkg *packages.Package, sf *symtab.SourceFile, d *ast.GenDecl) {
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			tn, ok := pkg.TypesInfo.Defs[s.Name].(*types.TypeName)
			if !ok || s.TypeParams != nil {
				continue
			}
			idx.ref(tn.Type(), sf)
		case *ast.ValueSpec:
			if d.Tok != token.VAR {
				continue
			}
			for _, name := range s.Names {
				v, ok := pkg.TypesInfo.Defs[name].(*types.Var)
				if !ok || name.Name == "_" {
					continue
				}
				sf.AddData(v.Name(), idx.ref(v.Type(), sf), symtab.Absolute(uint64(v.Pos())))
			}
		}
	}
}

func (idx *Indexer) funcDecl(pkg *packages.Package, sf *symtab.SourceFile, d *ast.FuncDecl) {
	fn, ok := pkg.TypesInfo.Defs[d.Name].(*types.Func)
	if !ok || d.Type.TypeParams != nil {
		return
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return
	}
	name := fn.Name()
	if recv := sig.Recv(); recv != nil {
		if hasTypeParams(recv.Type()) {
			return
		}
		name = receiverName(recv.Type()) + "." + name
	}

	sym := sf.AddFunction(name, uint64(d.Pos()), uint64(d.End()), idx.results(sig.Results(), sf))
	var offset int64
	addParam := func(v *types.Var) {
		paramName := v.Name()
		if paramName == "" {
			paramName = "_"
		}
		sym.AddParam(paramName, idx.ref(v.Type(), sf), symtab.StackOffset(offset))
		offset += idx.align(idx.sizes.Sizeof(v.Type()))
	}
	if recv := sig.Recv(); recv != nil {
		addParam(recv)
	}
	for v := range sig.Params().Variables() {
		addParam(v)
	}
}

// results returns the type a function's results are rendered as: void for
// none, the result type for one, a structure of all results otherwise.
func (idx *Indexer) results(res *types.Tuple, sf *symtab.SourceFile) symtab.TypeRef {
	switch res.Len() {
	case 0:
		return symtab.VoidType.Ref()
	case 1:
		return idx.ref(res.At(0).Type(), sf)
	}
	fields := make([]*types.Var, 0, res.Len())
	for i := range res.Len() {
		v := res.At(i)
		name := v.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("r%d", i)
		}
		fields = append(fields, types.NewField(token.NoPos, nil, name, v.Type(), false))
	}
	return idx.ref(types.NewStruct(fields, nil), sf)
}

func (idx *Indexer) align(n int64) int64 {
	word := int64(idx.pointerSize)
	return (n + word - 1) / word * word
}

// lines adds one source line per line of file, spanning the positions from
// its first character to the next line's first character.
func (idx *Indexer) lines(sf *symtab.SourceFile, file *ast.File) {
	tf := idx.fset.File(file.Package)
	if tf == nil {
		return
	}
	end := token.Pos(tf.Base() + tf.Size())
	for line := 1; line <= tf.LineCount(); line++ {
		start := tf.LineStart(line)
		next := end
		if line < tf.LineCount() {
			next = tf.LineStart(line + 1)
		}
		sf.AddLine(line, uint64(start), uint64(next))
	}
}

// ref returns the reference of t, creating its type node on first use.
// Named types declared under the root live in their declaring file; every
// other type is created in sf.
func (idx *Indexer) ref(t types.Type, sf *symtab.SourceFile) symtab.TypeRef {
	t = types.Unalias(t)
	if r, ok := idx.refs.At(t).(symtab.TypeRef); ok {
		return r
	}

	home := sf
	name := types.TypeString(t, packageName)
	if named, ok := t.(*types.Named); ok {
		if f, ok := idx.files[idx.fset.Position(named.Obj().Pos()).Filename]; ok {
			home = f
		}
		name = named.Obj().Name()
	}
	if basic, ok := t.(*types.Basic); ok {
		name = basic.Name()
	}

	number := idx.next[home] + 1
	idx.next[home] = number
	r := home.Ref(number)
	idx.refs.Set(t, r)

	home.AddType(number, name, idx.body(t, home))
	return r
}

func (idx *Indexer) body(t types.Type, sf *symtab.SourceFile) symtab.Body {
	switch u := t.(type) {
	case *types.Named:
		if members, ok := idx.enums[u.Obj()]; ok {
			return symtab.Enumeration{Members: members}
		}
		if st, ok := u.Underlying().(*types.Struct); ok {
			return idx.structure(st, sf)
		}
		if iface, ok := u.Underlying().(*types.Interface); ok {
			return idx.interfaceHeader(iface, sf)
		}
		return symtab.Relation{Target: idx.ref(u.Underlying(), sf)}

	case *types.Basic:
		return idx.basic(u, sf)

	case *types.Pointer:
		return symtab.Relation{Target: idx.ref(u.Elem(), sf), Pointer: true}

	case *types.Array:
		if u.Len() == 1 {
			idx.logger.Printf("%s: %s has one element and is indistinguishable from a scalar",
				sf.Path, types.TypeString(u, packageName))
		}
		return symtab.Relation{
			Target: idx.ref(u.Elem(), sf),
			Array:  symtab.ArrayBounds{Minimum: 0, Maximum: u.Len() - 1},
		}

	case *types.Slice:
		return idx.header(sf, []headerField{
			{"data", types.NewPointer(u.Elem())},
			{"len", types.Typ[types.Int]},
			{"cap", types.Typ[types.Int]},
		})

	case *types.Struct:
		return idx.structure(u, sf)

	case *types.Interface:
		return idx.interfaceHeader(u, sf)

	case *types.Map, *types.Chan:
		return symtab.Relation{Target: symtab.VoidType.Ref(), Pointer: true}

	case *types.Signature:
		return symtab.FunctionPointer{Size: idx.pointerSize}
	}
	return symtab.Void{}
}

func (idx *Indexer) basic(b *types.Basic, sf *symtab.SourceFile) symtab.Body {
	info := b.Info()
	switch {
	case b.Kind() == types.Invalid:
		return symtab.Void{}
	case b.Kind() == types.UnsafePointer:
		return symtab.Relation{Target: symtab.VoidType.Ref(), Pointer: true}
	case info&types.IsString != 0:
		return idx.header(sf, []headerField{
			{"data", types.NewPointer(types.Typ[types.Byte])},
			{"len", types.Typ[types.Int]},
		})
	case info&types.IsComplex != 0:
		part := types.Typ[types.Float64]
		if b.Kind() == types.Complex64 {
			part = types.Typ[types.Float32]
		}
		return idx.header(sf, []headerField{{"real", part}, {"imag", part}})
	case info&types.IsUntyped != 0:
		return symtab.Void{}
	}
	return symtab.Numeric{
		BitSize: uint32(idx.sizes.Sizeof(b) * 8),
		Signed:  info&types.IsUnsigned == 0 && info&types.IsBoolean == 0,
		Float:   info&types.IsFloat != 0,
	}
}

func (idx *Indexer) interfaceHeader(iface *types.Interface, sf *symtab.SourceFile) symtab.Body {
	first := "itab"
	if iface.Empty() {
		first = "type"
	}
	return idx.header(sf, []headerField{
		{first, types.Typ[types.UnsafePointer]},
		{"data", types.Typ[types.UnsafePointer]},
	})
}

type headerField struct {
	name string
	typ  types.Type
}

// header lays out a runtime header such as a string or slice as a
// structure.
func (idx *Indexer) header(sf *symtab.SourceFile, fields []headerField) symtab.Body {
	vars := make([]*types.Var, 0, len(fields))
	for _, f := range fields {
		vars = append(vars, types.NewField(token.NoPos, nil, f.name, f.typ, false))
	}
	return idx.structure(types.NewStruct(vars, nil), sf)
}

func (idx *Indexer) structure(st *types.Struct, sf *symtab.SourceFile) symtab.Structure {
	fields := make([]*types.Var, 0, st.NumFields())
	for f := range st.Fields() {
		fields = append(fields, f)
	}
	offsets := idx.sizes.Offsetsof(fields)

	members := make([]symtab.StructMember, 0, len(fields))
	for i, f := range fields {
		members = append(members, symtab.StructMember{
			Name:      f.Name(),
			BitOffset: uint32(offsets[i] * 8),
			BitSize:   uint32(idx.sizes.Sizeof(f.Type()) * 8),
			Type:      idx.ref(f.Type(), sf),
		})
	}
	return symtab.Structure{Size: uint64(idx.sizes.Sizeof(st)), Members: members}
}

func hasTypeParams(t types.Type) bool {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := t.(*types.Named)
	return ok && named.TypeParams().Len() > 0
}

func receiverName(t types.Type) string {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	if named, ok := t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return types.TypeString(t, packageName)
}

func packageName(p *types.Package) string { return p.Name() }

// isUnderRoot reports whether path is within root (both should be absolute).
func isUnderRoot(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
