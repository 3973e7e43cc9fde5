package loader

// document is the on-disk form of a module's symbol tables. The same shape
// is read from TOML and YAML.
type document struct {
	Module  string      `toml:"module" yaml:"module"`
	Machine string      `toml:"machine" yaml:"machine"`
	Sources []sourceDoc `toml:"sources" yaml:"sources"`
}

type sourceDoc struct {
	Path      string        `toml:"path" yaml:"path"`
	Types     []typeDoc     `toml:"types,omitempty" yaml:"types,omitempty"`
	Data      []dataDoc     `toml:"data,omitempty" yaml:"data,omitempty"`
	Functions []functionDoc `toml:"functions,omitempty" yaml:"functions,omitempty"`
	Lines     []lineDoc     `toml:"lines,omitempty" yaml:"lines,omitempty"`
}

// Type kinds accepted in documents.
const (
	kindNumeric         = "numeric"
	kindEnumeration     = "enumeration"
	kindStructure       = "structure"
	kindRelation        = "relation"
	kindFunctionPointer = "function_pointer"
)

type typeDoc struct {
	Number int    `toml:"number" yaml:"number"`
	Name   string `toml:"name,omitempty" yaml:"name,omitempty"`
	Kind   string `toml:"kind" yaml:"kind"`

	// numeric
	Bits   uint32 `toml:"bits,omitempty" yaml:"bits,omitempty"`
	Signed bool   `toml:"signed,omitempty" yaml:"signed,omitempty"`
	Float  bool   `toml:"float,omitempty" yaml:"float,omitempty"`

	// enumeration
	Enumerators []enumeratorDoc `toml:"enumerators,omitempty" yaml:"enumerators,omitempty"`

	// structure and function_pointer
	Size    uint64      `toml:"size,omitempty" yaml:"size,omitempty"`
	Members []memberDoc `toml:"members,omitempty" yaml:"members,omitempty"`

	// relation
	Target     *int    `toml:"target,omitempty" yaml:"target,omitempty"`
	TargetFile string  `toml:"target_file,omitempty" yaml:"target_file,omitempty"`
	Array      []int64 `toml:"array,omitempty" yaml:"array,omitempty"`
	Pointer    bool    `toml:"pointer,omitempty" yaml:"pointer,omitempty"`
	Function   bool    `toml:"function,omitempty" yaml:"function,omitempty"`
}

type enumeratorDoc struct {
	Name  string `toml:"name" yaml:"name"`
	Value int64  `toml:"value" yaml:"value"`
}

type memberDoc struct {
	Name     string `toml:"name" yaml:"name"`
	Offset   uint32 `toml:"offset" yaml:"offset"`
	Bits     uint32 `toml:"bits" yaml:"bits"`
	Type     int    `toml:"type" yaml:"type"`
	TypeFile string `toml:"type_file,omitempty" yaml:"type_file,omitempty"`
}

// dataDoc is a data symbol or parameter. Exactly one of Address,
// FrameOffset and Register places it.
type dataDoc struct {
	Name        string  `toml:"name" yaml:"name"`
	Type        int     `toml:"type" yaml:"type"`
	TypeFile    string  `toml:"type_file,omitempty" yaml:"type_file,omitempty"`
	Address     *uint64 `toml:"address,omitempty" yaml:"address,omitempty"`
	FrameOffset *int64  `toml:"frame_offset,omitempty" yaml:"frame_offset,omitempty"`
	Register    *uint32 `toml:"register,omitempty" yaml:"register,omitempty"`
}

type functionDoc struct {
	Name       string    `toml:"name" yaml:"name"`
	Start      uint64    `toml:"start" yaml:"start"`
	End        uint64    `toml:"end" yaml:"end"`
	Returns    int       `toml:"returns" yaml:"returns"`
	ReturnFile string    `toml:"returns_file,omitempty" yaml:"returns_file,omitempty"`
	Params     []dataDoc `toml:"params,omitempty" yaml:"params,omitempty"`
}

type lineDoc struct {
	Line  int    `toml:"line" yaml:"line"`
	Start uint64 `toml:"start" yaml:"start"`
	End   uint64 `toml:"end" yaml:"end"`
}
