package symtab

import (
	"strconv"
	"strings"
)

// MachineType selects the architecture of the loaded image.
type MachineType string

const (
	MachineUnknown MachineType = "unknown"
	MachineX86     MachineType = "x86"
	MachineX64     MachineType = "x86_64"
	MachineARM32   MachineType = "arm"
	MachineARM64   MachineType = "arm64"
)

// ParseMachine maps common spellings to a MachineType.
func ParseMachine(s string) MachineType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x86", "i386", "386", "ia32":
		return MachineX86
	case "x86_64", "x86-64", "x64", "amd64":
		return MachineX64
	case "arm", "arm32", "armv7":
		return MachineARM32
	case "arm64", "aarch64":
		return MachineARM64
	}
	return MachineUnknown
}

// PointerSize returns the native pointer width in bytes, or 0 when unknown.
func (m MachineType) PointerSize() uint64 {
	switch m {
	case MachineX86, MachineARM32:
		return 4
	case MachineX64, MachineARM64:
		return 8
	}
	return 0
}

// armRegisterD0 is the register number of the first VFP double register.
const armRegisterD0 = 32

var x86Registers = []string{
	"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
	"eip", "eflags", "cs", "ss", "ds", "es", "fs", "gs",
	"st0", "st1", "st2", "st3", "st4", "st5", "st6", "st7",
	"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7",
}

// x64Registers follows the DWARF register numbering; gaps are empty.
var x64Registers = []string{
	"rax", "rdx", "rcx", "rbx", "rsi", "rdi", "rbp", "rsp",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"rip",
	"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7",
	"xmm8", "xmm9", "xmm10", "xmm11", "xmm12", "xmm13", "xmm14", "xmm15",
	"st0", "st1", "st2", "st3", "st4", "st5", "st6", "st7",
	"", "", "", "", "", "", "", "",
	"eflags", "es", "cs", "ss", "ds", "fs", "gs",
}

var armRegisters = []string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	"r8", "r9", "r10", "r11", "r12", "sp", "lr", "pc",
	"f0", "f1", "f2", "f3", "f4", "f5", "f6", "f7",
	"fps", "cpsr",
}

// UnknownRegister is returned for register numbers with no name.
const UnknownRegister = "UNKNOWNREG"

// RegisterName returns the name of register reg on machine m.
func RegisterName(m MachineType, reg uint32) string {
	var name string
	switch m {
	case MachineX86:
		name = lookupRegister(x86Registers, reg)
	case MachineX64:
		name = lookupRegister(x64Registers, reg)
	case MachineARM32:
		name = lookupRegister(armRegisters, reg)
		if name == "" && reg >= armRegisterD0 && reg-armRegisterD0 < 32 {
			name = "d" + strconv.FormatUint(uint64(reg-armRegisterD0), 10)
		}
	}
	if name == "" {
		return UnknownRegister
	}
	return name
}

func lookupRegister(table []string, reg uint32) string {
	if uint64(reg) >= uint64(len(table)) {
		return ""
	}
	return table[reg]
}
