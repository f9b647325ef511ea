package forth

import (
	"encoding/gob"
	"fmt"
	"io"
)

// Core image format identifiers. LoadCore rejects images from a different
// format version rather than guessing at compatibility.
const (
	coreMagic   = "forthcheck-core"
	coreVersion = 1
)

// coreImage is the serialized interpreter state. Stacks are excluded: a
// loaded core starts with an empty data stack.
type coreImage struct {
	Magic   string
	Version int
	Memory  []Cell
	Words   []savedWord
}

type savedWord struct {
	Name  string
	Kind  int // wordConst or wordColon; primitives are reinstalled natively
	Value Cell
	Code  []savedInstr
}

type savedInstr struct {
	Op   int
	Val  Cell
	Word string // opCall target, resolved by name on load
}

// SaveCore writes the interpreter state (core memory and user dictionary,
// not the stacks) to w as a binary image.
func (f *Forth) SaveCore(w io.Writer) error {
	img := coreImage{
		Magic:   coreMagic,
		Version: coreVersion,
		Memory:  f.memory,
	}
	for _, wd := range f.words {
		switch wd.kind {
		case wordConst:
			img.Words = append(img.Words, savedWord{Name: wd.name, Kind: int(wordConst), Value: wd.value})
		case wordColon:
			sw := savedWord{Name: wd.name, Kind: int(wordColon)}
			for _, in := range wd.code {
				si := savedInstr{Op: int(in.op), Val: in.val}
				if in.w != nil {
					si.Word = in.w.name
				}
				sw.Code = append(sw.Code, si)
			}
			img.Words = append(img.Words, sw)
		}
	}
	if err := gob.NewEncoder(w).Encode(img); err != nil {
		return fmt.Errorf("save core: %w", err)
	}
	return nil
}

// LoadCore reconstructs an interpreter from a core image previously written
// by SaveCore. Word output goes to out. The data stack starts empty; the
// input source resets to reader mode.
func LoadCore(r io.Reader, out io.Writer) (*Forth, error) {
	var img coreImage
	if err := gob.NewDecoder(r).Decode(&img); err != nil {
		return nil, fmt.Errorf("load core: %w", err)
	}
	if img.Magic != coreMagic {
		return nil, fmt.Errorf("load core: not a core image")
	}
	if img.Version != coreVersion {
		return nil, fmt.Errorf("load core: image version %d, want %d", img.Version, coreVersion)
	}
	if len(img.Memory) < MinCoreSize {
		return nil, fmt.Errorf("load core: core size %d below minimum %d", len(img.Memory), MinCoreSize)
	}

	f, err := New(len(img.Memory), out)
	if err != nil {
		return nil, err
	}
	copy(f.memory, img.Memory)
	f.memory[regInvalid] = 0
	f.memory[regSourceID] = sourceReader

	// Install every saved word shell before resolving code so definitions
	// can reference each other regardless of save order.
	for _, sw := range img.Words {
		switch wordKind(sw.Kind) {
		case wordConst:
			f.words[sw.Name] = &word{name: sw.Name, kind: wordConst, value: sw.Value}
		case wordColon:
			f.words[sw.Name] = &word{name: sw.Name, kind: wordColon}
		default:
			return nil, fmt.Errorf("load core: word %q has unknown kind %d", sw.Name, sw.Kind)
		}
	}
	for _, sw := range img.Words {
		if wordKind(sw.Kind) != wordColon {
			continue
		}
		wd := f.words[sw.Name]
		for _, si := range sw.Code {
			in := instr{op: opcode(si.Op), val: si.Val}
			if si.Word != "" {
				target, ok := f.words[si.Word]
				if !ok {
					return nil, fmt.Errorf("load core: %q calls undefined word %q", sw.Name, si.Word)
				}
				in.w = target
			}
			wd.code = append(wd.code, in)
		}
	}
	return f, nil
}
