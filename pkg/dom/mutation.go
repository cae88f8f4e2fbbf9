package dom

// MutOp is the type of tree mutation.
type MutOp uint8

const (
	MutCreateElement MutOp = 0x01 // New element allocated
	MutCreateText    MutOp = 0x02 // New text node allocated
	MutSetText       MutOp = 0x03 // Update text content
	MutSetAttr       MutOp = 0x04 // Set/update attribute
	MutRemoveAttr    MutOp = 0x05 // Remove attribute
	MutSetStyle      MutOp = 0x06 // Set inline style declaration
	MutRemoveStyle   MutOp = 0x07 // Remove inline style declaration
	MutSetField      MutOp = 0x08 // Set native field
	MutInsert        MutOp = 0x09 // Insert/move node under parent
	MutRemove        MutOp = 0x0A // Remove node from parent
)

// String returns the string representation of the MutOp.
func (op MutOp) String() string {
	switch op {
	case MutCreateElement:
		return "CreateElement"
	case MutCreateText:
		return "CreateText"
	case MutSetText:
		return "SetText"
	case MutSetAttr:
		return "SetAttr"
	case MutRemoveAttr:
		return "RemoveAttr"
	case MutSetStyle:
		return "SetStyle"
	case MutRemoveStyle:
		return "RemoveStyle"
	case MutSetField:
		return "SetField"
	case MutInsert:
		return "Insert"
	case MutRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Mutation describes a single applied tree operation. The mutation log
// is what remote mirrors (the dev server's thin client) replay.
type Mutation struct {
	Op     MutOp  `json:"op"`
	Node   uint64 `json:"node"`
	Parent uint64 `json:"parent,omitempty"`
	Before uint64 `json:"before,omitempty"`
	Tag    string `json:"tag,omitempty"`
	NS     string `json:"ns,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}
