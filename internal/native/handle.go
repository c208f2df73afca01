package native

import "fmt"

// Handle is an opaque token for an object owned by the native engine. It is
// only ever passed back to the engine, never dereferenced.
type Handle uintptr

// InvalidHandle is what the engine's create functions return on failure.
const InvalidHandle Handle = 0

// Kind names the kind of object a handle refers to.
type Kind uint8

const (
	KindEnvironment Kind = iota
	KindCreateOptions
	KindOpenExistingOptions
	KindDocument
	KindReader2d
	KindReader3d
	KindWriter2d
	KindWriter3d
)

func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindCreateOptions:
		return "create-options"
	case KindOpenExistingOptions:
		return "open-existing-options"
	case KindDocument:
		return "document"
	case KindReader2d:
		return "reader2d"
	case KindReader3d:
		return "reader3d"
	case KindWriter2d:
		return "writer2d"
	case KindWriter3d:
		return "writer3d"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}
