package fakeengine

import (
	"slices"
	"unsafe"

	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

type environment struct {
	userParam     uintptr
	log           uintptr
	isLevelActive uintptr
	fatal         uintptr
}

type createOptions struct {
	filename     string
	docType      uint8
	spatialIndex bool
	blobTable    bool
	dims         []wire.Dimension
	indexed      []wire.Dimension
}

type openOptions struct {
	filename string
}

func (e *Engine) createEnvironment(userParam, log, isLevelActive, fatal uintptr) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.add(native.KindEnvironment, &environment{
		userParam:     userParam,
		log:           log,
		isLevelActive: isLevelActive,
		fatal:         fatal,
	})
}

// logf sends a record to env's log callback if the level is active.
// Callers hold e.mu.
func (e *Engine) logf(env *environment, level native.LogLevel, msg string) {
	if env == nil || env.log == 0 {
		return
	}
	if env.isLevelActive != 0 && !e.Invoker.IsLevelActive(env.isLevelActive, env.userParam, level) {
		return
	}
	e.Invoker.Log(env.log, env.userParam, level, msg)
}

func (e *Engine) createCreateOptions() native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.add(native.KindCreateOptions, &createOptions{docType: native.DocumentTypeImage2d})
}

func (e *Engine) createOpenExistingOptions() native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.add(native.KindOpenExistingOptions, &openOptions{})
}

// withCreateOptions runs fn on the create-options object h.
func (e *Engine) withCreateOptions(export string, h native.Handle, info *native.ErrorInfo, fn func(*createOptions) int32) int32 {
	rc := e.enter(export, info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	v, rc := e.lookup(h, native.KindCreateOptions, info)
	if rc != 0 {
		return rc
	}
	return fn(v.(*createOptions))
}

func (e *Engine) withOpenOptions(export string, h native.Handle, info *native.ErrorInfo, fn func(*openOptions) int32) int32 {
	rc := e.enter(export, info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	v, rc := e.lookup(h, native.KindOpenExistingOptions, info)
	if rc != 0 {
		return rc
	}
	return fn(v.(*openOptions))
}

func (e *Engine) createOptionsSetFilename(h native.Handle, filename *byte, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_SetFilename", h, info, func(o *createOptions) int32 {
		if filename == nil {
			return status(info, native.CodeInvalidArgument, "filename is null")
		}
		o.filename = native.GoString(filename)
		return 0
	})
}

func (e *Engine) createOptionsGetFilename(h native.Handle, buf *byte, size *uintptr, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_GetFilename", h, info, func(o *createOptions) int32 {
		return fillString(buf, size, o.filename, info)
	})
}

func (e *Engine) createOptionsSetDocumentType(h native.Handle, docType uint8, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_SetDocumentType", h, info, func(o *createOptions) int32 {
		if docType != native.DocumentTypeImage2d && docType != native.DocumentTypeImage3d {
			return status(info, native.CodeInvalidArgument, "unknown document type %d", docType)
		}
		o.docType = docType
		return 0
	})
}

func (e *Engine) createOptionsGetDocumentType(h native.Handle, docType *uint8, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_GetDocumentType", h, info, func(o *createOptions) int32 {
		if docType == nil {
			return status(info, native.CodeInvalidArgument, "output is null")
		}
		*docType = o.docType
		return 0
	})
}

func (e *Engine) createOptionsSetUseSpatialIndex(h native.Handle, use bool, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_SetUseSpatialIndex", h, info, func(o *createOptions) int32 {
		o.spatialIndex = use
		return 0
	})
}

func (e *Engine) createOptionsGetUseSpatialIndex(h native.Handle, use *bool, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_GetUseSpatialIndex", h, info, func(o *createOptions) int32 {
		if use == nil {
			return status(info, native.CodeInvalidArgument, "output is null")
		}
		*use = o.spatialIndex
		return 0
	})
}

func (e *Engine) createOptionsSetUseBlobTable(h native.Handle, use bool, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_SetUseBlobTable", h, info, func(o *createOptions) int32 {
		o.blobTable = use
		return 0
	})
}

func (e *Engine) createOptionsGetUseBlobTable(h native.Handle, use *bool, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_GetUseBlobTable", h, info, func(o *createOptions) int32 {
		if use == nil {
			return status(info, native.CodeInvalidArgument, "output is null")
		}
		*use = o.blobTable
		return 0
	})
}

func addDimension(list *[]wire.Dimension, dim uint8, info *native.ErrorInfo) int32 {
	d := wire.Dimension(dim)
	if !d.Valid() {
		return status(info, native.CodeInvalidArgument, "invalid dimension 0x%02x", dim)
	}
	if slices.Contains(*list, d) {
		return status(info, native.CodeInvalidArgument, "dimension %s added twice", d)
	}
	*list = append(*list, d)
	return 0
}

func (e *Engine) createOptionsAddDimension(h native.Handle, dim uint8, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_AddDimension", h, info, func(o *createOptions) int32 {
		return addDimension(&o.dims, dim, info)
	})
}

func (e *Engine) createOptionsAddIndexedDimension(h native.Handle, dim uint8, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_AddIndexedDimension", h, info, func(o *createOptions) int32 {
		return addDimension(&o.indexed, dim, info)
	})
}

func (e *Engine) createOptionsGetDimensions(h native.Handle, dims *byte, count *uint32, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_GetDimensions", h, info, func(o *createOptions) int32 {
		return fillDimensions(dims, count, o.dims, info)
	})
}

func (e *Engine) createOptionsGetIndexedDimensions(h native.Handle, dims *byte, count *uint32, info *native.ErrorInfo) int32 {
	return e.withCreateOptions("CreateOptions_GetIndexedDimensions", h, info, func(o *createOptions) int32 {
		return fillDimensions(dims, count, o.indexed, info)
	})
}

func (e *Engine) openOptionsSetFilename(h native.Handle, filename *byte, info *native.ErrorInfo) int32 {
	return e.withOpenOptions("OpenExistingOptions_SetFilename", h, info, func(o *openOptions) int32 {
		if filename == nil {
			return status(info, native.CodeInvalidArgument, "filename is null")
		}
		o.filename = native.GoString(filename)
		return 0
	})
}

func (e *Engine) openOptionsGetFilename(h native.Handle, buf *byte, size *uintptr, info *native.ErrorInfo) int32 {
	return e.withOpenOptions("OpenExistingOptions_GetFilename", h, info, func(o *openOptions) int32 {
		return fillString(buf, size, o.filename, info)
	})
}

func fillString(buf *byte, size *uintptr, s string, info *native.ErrorInfo) int32 {
	if size == nil {
		return status(info, native.CodeInvalidArgument, "size is null")
	}
	var b []byte
	if buf != nil {
		b = unsafe.Slice(buf, *size)
	}
	wire.FillString(b, size, s)
	return 0
}

func fillDimensions(dims *byte, count *uint32, list []wire.Dimension, info *native.ErrorInfo) int32 {
	if count == nil {
		return status(info, native.CodeInvalidArgument, "count is null")
	}
	var b []byte
	if dims != nil {
		b = unsafe.Slice(dims, *count)
	}
	wire.FillDimensions(b, count, list)
	return 0
}
