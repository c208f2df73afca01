package imgdoc

import (
	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

// CreateOptions describes a document to create.
type CreateOptions struct {
	handle
}

// NewCreateOptions returns empty create options for a 2D document.
func NewCreateOptions() (*CreateOptions, error) {
	ex, err := loadExports()
	if err != nil {
		return nil, err
	}
	h := ex.CreateCreateOptions()
	if h == native.InvalidHandle {
		return nil, invalidHandle("CreateCreateOptions")
	}
	o := &CreateOptions{}
	o.init(ex, h, "DestroyCreateOptions", ex.DestroyCreateOptions)
	return o, nil
}

// Close releases the options.
func (o *CreateOptions) Close() error { return o.close() }

// SetFilename sets the path of the document file.
func (o *CreateOptions) SetFilename(name string) error {
	return setFilename("CreateOptions_SetFilename", &o.handle, name, o.ex.CreateOptionsSetFilename)
}

// Filename returns the path of the document file.
func (o *CreateOptions) Filename() (string, error) {
	return getFilename("CreateOptions_GetFilename", &o.handle, o.ex.CreateOptionsGetFilename)
}

// SetDocumentType selects a 2D or 3D document.
func (o *CreateOptions) SetDocumentType(t DocumentType) error {
	h, err := o.get()
	if err != nil {
		return err
	}
	return call("CreateOptions_SetDocumentType", func(info *native.ErrorInfo) int32 {
		return o.ex.CreateOptionsSetDocumentType(h, uint8(t), info)
	})
}

// DocumentType returns the configured document type.
func (o *CreateOptions) DocumentType() (DocumentType, error) {
	h, err := o.get()
	if err != nil {
		return DocumentTypeInvalid, err
	}
	var t uint8
	err = call("CreateOptions_GetDocumentType", func(info *native.ErrorInfo) int32 {
		return o.ex.CreateOptionsGetDocumentType(h, &t, info)
	})
	return DocumentType(t), err
}

// SetUseSpatialIndex enables the engine's spatial index.
func (o *CreateOptions) SetUseSpatialIndex(use bool) error {
	return setFlag("CreateOptions_SetUseSpatialIndex", &o.handle, use, o.ex.CreateOptionsSetUseSpatialIndex)
}

// UseSpatialIndex reports whether the spatial index is enabled.
func (o *CreateOptions) UseSpatialIndex() (bool, error) {
	return getFlag("CreateOptions_GetUseSpatialIndex", &o.handle, o.ex.CreateOptionsGetUseSpatialIndex)
}

// SetUseBlobTable stores tile data inside the document.
func (o *CreateOptions) SetUseBlobTable(use bool) error {
	return setFlag("CreateOptions_SetUseBlobTable", &o.handle, use, o.ex.CreateOptionsSetUseBlobTable)
}

// UseBlobTable reports whether tile data is stored inside the document.
func (o *CreateOptions) UseBlobTable() (bool, error) {
	return getFlag("CreateOptions_GetUseBlobTable", &o.handle, o.ex.CreateOptionsGetUseBlobTable)
}

// AddDimension adds a coordinate dimension to the document.
func (o *CreateOptions) AddDimension(d Dimension) error {
	return addDimension("CreateOptions_AddDimension", &o.handle, d, o.ex.CreateOptionsAddDimension)
}

// AddIndexedDimension adds an index on a dimension. The dimension must also
// be added with AddDimension.
func (o *CreateOptions) AddIndexedDimension(d Dimension) error {
	return addDimension("CreateOptions_AddIndexedDimension", &o.handle, d, o.ex.CreateOptionsAddIndexedDimension)
}

// Dimensions returns the document's dimensions in the order they were added.
func (o *CreateOptions) Dimensions() ([]Dimension, error) {
	return getDimensions("CreateOptions_GetDimensions", &o.handle, o.ex.CreateOptionsGetDimensions)
}

// IndexedDimensions returns the indexed dimensions.
func (o *CreateOptions) IndexedDimensions() ([]Dimension, error) {
	return getDimensions("CreateOptions_GetIndexedDimensions", &o.handle, o.ex.CreateOptionsGetIndexedDimensions)
}

// OpenExistingOptions describes a document to open.
type OpenExistingOptions struct {
	handle
}

// NewOpenExistingOptions returns empty open options.
func NewOpenExistingOptions() (*OpenExistingOptions, error) {
	ex, err := loadExports()
	if err != nil {
		return nil, err
	}
	h := ex.CreateOpenExistingOptions()
	if h == native.InvalidHandle {
		return nil, invalidHandle("CreateOpenExistingOptions")
	}
	o := &OpenExistingOptions{}
	o.init(ex, h, "DestroyOpenExistingOptions", ex.DestroyOpenExistingOptions)
	return o, nil
}

// Close releases the options.
func (o *OpenExistingOptions) Close() error { return o.close() }

// SetFilename sets the path of the document file.
func (o *OpenExistingOptions) SetFilename(name string) error {
	return setFilename("OpenExistingOptions_SetFilename", &o.handle, name, o.ex.OpenExistingOptionsSetFilename)
}

// Filename returns the path of the document file.
func (o *OpenExistingOptions) Filename() (string, error) {
	return getFilename("OpenExistingOptions_GetFilename", &o.handle, o.ex.OpenExistingOptionsGetFilename)
}

func setFilename(op string, o *handle, name string, fn func(native.Handle, *byte, *native.ErrorInfo) int32) error {
	h, err := o.get()
	if err != nil {
		return err
	}
	cname, err := wire.CString(name)
	if err != nil {
		return invalidArgument(op, err)
	}
	return call(op, func(info *native.ErrorInfo) int32 {
		return fn(h, &cname[0], info)
	})
}

func getFilename(op string, o *handle, fn func(native.Handle, *byte, *uintptr, *native.ErrorInfo) int32) (string, error) {
	h, err := o.get()
	if err != nil {
		return "", err
	}
	return wire.ReadString(func(buf []byte, size *uintptr) error {
		return call(op, func(info *native.ErrorInfo) int32 {
			return fn(h, first(buf), size, info)
		})
	})
}

func setFlag(op string, o *handle, v bool, fn func(native.Handle, bool, *native.ErrorInfo) int32) error {
	h, err := o.get()
	if err != nil {
		return err
	}
	return call(op, func(info *native.ErrorInfo) int32 {
		return fn(h, v, info)
	})
}

func getFlag(op string, o *handle, fn func(native.Handle, *bool, *native.ErrorInfo) int32) (bool, error) {
	h, err := o.get()
	if err != nil {
		return false, err
	}
	var v bool
	err = call(op, func(info *native.ErrorInfo) int32 {
		return fn(h, &v, info)
	})
	return v, err
}

func addDimension(op string, o *handle, d Dimension, fn func(native.Handle, uint8, *native.ErrorInfo) int32) error {
	h, err := o.get()
	if err != nil {
		return err
	}
	if !d.Valid() {
		return invalidArgument(op, wire.ErrInvalidDimension)
	}
	return call(op, func(info *native.ErrorInfo) int32 {
		return fn(h, uint8(d), info)
	})
}

func getDimensions(op string, o *handle, fn func(native.Handle, *byte, *uint32, *native.ErrorInfo) int32) ([]Dimension, error) {
	h, err := o.get()
	if err != nil {
		return nil, err
	}
	return wire.ReadDimensions(func(buf []byte, count *uint32) error {
		return call(op, func(info *native.ErrorInfo) int32 {
			return fn(h, first(buf), count, info)
		})
	})
}
