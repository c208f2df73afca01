package imgdoc

import (
	"errors"

	"github.com/tinyrange/imgdoc/internal/native"
)

var errNilOptions = errors.New("options are nil")

// Document is an open imgdoc2 document.
type Document struct {
	handle
}

// CreateNew creates a document as described by opts. env may be nil.
func CreateNew(opts *CreateOptions, env *Environment) (*Document, error) {
	if opts == nil {
		return nil, invalidArgument("CreateNewDocument", errNilOptions)
	}
	return openDocument("CreateNewDocument", &opts.handle, env, opts.ex.CreateNewDocument)
}

// OpenExisting opens the document named in opts. env may be nil.
func OpenExisting(opts *OpenExistingOptions, env *Environment) (*Document, error) {
	if opts == nil {
		return nil, invalidArgument("OpenExistingDocument", errNilOptions)
	}
	return openDocument("OpenExistingDocument", &opts.handle, env, opts.ex.OpenExistingDocument)
}

func openDocument(op string, opts *handle, env *Environment, fn func(native.Handle, native.Handle, *native.Handle, *native.ErrorInfo) int32) (*Document, error) {
	oh, err := opts.get()
	if err != nil {
		return nil, err
	}
	eh := native.InvalidHandle
	if env != nil {
		if eh, err = env.get(); err != nil {
			return nil, err
		}
	}

	ex := opts.ex
	var dh native.Handle
	err = call(op, func(info *native.ErrorInfo) int32 {
		return fn(oh, eh, &dh, info)
	})
	if err != nil {
		return nil, err
	}
	if dh == native.InvalidHandle {
		return nil, invalidHandle(op)
	}
	d := &Document{}
	d.init(ex, dh, "DestroyDocument", ex.DestroyDocument)
	return d, nil
}

// Close closes the document. Readers and writers obtained from it must be
// closed first.
func (d *Document) Close() error { return d.close() }

// acquire runs one of the IDoc_Get* exports and returns the new handle.
func (d *Document) acquire(op string, fn func(native.Handle, *native.Handle, *native.ErrorInfo) int32) (native.Handle, error) {
	h, err := d.get()
	if err != nil {
		return native.InvalidHandle, err
	}
	var out native.Handle
	err = call(op, func(info *native.ErrorInfo) int32 {
		return fn(h, &out, info)
	})
	if err != nil {
		return native.InvalidHandle, err
	}
	if out == native.InvalidHandle {
		return native.InvalidHandle, invalidHandle(op)
	}
	return out, nil
}

// Reader2d returns a reader for a 2D document.
func (d *Document) Reader2d() (*Reader2d, error) {
	h, err := d.acquire("IDoc_GetReader2d", d.ex.DocGetReader2d)
	if err != nil {
		return nil, err
	}
	r := &Reader2d{}
	r.init(d.ex, h, "DestroyReader2d", d.ex.DestroyReader2d)
	return r, nil
}

// Writer2d returns a writer for a 2D document.
func (d *Document) Writer2d() (*Writer2d, error) {
	h, err := d.acquire("IDoc_GetWriter2d", d.ex.DocGetWriter2d)
	if err != nil {
		return nil, err
	}
	w := &Writer2d{}
	w.init(d.ex, h, "DestroyWriter2d", d.ex.DestroyWriter2d)
	return w, nil
}

// Reader3d returns a reader for a 3D document.
func (d *Document) Reader3d() (*Reader3d, error) {
	h, err := d.acquire("IDoc_GetReader3d", d.ex.DocGetReader3d)
	if err != nil {
		return nil, err
	}
	r := &Reader3d{}
	r.init(d.ex, h, "DestroyReader3d", d.ex.DestroyReader3d)
	return r, nil
}

// Writer3d returns a writer for a 3D document.
func (d *Document) Writer3d() (*Writer3d, error) {
	h, err := d.acquire("IDoc_GetWriter3d", d.ex.DocGetWriter3d)
	if err != nil {
		return nil, err
	}
	w := &Writer3d{}
	w.init(d.ex, h, "DestroyWriter3d", d.ex.DestroyWriter3d)
	return w, nil
}
