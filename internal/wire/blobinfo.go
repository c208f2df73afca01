package wire

import "fmt"

// PixelType identifies the pixel format of a tile or brick.
type PixelType uint8

const (
	PixelGray8       PixelType = 0
	PixelGray16      PixelType = 1
	PixelGray32Float PixelType = 2
	PixelBgr24       PixelType = 3
	PixelBgr48       PixelType = 4
)

var pixelTypeNames = map[PixelType]string{
	PixelGray8:       "gray8",
	PixelGray16:      "gray16",
	PixelGray32Float: "gray32float",
	PixelBgr24:       "bgr24",
	PixelBgr48:       "bgr48",
}

func (p PixelType) String() string {
	if s, ok := pixelTypeNames[p]; ok {
		return s
	}
	return fmt.Sprintf("PixelType(%d)", uint8(p))
}

// ParsePixelType accepts the names printed by String.
func ParsePixelType(s string) (PixelType, error) {
	for p, name := range pixelTypeNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel type %q", s)
}

// BytesPerPixel returns the storage size of one pixel, or 0 for an unknown type.
func (p PixelType) BytesPerPixel() int {
	switch p {
	case PixelGray8:
		return 1
	case PixelGray16:
		return 2
	case PixelBgr24:
		return 3
	case PixelGray32Float:
		return 4
	case PixelBgr48:
		return 6
	default:
		return 0
	}
}

// DataType describes how a blob is stored.
type DataType uint8

const (
	DataZero                  DataType = 0
	DataUncompressedBitmap    DataType = 1
	DataJpgXrCompressedBitmap DataType = 2
	DataZstd0CompressedBitmap DataType = 3
	DataZstd1CompressedBitmap DataType = 4
	DataUncompressedBrick     DataType = 32
)

func (d DataType) String() string {
	switch d {
	case DataZero:
		return "zero"
	case DataUncompressedBitmap:
		return "uncompressed-bitmap"
	case DataJpgXrCompressedBitmap:
		return "jpgxr-bitmap"
	case DataZstd0CompressedBitmap:
		return "zstd0-bitmap"
	case DataZstd1CompressedBitmap:
		return "zstd1-bitmap"
	case DataUncompressedBrick:
		return "uncompressed-brick"
	default:
		return fmt.Sprintf("DataType(%d)", uint8(d))
	}
}

// TileBaseInfo is the pixel geometry of a tile.
type TileBaseInfo struct {
	PixelWidth  uint32
	PixelHeight uint32
	PixelType   PixelType
}

// UncompressedSize is the byte size of the tile's raw pixels.
func (t TileBaseInfo) UncompressedSize() uint64 {
	return uint64(t.PixelWidth) * uint64(t.PixelHeight) * uint64(t.PixelType.BytesPerPixel())
}

func (t TileBaseInfo) MarshalBinary() ([]byte, error) {
	b := make([]byte, TileBaseInfoSize)
	t.put(b)
	return b, nil
}

func (t TileBaseInfo) put(b []byte) {
	order.PutUint32(b[0:], t.PixelWidth)
	order.PutUint32(b[4:], t.PixelHeight)
	b[8] = byte(t.PixelType)
}

func (t *TileBaseInfo) UnmarshalBinary(b []byte) error {
	if len(b) < TileBaseInfoSize {
		return ErrTruncated
	}
	*t = TileBaseInfo{
		PixelWidth:  order.Uint32(b[0:]),
		PixelHeight: order.Uint32(b[4:]),
		PixelType:   PixelType(b[8]),
	}
	return nil
}

// BrickBaseInfo is the voxel geometry of a brick.
type BrickBaseInfo struct {
	PixelWidth  uint32
	PixelHeight uint32
	PixelDepth  uint32
	PixelType   PixelType
}

// UncompressedSize is the byte size of the brick's raw voxels.
func (t BrickBaseInfo) UncompressedSize() uint64 {
	return uint64(t.PixelWidth) * uint64(t.PixelHeight) * uint64(t.PixelDepth) * uint64(t.PixelType.BytesPerPixel())
}

func (t BrickBaseInfo) MarshalBinary() ([]byte, error) {
	b := make([]byte, BrickBaseInfoSize)
	t.put(b)
	return b, nil
}

func (t BrickBaseInfo) put(b []byte) {
	order.PutUint32(b[0:], t.PixelWidth)
	order.PutUint32(b[4:], t.PixelHeight)
	order.PutUint32(b[8:], t.PixelDepth)
	b[12] = byte(t.PixelType)
}

func (t *BrickBaseInfo) UnmarshalBinary(b []byte) error {
	if len(b) < BrickBaseInfoSize {
		return ErrTruncated
	}
	*t = BrickBaseInfo{
		PixelWidth:  order.Uint32(b[0:]),
		PixelHeight: order.Uint32(b[4:]),
		PixelDepth:  order.Uint32(b[8:]),
		PixelType:   PixelType(b[12]),
	}
	return nil
}

// TileBlobInfo describes a stored tile: its geometry and blob data type.
type TileBlobInfo struct {
	Base     TileBaseInfo
	DataType DataType
}

func (t TileBlobInfo) MarshalBinary() ([]byte, error) {
	b := make([]byte, TileBlobInfoSize)
	t.Base.put(b)
	b[TileBaseInfoSize] = byte(t.DataType)
	return b, nil
}

func (t *TileBlobInfo) UnmarshalBinary(b []byte) error {
	if len(b) < TileBlobInfoSize {
		return ErrTruncated
	}
	if err := t.Base.UnmarshalBinary(b); err != nil {
		return err
	}
	t.DataType = DataType(b[TileBaseInfoSize])
	return nil
}

// BrickBlobInfo describes a stored brick.
type BrickBlobInfo struct {
	Base     BrickBaseInfo
	DataType DataType
}

func (t BrickBlobInfo) MarshalBinary() ([]byte, error) {
	b := make([]byte, BrickBlobInfoSize)
	t.Base.put(b)
	b[BrickBaseInfoSize] = byte(t.DataType)
	return b, nil
}

func (t *BrickBlobInfo) UnmarshalBinary(b []byte) error {
	if len(b) < BrickBlobInfoSize {
		return ErrTruncated
	}
	if err := t.Base.UnmarshalBinary(b); err != nil {
		return err
	}
	t.DataType = DataType(b[BrickBaseInfoSize])
	return nil
}
