package wire

// Statistics mirrors the engine's counters of live objects per kind.
type Statistics struct {
	EnvironmentObjects         uint32
	CreateOptionsObjects       uint32
	OpenExistingOptionsObjects uint32
	DocumentObjects            uint32
	Reader2dObjects            uint32
	Reader3dObjects            uint32
	Writer2dObjects            uint32
	Writer3dObjects            uint32
}

func (s *Statistics) fields() []*uint32 {
	return []*uint32{
		&s.EnvironmentObjects,
		&s.CreateOptionsObjects,
		&s.OpenExistingOptionsObjects,
		&s.DocumentObjects,
		&s.Reader2dObjects,
		&s.Reader3dObjects,
		&s.Writer2dObjects,
		&s.Writer3dObjects,
	}
}

func (s Statistics) MarshalBinary() ([]byte, error) {
	b := make([]byte, StatisticsSize)
	for i, f := range s.fields() {
		order.PutUint32(b[i*4:], *f)
	}
	return b, nil
}

func (s *Statistics) UnmarshalBinary(b []byte) error {
	if len(b) < StatisticsSize {
		return ErrTruncated
	}
	for i, f := range s.fields() {
		*f = order.Uint32(b[i*4:])
	}
	return nil
}
