package codec

// Bytes is a length-prefixed byte slice Content, the substrate-provided
// implementation named in spec.md §4.4.
type Bytes []byte

func (b Bytes) Encode(s *Sink) error { return s.WriteBytes(b) }

func (b *Bytes) Decode(src *Source) error {
	v, err := src.ReadBytes()
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// String is a length-prefixed string Content.
type String string

func (str String) Encode(s *Sink) error { return s.WriteString(string(str)) }

func (str *String) Decode(src *Source) error {
	v, err := src.ReadString()
	if err != nil {
		return err
	}
	*str = String(v)
	return nil
}

// Uint64 is a fixed-width integer Content.
type Uint64 uint64

func (n Uint64) Encode(s *Sink) error { return s.WriteUint64(uint64(n)) }

func (n *Uint64) Decode(src *Source) error {
	v, err := src.ReadUint64()
	if err != nil {
		return err
	}
	*n = Uint64(v)
	return nil
}

// Optional wraps a value that may be absent. Absence is encoded as a
// single zero byte; presence as a one byte followed by the inner encoding.
// A Persisted handle's annotation is not wrapped in Optional: it is always
// present and written directly by the Scheme's EncodeAnnotation.
//
// Optional does not itself implement Content: decoding a Content generally
// requires allocating a fresh zero value to decode into, and that
// allocation differs per T (an interface-typed T needs a concrete
// implementation chosen by the caller). EncodeOptional/DecodeOptional take
// that allocation as an explicit newElem factory, the same pattern
// DecodeSlice uses below.
type Optional[T Content] struct {
	Value T
	Valid bool
}

func Some[T Content](v T) Optional[T] { return Optional[T]{Value: v, Valid: true} }

func None[T Content]() Optional[T] { return Optional[T]{} }

// EncodeOptional writes o's presence byte and, if present, o.Value's
// encoding.
func EncodeOptional[T Content](s *Sink, o Optional[T]) error {
	if !o.Valid {
		return s.WriteByte(0)
	}
	if err := s.WriteByte(1); err != nil {
		return err
	}
	return s.WriteContent(o.Value)
}

// DecodeOptional reads a presence byte and, if present, allocates an
// element via newElem and decodes into it.
func DecodeOptional[T Content](src *Source, newElem func() T) (Optional[T], error) {
	tag, err := src.ReadByte()
	if err != nil {
		return Optional[T]{}, err
	}
	switch tag {
	case 0:
		return Optional[T]{}, nil
	case 1:
		elem := newElem()
		if err := src.ReadContent(elem); err != nil {
			return Optional[T]{}, err
		}
		return Optional[T]{Value: elem, Valid: true}, nil
	default:
		return Optional[T]{}, ErrDecode
	}
}

// Pair is a substrate-provided Content composing two independently-encoded
// values, named in spec.md §4.4. Like Optional, it decodes via explicit
// factories rather than implementing Content itself, since decoding an
// interface-typed element requires choosing a concrete allocation.
type Pair[A, B Content] struct {
	First  A
	Second B
}

func EncodePair[A, B Content](s *Sink, p Pair[A, B]) error {
	if err := s.WriteContent(p.First); err != nil {
		return err
	}
	return s.WriteContent(p.Second)
}

func DecodePair[A, B Content](src *Source, newFirst func() A, newSecond func() B) (Pair[A, B], error) {
	first := newFirst()
	if err := src.ReadContent(first); err != nil {
		return Pair[A, B]{}, err
	}
	second := newSecond()
	if err := src.ReadContent(second); err != nil {
		return Pair[A, B]{}, err
	}
	return Pair[A, B]{First: first, Second: second}, nil
}

// Slice is a count-prefixed ordered sequence of Content, used whenever the
// containing Compound does not fix the arity (spec.md §4.4 and §6). Like
// Optional and Pair, it round-trips via free functions rather than the
// Content interface, since decoding needs an element factory.
type Slice[T Content] []T

func EncodeSlice[T Content](s *Sink, sl Slice[T]) error {
	if err := s.WriteUint64(uint64(len(sl))); err != nil {
		return err
	}
	for _, v := range sl {
		if err := s.WriteContent(v); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSlice reads a count-prefixed sequence, calling newElem to allocate
// each element before decoding into it. Content can't construct T values
// generically (T may be an interface), so the caller supplies the factory.
func DecodeSlice[T Content](src *Source, newElem func() T) ([]T, error) {
	n, err := src.ReadUint64()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := uint64(0); i < n; i++ {
		elem := newElem()
		if err := src.ReadContent(elem); err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	return out, nil
}
