package enact

import (
	"encoding/binary"
	"math"
	"math/big"
	"strconv"
)

// Canonical binary encoding (§6): a 4-byte magic plus 2-byte version header,
// followed by a depth-first encoding of the packed tree. Every multi-byte
// integer is big-endian. Strings and byte-strings are length-prefixed with
// a 64-bit count. Doubles are IEEE-754 big-endian, with NaN and -0.0
// canonicalized before this point (see pack.go's canonicalFloat). Integers
// are always signed 64-bit; the bignum tag value is reserved, is never
// emitted by encodeValue, and is rejected by the decoder.
var (
	magicBytes = [4]byte{'e', 'n', 'c', 't'}
	version    = uint16(1)
)

const (
	wireInt byte = iota
	wireBignum
	wireFloat
	wireBool
	wireString
	wireBytes
	wireNull
	wireSeq
	wireMap
	wireResource
	wireRef
	wireType
)

// encodePacked serializes a packedValue to its canonical byte form. Two
// structurally-equal packedValues always produce byte-identical output;
// this is the property Hash depends on.
func encodePacked(p packedValue) ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, magicBytes[:]...)
	buf = appendUint16(buf, version)
	return encodeValue(buf, p)
}

func encodeValue(buf []byte, p packedValue) ([]byte, error) {
	var err error
	switch p.tag {
	case tagInt:
		buf = append(buf, wireInt)
		buf = appendInt64(buf, p.i)
	case tagFloat:
		buf = append(buf, wireFloat)
		buf = appendUint64(buf, math.Float64bits(p.f))
	case tagBool:
		buf = append(buf, wireBool)
		if p.b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case tagString:
		buf = append(buf, wireString)
		buf = appendLenPrefixed(buf, []byte(p.s))
	case tagBytes:
		buf = append(buf, wireBytes)
		buf = appendLenPrefixed(buf, p.by)
	case tagNull:
		buf = append(buf, wireNull)
	case tagSeq:
		buf = append(buf, wireSeq)
		buf = appendUint64(buf, uint64(len(p.seq)))
		for _, elem := range p.seq {
			buf, err = encodeValue(buf, elem)
			if err != nil {
				return nil, err
			}
		}
	case tagMap:
		buf = append(buf, wireMap)
		buf = appendUint64(buf, uint64(len(p.pair)))
		for _, pr := range p.pair {
			buf = appendLenPrefixed(buf, []byte(pr.key))
			buf, err = encodeValue(buf, pr.val)
			if err != nil {
				return nil, err
			}
		}
	case tagResource:
		buf = append(buf, wireResource)
		buf = appendLenPrefixed(buf, []byte(p.typ))
		buf = appendUint64(buf, uint64(len(p.pair)))
		for _, pr := range p.pair {
			buf = appendLenPrefixed(buf, []byte(pr.key))
			buf, err = encodeValue(buf, pr.val)
			if err != nil {
				return nil, err
			}
		}
	case tagRef:
		buf = append(buf, wireRef)
		buf = appendLenPrefixed(buf, []byte(p.typ))
		buf = appendLenPrefixed(buf, []byte(p.s))
	case tagType:
		buf = append(buf, wireType)
		buf = appendLenPrefixed(buf, []byte(p.typ))
	default:
		return nil, newPackingError("unknown pack tag")
	}
	return buf, nil
}

// encodeBignum writes a big.Int as the reserved bignum tag, a sign byte and
// a length-prefixed big-endian magnitude. Nothing in this package calls it:
// FieldValue holds only int64 integers, which encodeValue writes as wireInt.
func encodeBignum(buf []byte, v *big.Int) []byte {
	buf = append(buf, wireBignum)
	sign := byte(0)
	if v.Sign() < 0 {
		sign = 1
	}
	buf = append(buf, sign)
	mag := new(big.Int).Abs(v).Bytes()
	buf = appendLenPrefixed(buf, mag)
	return buf
}

func appendUint16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendInt64(buf []byte, v int64) []byte {
	return appendUint64(buf, uint64(v))
}

func appendLenPrefixed(buf []byte, b []byte) []byte {
	buf = appendUint64(buf, uint64(len(b)))
	return append(buf, b...)
}

func floatFromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// decoder walks a canonical byte slice left to right. It never runs on
// untrusted input in this module's own test paths, but still bounds-checks
// every read and returns an error rather than panicking on truncated input.
type decoder struct {
	b   []byte
	pos int
}

func decodePacked(data []byte) (packedValue, error) {
	if len(data) < 6 {
		return packedValue{}, newPackingError("truncated header")
	}
	if data[0] != magicBytes[0] || data[1] != magicBytes[1] || data[2] != magicBytes[2] || data[3] != magicBytes[3] {
		return packedValue{}, newPackingError("bad magic")
	}
	d := &decoder{b: data, pos: 4}
	gotVersion, err := d.readUint16()
	if err != nil {
		return packedValue{}, err
	}
	if gotVersion != version {
		return packedValue{}, newPackingError("unsupported encoding version")
	}
	p, err := d.readValue()
	if err != nil {
		return packedValue{}, err
	}
	if d.pos != len(d.b) {
		return packedValue{}, newPackingError("trailing bytes after value")
	}
	return p, nil
}

func (d *decoder) readValue() (packedValue, error) {
	tag, err := d.readByte()
	if err != nil {
		return packedValue{}, err
	}
	switch tag {
	case wireInt:
		i, err := d.readInt64()
		return packedValue{tag: tagInt, i: i}, err
	case wireBignum:
		return packedValue{}, newPackingError("bignum decoding not supported")
	case wireFloat:
		bits, err := d.readUint64()
		if err != nil {
			return packedValue{}, err
		}
		return packedValue{tag: tagFloat, f: floatFromBits(bits)}, nil
	case wireBool:
		b, err := d.readByte()
		if err != nil {
			return packedValue{}, err
		}
		return packedValue{tag: tagBool, b: b != 0}, nil
	case wireString:
		s, err := d.readLenPrefixed()
		if err != nil {
			return packedValue{}, err
		}
		return packedValue{tag: tagString, s: string(s)}, nil
	case wireBytes:
		by, err := d.readLenPrefixed()
		if err != nil {
			return packedValue{}, err
		}
		return packedValue{tag: tagBytes, by: by}, nil
	case wireNull:
		return packedValue{tag: tagNull}, nil
	case wireSeq:
		n, err := d.readUint64()
		if err != nil {
			return packedValue{}, err
		}
		seq := make([]packedValue, 0, n)
		for i := uint64(0); i < n; i++ {
			elem, err := d.readValue()
			if err != nil {
				return packedValue{}, err
			}
			seq = append(seq, elem)
		}
		return packedValue{tag: tagSeq, seq: seq}, nil
	case wireMap:
		n, err := d.readUint64()
		if err != nil {
			return packedValue{}, err
		}
		pairs := make([]packedPair, 0, n)
		for i := uint64(0); i < n; i++ {
			key, err := d.readLenPrefixed()
			if err != nil {
				return packedValue{}, err
			}
			val, err := d.readValue()
			if err != nil {
				return packedValue{}, err
			}
			pairs = append(pairs, packedPair{key: string(key), val: val})
		}
		return packedValue{tag: tagMap, pair: pairs}, nil
	case wireResource:
		typ, err := d.readLenPrefixed()
		if err != nil {
			return packedValue{}, err
		}
		n, err := d.readUint64()
		if err != nil {
			return packedValue{}, err
		}
		pairs := make([]packedPair, 0, n)
		for i := uint64(0); i < n; i++ {
			key, err := d.readLenPrefixed()
			if err != nil {
				return packedValue{}, err
			}
			val, err := d.readValue()
			if err != nil {
				return packedValue{}, err
			}
			pairs = append(pairs, packedPair{key: string(key), val: val})
		}
		return packedValue{tag: tagResource, typ: string(typ), pair: pairs}, nil
	case wireRef:
		typ, err := d.readLenPrefixed()
		if err != nil {
			return packedValue{}, err
		}
		digestHex, err := d.readLenPrefixed()
		if err != nil {
			return packedValue{}, err
		}
		return packedValue{tag: tagRef, typ: string(typ), s: string(digestHex)}, nil
	case wireType:
		typ, err := d.readLenPrefixed()
		if err != nil {
			return packedValue{}, err
		}
		return packedValue{tag: tagType, typ: string(typ)}, nil
	default:
		return packedValue{}, newPackingError("unknown wire tag")
	}
}

func (d *decoder) readByte() (byte, error) {
	if d.pos+1 > len(d.b) {
		return 0, newPackingError("truncated value")
	}
	v := d.b[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) readUint16() (uint16, error) {
	if d.pos+2 > len(d.b) {
		return 0, newPackingError("truncated value")
	}
	v := binary.BigEndian.Uint16(d.b[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *decoder) readUint64() (uint64, error) {
	if d.pos+8 > len(d.b) {
		return 0, newPackingError("truncated value")
	}
	v := binary.BigEndian.Uint64(d.b[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *decoder) readInt64() (int64, error) {
	v, err := d.readUint64()
	return int64(v), err
}

func (d *decoder) readLenPrefixed() ([]byte, error) {
	n, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	if d.pos+int(n) > len(d.b) {
		return nil, newPackingError("truncated value")
	}
	v := d.b[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return v, nil
}
