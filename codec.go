package enact

// Codec is a content-type aware marshaler used by the inspect submodules
// (json, xml, yaml, msgpack, bson) to render a Resource or Invocation tree
// for human or cross-system consumption. Codecs are never consulted for the
// canonical hashed/stored form — that form is always produced by
// encodePacked (see binary.go and pack.go) — so a Codec round-trip is
// non-normative: it may lose information Hash would distinguish (e.g. NaN
// payload bits) and must never be used to recompute a digest.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
