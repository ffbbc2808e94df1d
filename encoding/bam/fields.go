package bam

import (
	"unsafe"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/hts/sam"
)

var mdTag = sam.NewTag("MD")

// PackedSeq returns the record's sequence in .bam form (two bases per byte,
// high nibble first) and its length in bases.  The returned slice aliases
// r.Seq.
func PackedSeq(r *sam.Record) ([]byte, int) {
	b := *(*[]byte)(unsafe.Pointer(&r.Seq.Seq))
	return b, r.Seq.Length
}

// MD returns the value of the record's MD tag.  ok is false if the tag is
// missing or is not a string.  The returned slice must not be modified.
func MD(r *sam.Record) (md []byte, ok bool) {
	aux := r.AuxFields.Get(mdTag)
	if aux == nil {
		return nil, false
	}
	s, ok := aux.Value().(string)
	if !ok {
		return nil, false
	}
	return gunsafe.StringToBytes(s), true
}

// Quals returns the record's base qualities, or nil if they are absent
// (stored as 0xff, "*" in SAM).
func Quals(r *sam.Record) []byte {
	if len(r.Qual) == 0 || r.Qual[0] == 0xff {
		return nil
	}
	return r.Qual
}
