// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package coverage

import (
	"io"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/readview/pileup"
)

// WriteTSV writes one line per bin, preceded by a header line.  POS is
// 1-based; bins[0] is at 0-based position start.
func WriteTSV(w io.Writer, refName string, start PosType, bins []Bin) error {
	out := tsv.NewWriter(w)
	out.WriteString("#CHROM\tPOS\tDEPTH\tPLUS\tMINUS\tDEL")
	for b := 0; b < pileup.NBaseEnum; b++ {
		out.WriteString(string(pileup.EnumToASCIITable[b]))
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	for i := range bins {
		b := &bins[i]
		out.WriteString(refName)
		out.WriteInt64(int64(start) + int64(i) + 1)
		out.WriteUint32(b.Depth)
		out.WriteUint32(b.PlusDepth)
		out.WriteUint32(b.MinusDepth)
		out.WriteUint32(b.DeletionDepth)
		for _, n := range b.Mismatches {
			out.WriteUint32(n)
		}
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteAnnotationsTSV writes one line per annotation, preceded by a header
// line.  POS is 1-based.
func WriteAnnotationsTSV(w io.Writer, refName string, anns []Annotation) error {
	out := tsv.NewWriter(w)
	out.WriteString("#CHROM\tPOS\tINS\tINS_BASES\tSOFTCLIP\tSKIP")
	if err := out.EndLine(); err != nil {
		return err
	}
	for i := range anns {
		a := &anns[i]
		out.WriteString(refName)
		out.WriteInt64(int64(a.Pos) + 1)
		out.WriteUint32(a.Insertions)
		out.WriteUint32(a.InsertedBases)
		out.WriteUint32(a.SoftClips)
		out.WriteUint32(a.Skips)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
