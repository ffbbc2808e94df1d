package main

/*
bio-readview computes the data behind a read-alignment track for one or more
genomic regions: per-base coverage with mismatch counts, the row layout of
the reads, and the decoded per-read mismatch events.

Input is a SAM or BAM file, or a TSV read table with the header
  name  pos  strand  cigar  md  seq  qual
where pos is the 0-based alignment start, md/qual may be "*", and qual is
phred+33.  Files ending in .gz are decompressed.
*/

import "github.com/grailbio/readview/cmd/bio-readview/cmd"

func main() {
	cmd.Run()
}
