/*Package interval implements the coordinate primitives shared by the
  coverage and layout code: a genomic region type, and searches over sorted
  endpoint sequences describing a set of disjoint half-open intervals.
  Every position is assumed to fit in a PosType, which is defined as int32
  since that's what BAM files are limited to.
*/
package interval
