// Package similarity provides the pairwise metrics used to compare token-frequency
// vectors and the batch computer that fills the NTFS, JTS and WTDS matrices.
package similarity
