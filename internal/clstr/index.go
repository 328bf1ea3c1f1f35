package clstr

import "strings"

// Index maps sample identifier -> allele name -> cluster identifier.
// It is built once from a cluster report and read-only afterwards.
type Index map[string]map[string]string

// Add records the cluster identifier for a (sample, allele) pair.
// A later entry for the same pair overwrites the earlier one.
func (idx Index) Add(sample, allele, clusterID string) {
	alleles, ok := idx[sample]
	if !ok {
		alleles = make(map[string]string)
		idx[sample] = alleles
	}
	alleles[allele] = clusterID
}

// Lookup returns the cluster identifier for a (sample, allele) pair.
func (idx Index) Lookup(sample, allele string) (string, bool) {
	id, ok := idx[sample][allele]
	return id, ok
}

// Len returns the number of (sample, allele) entries in the index.
func (idx Index) Len() int {
	n := 0
	for _, alleles := range idx {
		n += len(alleles)
	}
	return n
}

// AlleleName converts a clustered sequence identifier into the allele name
// used in compiled SRST2 tables. Identifiers carry double-underscore
// delimited segments of which the last two are the gene name and the
// per-sequence number, e.g. "66__FloR_Phe__FloR__1212" -> "FloR_1212".
func AlleleName(seqID string) string {
	segments := strings.Split(seqID, "__")
	if len(segments) > 2 {
		segments = segments[len(segments)-2:]
	}
	return strings.Join(segments, "_")
}
