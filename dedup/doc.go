// Package dedup implements UMI (Unique Molecular Identifier) aware
// deduplication of coordinate-sorted alignment records. Records are
// bundled by reference sequence, bucketed within a bundle by a
// position key that accounts for soft clips and splice junctions, and
// then clustered by UMI similarity under a count-asymmetric Hamming
// distance rule: a network of UMIs observed at the same locus is
// resolved into clusters, each reduced to either a single
// representative read or every member read tagged with the cluster's
// consensus UMI.
package dedup
